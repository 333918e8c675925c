package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/gcalendar-mcp/internal/config"
)

// rootCmd represents the base command for the gcalendar-mcp application
var rootCmd = &cobra.Command{
	Use:   "gcalendar-mcp",
	Short: "MCP server exposing Google Calendar as tools",
	Long: `gcalendar-mcp is a Model Context Protocol server that lets AI assistants
list calendars, read events, and create, update or delete events in a
Google Calendar account.

Run "gcalendar-mcp auth" once to obtain a refresh token, then
"gcalendar-mcp serve" to start the server.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

var (
	configFile string
	envFile    string
)

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gcalendar-mcp version %s\n" .Version}}`)

	// Without a subcommand the server is started, as MCP clients launch it bare.
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads configuration from the files selected by the persistent flags.
func loadConfig() (*config.Config, error) {
	return config.Load(config.LoadOptions{
		ConfigFile: configFile,
		EnvFile:    envFile,
	})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML config file (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a dotenv file (default: ./.env if present)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newToolsCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
