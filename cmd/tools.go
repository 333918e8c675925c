package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/gcalendar-mcp/internal/tools"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool definitions as JSON",
		Long: `Print the tool definitions exactly as a tools/list request returns them.
No credentials are needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(mcp.ListToolsResult{
				Tools: tools.NewRegistry(cfg.DefaultTimeZone).MCPTools(),
			}, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode tool definitions: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
