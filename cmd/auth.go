package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/gcalendar-mcp/internal/google"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Obtain a Google refresh token",
		Long: `Run the one-time OAuth authorization flow.

The command prints a consent URL. After approving access, paste the
authorization code from the redirect back into the prompt. The printed
refresh token goes into GOOGLE_REFRESH_TOKEN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateClient(); err != nil {
				return err
			}

			conf := google.OAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Visit this URL to authorize calendar access:\n\n%s\n\n", google.AuthCodeURL(conf))
			fmt.Fprint(out, "Enter the authorization code: ")

			code, err := readCode(cmd.InOrStdin())
			if err != nil {
				return err
			}

			tok, err := google.ExchangeCode(cmd.Context(), conf, code)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\nRefresh token:\n%s\n\nSet it as GOOGLE_REFRESH_TOKEN in your environment or .env file.\n", tok.RefreshToken)
			return nil
		},
	}
}

// readCode reads one line. The code may also be the full redirect query
// value, so surrounding whitespace is all that is removed.
func readCode(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read authorization code: %w", err)
	}
	return strings.TrimSpace(line), nil
}
