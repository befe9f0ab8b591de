package commands

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/benvon/mcp-edge-router/internal/agent"
	"github.com/spf13/cobra"
)

// NewProbeCmd creates the probe command
func NewProbeCmd() *cobra.Command {
	var browserURL string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Test the browser backend",
		Long:  "Check that the browser backend answers on its SSE and streamable HTTP paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			if browserURL == "" {
				browserURL = os.Getenv("BROWSER_URL")
			}
			if browserURL == "" {
				return fmt.Errorf("--browser-url or BROWSER_URL is required")
			}
			browser, err := agent.NewBrowser(browserURL, &http.Client{Timeout: timeout})
			if err != nil {
				return fmt.Errorf("invalid browser URL: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Testing browser backend: %s\n", browser.Endpoint)

			for _, path := range []string{"/mcp", "/sse"} {
				target := browser.Endpoint.JoinPath(path).String()
				req, err := http.NewRequestWithContext(cmd.Context(), http.MethodOptions, target, nil)
				if err != nil {
					return err
				}
				resp, err := browser.HTTPClient().Do(req)
				if err != nil {
					return fmt.Errorf("failed to reach %s: %w", target, err)
				}
				_ = resp.Body.Close()
				if resp.StatusCode >= http.StatusInternalServerError {
					return fmt.Errorf("%s returned status: %d", target, resp.StatusCode)
				}
				fmt.Fprintf(out, "✓ %s answered %d\n", target, resp.StatusCode)
			}

			fmt.Fprintln(out, "\n✓ Browser backend probe passed")
			return nil
		},
	}

	cmd.Flags().StringVar(&browserURL, "browser-url", "", "Browser backend base URL (default $BROWSER_URL)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")

	return cmd
}
