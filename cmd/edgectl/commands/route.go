package commands

import (
	"fmt"

	"github.com/benvon/mcp-edge-router/internal/metrics"
	"github.com/benvon/mcp-edge-router/internal/router"
	"github.com/spf13/cobra"
)

// NewRouteCmd creates the route command
func NewRouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <path>...",
		Short: "Show where request paths are dispatched",
		Long:  "Show which agent endpoint each path is dispatched to. Matching is exact: no cleaning, no trailing-slash redirects.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				switch router.Resolve(path) {
				case metrics.EndpointSSE:
					fmt.Fprintf(out, "%s -> agent.ServeSSE(%q)\n", path, router.SSEPath)
				case metrics.EndpointMCP:
					fmt.Fprintf(out, "%s -> agent.Serve(%q)\n", path, router.MCPPath)
				default:
					fmt.Fprintf(out, "%s -> 404 Not Found\n", path)
				}
			}
			return nil
		},
	}
}
