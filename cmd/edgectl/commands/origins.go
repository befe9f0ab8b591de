package commands

import (
	"fmt"
	"os"

	"github.com/benvon/mcp-edge-router/internal/cors"
	"github.com/benvon/mcp-edge-router/internal/origins"
	"github.com/spf13/cobra"
)

// loadPolicy reads the allow-list from file, falling back to ALLOWED_ORIGINS_FILE and then
// to the built-in policy.
func loadPolicy(file string) (*origins.Policy, error) {
	if file == "" {
		file = os.Getenv("ALLOWED_ORIGINS_FILE")
	}
	p, err := origins.LoadFile(file)
	if err != nil {
		return nil, fmt.Errorf("load allowed origins: %w", err)
	}
	return p, nil
}

// NewOriginCmd creates the origin command with the check subcommand.
func NewOriginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "origin",
		Short: "Inspect a single origin",
	}
	cmd.AddCommand(newOriginCheckCmd())
	return cmd
}

func newOriginCheckCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "check <origin>",
		Short: "Show the CORS headers the MCP routes send for an origin",
		Long:  "Show the Access-Control-* headers the router sends for an Origin value. Pass \"\" for a request without Origin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPolicy(file)
			if err != nil {
				return err
			}
			origin := args[0]
			allowed := p.AllowedOrigin(origin)

			out := cmd.OutOrStdout()
			if allowed == origins.Wildcard {
				fmt.Fprintf(out, "%q is not allow-listed; wildcard is sent\n", origin)
			} else {
				fmt.Fprintf(out, "%q is allow-listed; echoed back\n", origin)
			}
			opts := cors.Defaults().WithOrigin(allowed)
			fmt.Fprintf(out, "  %s: %s\n", cors.HeaderAllowOrigin, opts.Origin)
			fmt.Fprintf(out, "  %s: %s\n", cors.HeaderAllowHeaders, opts.Headers)
			fmt.Fprintf(out, "  %s: %s\n", cors.HeaderAllowMethods, opts.Methods)
			fmt.Fprintf(out, "  %s: %s\n", cors.HeaderExposeHeaders, opts.ExposeHeaders)
			fmt.Fprintf(out, "  %s: %d\n", cors.HeaderMaxAge, opts.MaxAge)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Allowed origins YAML file (default $ALLOWED_ORIGINS_FILE or built-in list)")
	return cmd
}

// NewOriginsCmd creates the origins command with list and validate subcommands.
func NewOriginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "origins",
		Short: "Manage the origin allow-list",
		Long:  "List or validate the allowed origins file read by the server.",
	}
	cmd.AddCommand(newOriginsListCmd())
	cmd.AddCommand(newOriginsValidateCmd())
	return cmd
}

func newOriginsListCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the allowed origins",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPolicy(file)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Exact origins:")
			for _, o := range p.Exact {
				fmt.Fprintf(out, "  %s\n", o)
			}
			fmt.Fprintln(out, "Suffixes:")
			for _, s := range p.Suffixes {
				fmt.Fprintf(out, "  *%s\n", s)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Allowed origins YAML file (default $ALLOWED_ORIGINS_FILE or built-in list)")
	return cmd
}

func newOriginsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate an allowed origins file without starting the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := origins.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d exact origins, %d suffixes\n", args[0], len(p.Exact), len(p.Suffixes))
			return nil
		},
	}
}
