package main

import (
	"fmt"
	"os"

	"github.com/benvon/mcp-edge-router/cmd/edgectl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "edgectl",
		Short: "Operator tool for the MCP edge router",
		Long:  "CLI tool for inspecting the origin allow-list, path dispatch and the browser backend",
	}

	rootCmd.AddCommand(commands.NewOriginCmd())
	rootCmd.AddCommand(commands.NewOriginsCmd())
	rootCmd.AddCommand(commands.NewRouteCmd())
	rootCmd.AddCommand(commands.NewProbeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
