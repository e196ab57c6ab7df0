package cliapp

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcp-scooter/bridge/internal/clierrors"
)

var callCmd = &cobra.Command{
	Use:   "call <server>.<tool> [key=value...]",
	Short: "Call an MCP tool through the arbitrator",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := newClient()
		f := newFormatter()

		target := args[0]
		parts := strings.SplitN(target, ".", 2)
		if len(parts) != 2 {
			fmt.Println("Error: target must be of the form server.tool")
			os.Exit(1)
		}
		serverID, toolName := parts[0], parts[1]

		toolArgs := make(map[string]interface{})
		for _, kv := range args[1:] {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) == 2 {
				toolArgs[parts[0]] = parts[1]
			}
		}

		result, err := c.CallTool(serverID, toolName, toolArgs)
		if err != nil {
			fmt.Println(f.FormatError(clierrors.Classify(err)))
			os.Exit(1)
		}
		fmt.Println(f.FormatResult(result))
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
}
