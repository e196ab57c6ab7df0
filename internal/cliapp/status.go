package cliapp

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mcp-scooter/bridge/internal/clierrors"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the scooter-bridge daemon is reachable",
	Run: func(cmd *cobra.Command, args []string) {
		c := newClient()
		f := newFormatter()

		err := c.Health()
		if err != nil {
			fmt.Println(f.FormatError(clierrors.Classify(err)))
			os.Exit(1)
		}

		if jsonOutput {
			fmt.Println(f.FormatResult(map[string]interface{}{"running": true, "url": bridgeURL}))
			return
		}
		color.Green("scooter-bridge is running at %s", bridgeURL)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
