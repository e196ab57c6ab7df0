package cliapp

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcp-scooter/bridge/internal/clierrors"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List running guest ids",
	Run: func(cmd *cobra.Command, args []string) {
		c := newClient()
		f := newFormatter()

		ids, err := c.ListServers()
		if err != nil {
			fmt.Println(f.FormatError(clierrors.Classify(err)))
			os.Exit(1)
		}
		fmt.Println(f.FormatServerList(ids))
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
