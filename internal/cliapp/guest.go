package cliapp

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcp-scooter/bridge/internal/bridgeclient"
	"github.com/mcp-scooter/bridge/internal/clierrors"
)

var (
	startRuntime string
	startFile    string
)

var startCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Start a guest from a JS file or a compiled WASM module (--runtime wasm)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := newClient()
		f := newFormatter()

		id := args[0]
		code := startFile
		if startRuntime != "wasm" {
			data, err := os.ReadFile(startFile)
			if err != nil {
				fmt.Println(f.FormatError(clierrors.Classify(err)))
				os.Exit(1)
			}
			code = string(data)
		}

		err := c.StartServer(bridgeclient.StartServerParams{
			ID:      id,
			Code:    code,
			Runtime: startRuntime,
		})
		if err != nil {
			fmt.Println(f.FormatError(clierrors.Classify(err)))
			os.Exit(1)
		}
		fmt.Printf("started %s\n", id)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <id>",
	Short: "Stop a running guest",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := newClient()
		f := newFormatter()

		if err := c.StopServer(args[0]); err != nil {
			fmt.Println(f.FormatError(clierrors.Classify(err)))
			os.Exit(1)
		}
		fmt.Printf("stopped %s\n", args[0])
	},
}

func init() {
	startCmd.Flags().StringVar(&startRuntime, "runtime", "js", `guest runtime: "js" (code is a source file) or "wasm" (code is a module path)`)
	startCmd.Flags().StringVar(&startFile, "file", "", "path to the guest's JS source or compiled WASM module")
	startCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
}
