// Package cliapp implements the scooter command-line client: a thin
// JSON-RPC-over-HTTP frontend onto a running scooter-bridge daemon.
//
// Structure follows the teacher's internal/cli/commands package: one
// package-level rootCmd with persistent flags shared by every subcommand,
// each subcommand in its own file registering itself via init(). The
// teacher's os.Args command-inference preprocessing step
// (inference.InferCommand) is dropped — this package's command set is
// small and unambiguous enough that "first positional arg is the
// subcommand" needs no guessing layer; see DESIGN.md for the inference
// package's disposition.
package cliapp

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mcp-scooter/bridge/internal/bridgeclient"
	"github.com/mcp-scooter/bridge/internal/output"
)

var (
	bridgeURL  string
	jsonOutput bool
	rawOutput  bool
	timeoutMs  int
)

var rootCmd = &cobra.Command{
	Use:   "scooter",
	Short: "Talk to a running scooter-bridge daemon",
	Long: `scooter is the command-line client for scooter-bridge, the local
browser-extension bridge daemon. It calls the daemon's JSON-RPC surface
over its HTTP loopback to start/stop/call sandboxed guests and tools.`,
}

// Execute runs the root command; cmd/scooter's main exits non-zero on
// error.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&bridgeURL, "bridge-url", "http://127.0.0.1:8766", "scooter-bridge HTTP loopback base URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&rawOutput, "raw", false, "raw output (no formatting)")
	rootCmd.PersistentFlags().IntVar(&timeoutMs, "timeout", 30000, "request timeout in milliseconds")
}

func newClient() *bridgeclient.Client {
	return bridgeclient.New(bridgeURL, time.Duration(timeoutMs)*time.Millisecond)
}

func newFormatter() *output.Formatter {
	format := output.FormatText
	switch {
	case jsonOutput:
		format = output.FormatJSON
	case rawOutput:
		format = output.FormatRaw
	}
	return output.New(format, true)
}
