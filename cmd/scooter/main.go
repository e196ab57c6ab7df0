// Command scooter is the CLI client for scooter-bridge (merged from the
// teacher's separate cmd/scooter-cli binary, since this module's daemon
// moved to cmd/scooter-bridge and left the "scooter" name free for the
// client, matching the teacher's own cmd/scooter-cli/main.go shape: a
// one-line delegation to the commands package).
package main

import (
	"os"

	"github.com/mcp-scooter/bridge/internal/cliapp"
)

func main() {
	if err := cliapp.Execute(); err != nil {
		os.Exit(1)
	}
}
