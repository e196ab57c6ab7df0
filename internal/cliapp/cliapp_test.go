package cliapp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcp-scooter/bridge/internal/clierrors"
)

func TestRootCmd_RegistersExpectedSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"status", "list", "start", "stop", "call"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestNewFormatter_SelectsFormatFromFlags(t *testing.T) {
	defer func() { jsonOutput, rawOutput = false, false }()
	classified := clierrors.Classify(assertErr{"boom"})

	jsonOutput, rawOutput = true, false
	assert.True(t, strings.HasPrefix(newFormatter().FormatError(classified), "{"))

	jsonOutput, rawOutput = false, false
	assert.True(t, strings.Contains(newFormatter().FormatError(classified), "Error ["))
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
