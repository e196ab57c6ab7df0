// Package output renders scooter-cli results for a human or a script,
// adapted from the teacher's internal/cli/output.Formatter. The table/JSON/
// raw split is unchanged; the teacher's registry.Tool/MCPEntry tables are
// replaced by a plain server-id table since the bridge has no external
// server catalog (spec Non-goals: no cross-editor discovery registry).
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/mcp-scooter/bridge/internal/clierrors"
)

// Format selects how FormatResult/FormatError render.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatRaw  Format = "raw"
)

// Formatter renders CLI output in one of the above formats.
type Formatter struct {
	format Format
	color  bool
}

// New constructs a Formatter.
func New(format Format, useColor bool) *Formatter {
	return &Formatter{format: format, color: useColor}
}

// FormatResult renders a tool-call result (map[string]interface{}, the
// decoded mcp.call_tool response).
func (f *Formatter) FormatResult(result map[string]interface{}) string {
	switch f.format {
	case FormatJSON:
		data, _ := json.MarshalIndent(result, "", "  ")
		return string(data)
	case FormatRaw:
		if text, ok := result["text"].(string); ok {
			return text
		}
		data, _ := json.Marshal(result)
		return string(data)
	default:
		data, _ := json.MarshalIndent(result, "", "  ")
		return string(data)
	}
}

// FormatError renders a classified client error with an optional hint.
func (f *Formatter) FormatError(c clierrors.Classified) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(c, "", "  ")
		return string(data)
	}
	var msg string
	if f.color {
		msg = color.RedString("Error [%s]: %s", c.Kind, c.Message)
		if c.Hint != "" {
			msg += "\n" + color.YellowString("Hint: %s", c.Hint)
		}
	} else {
		msg = fmt.Sprintf("Error [%s]: %s", c.Kind, c.Message)
		if c.Hint != "" {
			msg += "\nHint: " + c.Hint
		}
	}
	return msg
}

// FormatServerList renders the running guest ids as a table (or JSON).
func (f *Formatter) FormatServerList(ids []string) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(ids, "", "  ")
		return string(data)
	}
	table := tablewriter.NewTable(os.Stdout, tablewriter.WithHeader([]string{"ID"}))
	for _, id := range ids {
		table.Append([]string{id})
	}
	table.Render()
	return ""
}
