package client

import (
	"strings"

	"github.com/fatih/color"
)

// PrintEvent pretty prints a message received from the bridge.
func PrintEvent(evt *Event) {
	value := string(evt.Value)
	if value == "" {
		value = "-"
	}

	switch {
	case evt.Type == "error" || evt.Type == "attachFail" || strings.HasSuffix(evt.Type, "Fail"):
		color.Red("✗ %s %s", evt.Type, value)
	case strings.HasSuffix(evt.Type, "Success"):
		color.Green("✓ %s %s", evt.Type, value)
	case evt.Type == "system":
		color.Yellow("🔔 %s", value)
	default:
		color.Cyan("• %s %s", evt.Type, value)
	}
}
