// Package output renders command results for terminals, scripts and agents.
//
// The renderer picks its format from the configured mode. In auto mode a
// terminal gets styled text and anything else gets markdown.
package output

import (
	"fmt"
	"strings"
)

// OutputMode selects how results are rendered.
//
//nolint:revive // matches the flag name used across commands
type OutputMode string

// Mode converts a raw --output value to an OutputMode.
func Mode(s string) OutputMode {
	return OutputMode(strings.ToLower(strings.TrimSpace(s)))
}

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
	ModeTable    OutputMode = "table"
)

// Modes lists every accepted mode in flag order.
func Modes() []string {
	return []string{string(ModeAuto), string(ModeText), string(ModeMarkdown), string(ModeJSON), string(ModeTable)}
}

// ParseMode validates s. The empty string means auto.
func ParseMode(s string) (OutputMode, error) {
	m := Mode(s)
	switch m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeText, ModeMarkdown, ModeJSON, ModeTable:
		return m, nil
	case "md":
		return ModeMarkdown, nil
	}
	return "", fmt.Errorf("unknown output mode %q (expected one of %s)", s, strings.Join(Modes(), ", "))
}
