// Package config loads reportcols CLI configuration.
//
// Values are layered with koanf: defaults, then reportcols.yaml, then
// REPORTCOLS_ environment variables, then explicitly set flags.
package config

import "github.com/leapstack-labs/reportcols/internal/rowsize"

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string            `koanf:"state_path"`
	Verbose      bool              `koanf:"verbose"`
	OutputFormat string            `koanf:"output"`
	Placeholder  PlaceholderConfig `koanf:"placeholder"`
	RowSize      RowSizeConfig     `koanf:"row_size"`
}

// PlaceholderConfig overrides the SQL types of unmapped placeholders.
type PlaceholderConfig struct {
	TextType   string `koanf:"text_type"`
	NarrowType string `koanf:"narrow_type"`
}

// RowSizeConfig configures the combined row-size check against the
// response database. An empty DSN skips the check.
type RowSizeConfig struct {
	Driver     string `koanf:"driver"`
	DSN        string `koanf:"dsn"`
	Limit      int    `koanf:"limit"`
	AssumeSafe bool   `koanf:"assume_safe"`
}

// Default configuration values.
const (
	DefaultStateFile  = ".reportcols/state.db"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultTextType   = "NTEXT"
	DefaultNarrowType = "SMALLINT"
	DefaultDriver     = rowsize.DefaultDriver
	DefaultRowLimit   = rowsize.DefaultLimit
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "REPORTCOLS_"
