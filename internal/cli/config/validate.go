package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/reportcols/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	mode, err := output.ParseMode(c.OutputFormat)
	if err != nil {
		return err
	}
	c.OutputFormat = string(mode)

	if c.RowSize.Limit <= 0 {
		return fmt.Errorf("row_size.limit must be positive, got %d", c.RowSize.Limit)
	}
	if c.RowSize.DSN != "" && strings.TrimSpace(c.RowSize.Driver) == "" {
		return fmt.Errorf("row_size.driver is required when row_size.dsn is set")
	}
	for name, v := range map[string]string{
		"placeholder.text_type":   c.Placeholder.TextType,
		"placeholder.narrow_type": c.Placeholder.NarrowType,
	} {
		if strings.ContainsAny(v, ",;") {
			return fmt.Errorf("%s %q is not a SQL type", name, v)
		}
	}
	return nil
}
