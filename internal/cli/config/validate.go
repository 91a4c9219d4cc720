package config

import (
	"fmt"

	"github.com/leapstack-labs/leapgraph/internal/serializer"
	"github.com/leapstack-labs/leapgraph/pkg/core"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	if _, err := serializer.ParseFormat(c.DumpFormat); err != nil {
		return fmt.Errorf("invalid dump_format: %w", err)
	}
	if _, err := core.ParseNamedGraph(c.DefaultGraph); err != nil {
		return fmt.Errorf("invalid default_graph: %w", err)
	}
	switch c.OutputFormat {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("invalid output %q (want auto|text|json)", c.OutputFormat)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q (want text|json)", c.LogFormat)
	}
	if c.MaxVertices < 0 {
		return fmt.Errorf("max_vertices must not be negative, got %d", c.MaxVertices)
	}
	return nil
}
