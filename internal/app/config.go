package app

import (
	"errors"
	"fmt"

	"github.com/vk/curvefit/internal/formula"
	"github.com/vk/curvefit/internal/render"
)

// Config holds everything one fit run needs.
type Config struct {
	// Target is the name of the column holding the observed values.
	Target string
	// Formula is the parameterised equation text.
	Formula string
	// DataPath is the CSV input path; empty means stdin.
	DataPath string

	Resolver formula.Resolver
	Output   render.Format
	NoStats  bool
	Debug    bool
	// MaxIterations overrides the solver iteration cap; 0 keeps the
	// solver default.
	MaxIterations int

	LogFormat string
	LogLevel  string
}

// NewConfig validates a raw config and fills in defaults.
func NewConfig(c Config) (*Config, error) {
	if c.Target == "" {
		return nil, errors.New("a target column is required")
	}
	if c.Formula == "" {
		return nil, errors.New("a formula is required")
	}
	if c.MaxIterations < 0 {
		return nil, fmt.Errorf("max iterations must not be negative, got %d", c.MaxIterations)
	}

	if c.Resolver == "" {
		c.Resolver = formula.ResolverV1
	}
	if c.Output == "" {
		c.Output = render.FormatTable
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return &c, nil
}
