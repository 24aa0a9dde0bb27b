package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/curvefit/internal/formula"
	"github.com/vk/curvefit/internal/render"
)

func TestParsePositionalArgs(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"y", "m * x + c", "data.csv"}, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "y", cfg.Target)
	assert.Equal(t, "m * x + c", cfg.Formula)
	assert.Equal(t, "data.csv", cfg.DataPath)
	assert.Equal(t, render.FormatTable, cfg.Output)
	assert.Equal(t, formula.ResolverV1, cfg.Resolver)
}

func TestParseStdinWhenPathOmitted(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"y", "m * x + c"}, &out)
	require.NoError(t, err)
	require.False(t, exit)
	assert.Empty(t, cfg.DataPath)
}

func TestParseFlags(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{
		"-o=csv", "-no-stats", "-debug", "-resolver=v2", "-max-iterations=50",
		"y", "m * x + c",
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, render.FormatCSV, cfg.Output)
	assert.True(t, cfg.NoStats)
	assert.True(t, cfg.Debug)
	assert.Equal(t, formula.ResolverV2, cfg.Resolver)
	assert.Equal(t, 50, cfg.MaxIterations)
}

func TestParseNoArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseBadFormat(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"-o=xml", "y", "m*x"}, &out)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "xml")
}

func TestParseBadResolver(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"-resolver=v9", "y", "m*x"}, &out)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, exitErr.Message, "v9")
}

func TestParseBadLogLevel(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"-log-level=loud", "y", "m*x"}, &out)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, exitErr.Message, "log-level")
}
