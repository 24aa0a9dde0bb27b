package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/curvefit/internal/stats"
)

func sampleResult() *stats.FitResult {
	return &stats.FitResult{
		Names:       []string{"c", "m"},
		Values:      []float64{3.2099657167997013, 1.7709542029456211},
		N:           10,
		StdErrs:     []float64{0.013936863525869892, 0.011883297834310212},
		TValues:     []float64{230.32195951702457, 149.02884936809457},
		RMSR:        0.04394612667472819,
		AdjRSquared: 0.99955958874,
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("Table")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatCSV, true))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "Parameter,Value,Standard Error,t-value", lines[0])
	assert.Equal(t, "c,3.2099657167997013,0.013936863525869892,230.32195951702457", lines[1])
	assert.Contains(t, out, "Number of observations: 10")

	buf.Reset()
	require.NoError(t, Write(&buf, sampleResult(), FormatCSV, false))
	assert.NotContains(t, buf.String(), "Number of observations")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatJSON, false))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	for _, key := range []string{"parameter_names", "parameter_values", "n", "xerrs", "tvals", "rmsr", "rsq"} {
		assert.Contains(t, decoded, key)
	}
}

func TestWriteMD(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatMD, false))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| Parameter | Value | Standard Error | t-value |", lines[0])
	assert.Equal(t, "|---|---|---|---|", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "| c |"))
}

func TestWritePlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatPlain, true))

	out := buf.String()
	assert.Contains(t, out, "Parameter")
	assert.Contains(t, out, "3.21")
	assert.Contains(t, out, "R-sq Adjusted: 0.9996")
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatTable, false))

	out := buf.String()
	assert.Contains(t, out, "Parameter")
	assert.Contains(t, out, "m")
	assert.Contains(t, out, "1.771")
}
