package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/curvefit/internal/formula"
	"github.com/vk/curvefit/internal/table"
)

func buildData(t *testing.T, ys, xs []float64) *table.Dataset {
	t.Helper()
	rows := make([][]table.Cell, len(ys))
	for i := range ys {
		rows[i] = []table.Cell{table.NumberCell(ys[i]), table.NumberCell(xs[i])}
	}
	d, err := table.New(table.NewHeaders("y", "x"), rows)
	require.NoError(t, err)
	return d
}

func TestSummarize(t *testing.T) {
	ys := []float64{2.1, 3.9, 6.0, 8.1}
	xs := []float64{1, 2, 3, 4}
	data := buildData(t, ys, xs)

	m, err := formula.ParseV1("m * x", data.Headers())
	require.NoError(t, err)

	params := []float64{2.0}
	covDiag := []float64{0.25}

	res, err := Summarize(m, data, 0, params, covDiag)
	require.NoError(t, err)

	// Recompute the expectations directly from the definitions.
	var meanY float64
	for _, y := range ys {
		meanY += y
	}
	meanY /= 4

	var ssr, sse float64
	for i := range ys {
		pred := 2.0 * xs[i]
		ssr += (ys[i] - pred) * (ys[i] - pred)
		sse += (pred - meanY) * (pred - meanY)
	}
	dfr := 2.0 // n - k - 1
	rmsr := math.Sqrt(ssr / dfr)
	rsq := 1 - ssr/(ssr+sse)
	adj := 1 - (1-rsq)*3/dfr

	assert.Equal(t, []string{"m"}, res.Names)
	assert.Equal(t, params, res.Values)
	assert.Equal(t, 4, res.N)
	assert.InDelta(t, rmsr, res.RMSR, 1e-12)
	assert.InDelta(t, adj, res.AdjRSquared, 1e-12)
	require.Len(t, res.StdErrs, 1)
	assert.InDelta(t, 0.5*rmsr, res.StdErrs[0], 1e-12)
	assert.InDelta(t, 2.0/(0.5*rmsr), res.TValues[0], 1e-12)
}

func TestSummarizeResultIsDetached(t *testing.T) {
	data := buildData(t, []float64{1, 2, 3, 4}, []float64{1, 2, 3, 4})
	m, err := formula.ParseV1("m * x", data.Headers())
	require.NoError(t, err)

	params := []float64{1.01}
	res, err := Summarize(m, data, 0, params, []float64{0.1})
	require.NoError(t, err)

	// Mutating the caller's slice must not reach into the result.
	params[0] = 99
	assert.Equal(t, 1.01, res.Values[0])
}

func TestSummarizeDegenerate(t *testing.T) {
	data := buildData(t, []float64{1, 2}, []float64{1, 2})
	m, err := formula.ParseV1("m * x", data.Headers())
	require.NoError(t, err)

	// n = 2, k = 1 leaves dfr = 0.
	_, err = Summarize(m, data, 0, []float64{1}, []float64{0.1})

	var de *DegenerateError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 2, de.N)
	assert.Equal(t, 1, de.K)
}

func TestSummarizeUnevaluableModel(t *testing.T) {
	rows := [][]table.Cell{
		{table.NumberCell(1), table.NumberCell(1)},
		{table.NumberCell(2), table.NumberCell(2)},
		{table.NumberCell(3), table.TextCell("bad")},
		{table.NumberCell(4), table.NumberCell(4)},
	}
	data, err := table.New(table.NewHeaders("y", "x"), rows)
	require.NoError(t, err)

	m, err := formula.ParseV1("m * x", data.Headers())
	require.NoError(t, err)

	_, err = Summarize(m, data, 0, []float64{1}, []float64{0.1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summarising")
}
