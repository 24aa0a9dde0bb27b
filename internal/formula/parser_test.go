package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/curvefit/internal/table"
)

func rowOf(vals ...float64) table.Row {
	cells := make([]table.Cell, len(vals))
	for i, v := range vals {
		cells[i] = table.NumberCell(v)
	}
	return table.NewRow(0, cells)
}

func TestClassification(t *testing.T) {
	h := table.NewHeaders("d")

	// The same identifier reused as operand and repeated must classify
	// exactly once on each side.
	m, err := ParseV1("x*x + d + d", h)
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, m.Params())
	assert.Equal(t, []string{"d"}, m.Vars())
	assert.Equal(t, 1, m.ParamsLen())
}

func TestParamFirstOccurrenceOrder(t *testing.T) {
	h := table.NewHeaders("x")

	m, err := ParseV1("a + b*a + x^c", h)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, m.Params())
}

func TestVarBindingIgnoresCaseAndWS(t *testing.T) {
	h := table.NewHeaders("a Space Col")

	m, err := ParseV1("k * aSpaceCol", h)
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, m.Params())
	assert.Equal(t, []string{"aSpaceCol"}, m.Vars())

	got, err := m.Solve([]float64{3}, rowOf(4))
	require.NoError(t, err)
	assert.Equal(t, 12.0, got)
}

func TestBuiltinWinsOverColumn(t *testing.T) {
	// A column named after a builtin never shadows the function.
	h := table.NewHeaders("sin")

	m, err := ParseV1("sin(x) + a", h)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "a"}, m.Params())
	assert.Empty(t, m.Vars())
}

func TestBuiltinMustBeCalled(t *testing.T) {
	h := table.NewHeaders("x")

	_, err := ParseV1("sin + 1", h)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Error(), "sin + 1")
}

func TestEvalArithmetic(t *testing.T) {
	h := table.NewHeaders("x")

	cases := []struct {
		formula string
		params  []float64
		x       float64
		want    float64
	}{
		{"m * x + c", []float64{2, 3}, 4, 11},
		{"2^3", nil, 0, 8},
		{"-2^2", nil, 0, -4},
		{"2^-2", nil, 0, 0.25},
		{"2^3^2", nil, 0, 512}, // right associative
		{"(1 + 2) * x", nil, 5, 15},
		{"10 - 4 - 3", nil, 0, 3},
		{"1 / x", nil, 4, 0.25},
		{"log(100)", nil, 0, 2},
		{"sqrt(abs(0 - 9))", nil, 0, 3},
		{"0.5e1 * x", nil, 2, 10},
	}

	for _, tc := range cases {
		m, err := ParseV1(tc.formula, h)
		require.NoError(t, err, tc.formula)

		got, err := m.Solve(tc.params, rowOf(tc.x))
		require.NoError(t, err, tc.formula)
		assert.InDelta(t, tc.want, got, 1e-12, tc.formula)
	}
}

func TestEvalBuiltins(t *testing.T) {
	h := table.NewHeaders("x")

	m, err := ParseV1("ln(exp(x))", h)
	require.NoError(t, err)
	got, err := m.Solve(nil, rowOf(1.5))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, got, 1e-12)
}

func TestSolveIsPure(t *testing.T) {
	h := table.NewHeaders("x")
	m, err := ParseV1("a * x", h)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := m.Solve([]float64{2}, rowOf(5))
		require.NoError(t, err)
		assert.Equal(t, 10.0, got)
	}

	got, err := m.Solve([]float64{7}, rowOf(5))
	require.NoError(t, err)
	assert.Equal(t, 35.0, got)
}

func TestSolveNonNumericCell(t *testing.T) {
	h := table.NewHeaders("x")
	m, err := ParseV1("a * x", h)
	require.NoError(t, err)

	row := table.NewRow(4, []table.Cell{table.TextCell("abc")})
	_, err = m.Solve([]float64{1}, row)

	var nn *table.NonNumericCellError
	require.ErrorAs(t, err, &nn)
	assert.Equal(t, 5, nn.Row)
	assert.Equal(t, 0, nn.Column)
}

func TestSyntaxErrorOffset(t *testing.T) {
	h := table.NewHeaders("x")

	_, err := ParseV1("1 + * 2", h)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 4, pe.Offset)
	assert.Contains(t, pe.Error(), "1 + * 2")

	_, err = ParseV1("a ? b", h)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Offset)
}

func TestZeroParamsParses(t *testing.T) {
	h := table.NewHeaders("d")

	m, err := ParseV1("2 * d", h)
	require.NoError(t, err)
	assert.Equal(t, 0, m.ParamsLen())
}

func TestTrialVectors(t *testing.T) {
	vecs := TrialVectors(3)
	require.Len(t, vecs, 4)
	assert.Equal(t, []float64{0, 0, 0}, vecs[0])
	assert.Equal(t, []float64{1, 1, 1}, vecs[1])
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, vecs[2])
	assert.Equal(t, []float64{0, 1, 2}, vecs[3])
}

func TestNonFiniteEvalIsNotAnError(t *testing.T) {
	h := table.NewHeaders("x")
	m, err := ParseV1("a / x", h)
	require.NoError(t, err)

	got, err := m.Solve([]float64{1}, rowOf(0))
	require.NoError(t, err)
	assert.True(t, math.IsInf(got, 1))
}
