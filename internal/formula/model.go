package formula

import (
	"errors"
	"fmt"

	"github.com/vk/curvefit/internal/table"
)

// Model is a parsed formula ready for repeated evaluation. Implementations
// are logically immutable after parse: Solve is pure and safe to call any
// number of times with different parameter vectors and rows.
type Model interface {
	// ParamsLen is the number of free parameters. Zero parses fine but is
	// rejected by the solver.
	ParamsLen() int

	// Solve evaluates the formula for one row, substituting params[i] for
	// the i-th free parameter. A text cell under a bound column surfaces as
	// a *table.NonNumericCellError; any other error is a hard evaluation
	// fault.
	Solve(params []float64, row table.Row) (float64, error)

	// Params returns the free parameter names in first-occurrence order.
	// This order is authoritative for interpreting the solver's output.
	Params() []string

	// Vars returns the column-bound identifier names as written in the
	// formula.
	Vars() []string

	// Expr returns the original formula text, for diagnostics.
	Expr() string
}

// Resolver selects a formula grammar version.
type Resolver string

const (
	// ResolverV1 is the default hand-written grammar with `^`.
	ResolverV1 Resolver = "v1"
	// ResolverV2 is the HCL native expression grammar.
	ResolverV2 Resolver = "v2"
)

// Parse parses formula with the chosen resolver against the header index.
// An empty resolver selects v1.
func Parse(resolver Resolver, formula string, headers *table.Headers) (Model, error) {
	switch resolver {
	case ResolverV1, "":
		return ParseV1(formula, headers)
	case ResolverV2:
		return ParseV2(formula, headers)
	default:
		return nil, fmt.Errorf("unknown equation resolver %q", resolver)
	}
}

// ParseError reports a formula that could not be parsed, or that could not
// be evaluated with any trial parameter vector. It always echoes the
// original formula text.
type ParseError struct {
	Formula string
	// Offset is the byte offset of the fault in Formula, or -1 when the
	// grammar could not localize it.
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("parsing '%s' failed at offset %d: %v", e.Formula, e.Offset, e.Err)
	}
	return fmt.Sprintf("parsing '%s' failed: %v", e.Formula, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// binding ties an identifier as written in the formula to its column index.
type binding struct {
	name string
	col  int
}

// TrialVectors returns the deterministic probe sequence used to find an
// evaluable parameter vector: all zeros, all ones, all 0.5, then the index
// sequence 0, 1, 2, ...
func TrialVectors(k int) [][]float64 {
	fill := func(f func(i int) float64) []float64 {
		v := make([]float64, k)
		for i := range v {
			v[i] = f(i)
		}
		return v
	}
	return [][]float64{
		fill(func(int) float64 { return 0 }),
		fill(func(int) float64 { return 1 }),
		fill(func(int) float64 { return 0.5 }),
		fill(func(i int) float64 { return float64(i) }),
	}
}

// probeEvaluable confirms a freshly parsed model is structurally evaluable:
// at least one trial parameter vector must evaluate against a synthetic
// all-ones row without a hard fault. A non-finite result is acceptable here
// since real rows may still produce finite values.
func probeEvaluable(m Model, width int) error {
	cells := make([]table.Cell, width)
	for i := range cells {
		cells[i] = table.NumberCell(1)
	}
	row := table.NewRow(0, cells)

	var last error
	for _, trial := range TrialVectors(m.ParamsLen()) {
		if _, err := m.Solve(trial, row); err == nil {
			return nil
		} else {
			last = err
		}
	}
	if last == nil {
		last = errors.New("no trial evaluation attempted")
	}
	return fmt.Errorf("formula is not evaluable with any trial parameter vector: %w", last)
}
