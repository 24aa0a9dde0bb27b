package formula

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/vk/curvefit/internal/table"
)

// ModelV2 resolves formulas with the HCL native expression grammar. The
// grammar has no exponent operator; exponentiation is the pow(a, b)
// builtin.
type ModelV2 struct {
	src    string
	expr   hcl.Expression
	vars   []binding
	params []string
	funcs  map[string]function.Function
}

// ParseV2 parses src as an HCL expression against the header index.
func ParseV2(src string, headers *table.Headers) (*ModelV2, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "formula", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, &ParseError{Formula: src, Offset: diagOffset(diags), Err: diags}
	}

	funcs := ctyBuiltins()

	// Function calls never appear in Variables(), so builtin names cannot
	// be captured as columns or parameters. Unknown calls are rejected up
	// front rather than on first evaluation.
	if syntaxExpr, ok := expr.(hclsyntax.Expression); ok {
		called := map[string]struct{}{}
		walkForFunctions(syntaxExpr, called)
		for name := range called {
			if _, ok := funcs[name]; !ok {
				return nil, &ParseError{Formula: src, Offset: -1, Err: fmt.Errorf("unknown function %q", name)}
			}
		}
	}

	var vars []binding
	var params []string
	varSeen := map[string]struct{}{}
	paramSeen := map[string]struct{}{}

	for _, traversal := range expr.Variables() {
		if len(traversal) != 1 {
			return nil, &ParseError{
				Formula: src,
				Offset:  traversal.SourceRange().Start.Byte,
				Err:     fmt.Errorf("only bare identifiers may be referenced"),
			}
		}
		name := traversal.RootName()

		if col, ok := headers.FindIgnoreCaseAndWS(name); ok {
			if _, seen := varSeen[name]; !seen {
				varSeen[name] = struct{}{}
				vars = append(vars, binding{name: name, col: col})
			}
			continue
		}
		if _, seen := paramSeen[name]; !seen {
			paramSeen[name] = struct{}{}
			params = append(params, name)
		}
	}

	m := &ModelV2{src: src, expr: expr, vars: vars, params: params, funcs: funcs}
	if err := probeEvaluable(m, headers.Len()); err != nil {
		return nil, &ParseError{Formula: src, Offset: -1, Err: err}
	}
	return m, nil
}

// ParamsLen is the number of free parameters.
func (m *ModelV2) ParamsLen() int { return len(m.params) }

// Params returns the free parameter names in first-occurrence order.
func (m *ModelV2) Params() []string { return append([]string(nil), m.params...) }

// Vars returns the column-bound identifier names.
func (m *ModelV2) Vars() []string {
	out := make([]string, len(m.vars))
	for i, b := range m.vars {
		out[i] = b.name
	}
	return out
}

// Expr returns the original formula text.
func (m *ModelV2) Expr() string { return m.src }

// Solve evaluates the formula for one row by building a fresh evaluation
// context: parameters and bound columns as cty numbers, plus the builtin
// function table.
func (m *ModelV2) Solve(params []float64, row table.Row) (float64, error) {
	if len(params) != len(m.params) {
		return 0, fmt.Errorf("formula has %d parameters but %d values were supplied", len(m.params), len(params))
	}

	vars := make(map[string]cty.Value, len(m.params)+len(m.vars))
	for i, name := range m.params {
		vars[name] = ctyNumber(params[i])
	}
	for _, b := range m.vars {
		f, err := row.Number(b.col)
		if err != nil {
			return 0, err
		}
		vars[b.name] = ctyNumber(f)
	}

	val, diags := m.expr.Value(&hcl.EvalContext{Variables: vars, Functions: m.funcs})
	if diags.HasErrors() {
		return 0, fmt.Errorf("evaluating '%s': %w", m.src, diags)
	}
	if val.Type() != cty.Number {
		return 0, fmt.Errorf("evaluating '%s': result is %s, not a number", m.src, val.Type().FriendlyName())
	}

	f, _ := val.AsBigFloat().Float64()
	return f, nil
}

// ctyNumber converts a float to a cty number. cty cannot represent NaN, so
// the closest non-finite stand-in is used; the solver treats every
// non-finite result the same way.
func ctyNumber(f float64) cty.Value {
	if math.IsNaN(f) {
		return cty.PositiveInfinity
	}
	return cty.NumberFloatVal(f)
}

// ctyBuiltins wraps the default function context as cty functions and adds
// pow, which stands in for the missing exponent operator.
func ctyBuiltins() map[string]function.Function {
	unary := func(fn func(float64) float64) function.Function {
		return function.New(&function.Spec{
			Params: []function.Parameter{{Name: "x", Type: cty.Number}},
			Type:   function.StaticReturnType(cty.Number),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				x, _ := args[0].AsBigFloat().Float64()
				return ctyNumber(fn(x)), nil
			},
		})
	}

	funcs := make(map[string]function.Function)
	for name, b := range DefaultBuiltins() {
		funcs[name] = unary(b.Fn)
	}

	funcs["pow"] = function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "base", Type: cty.Number},
			{Name: "exponent", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			base, _ := args[0].AsBigFloat().Float64()
			exp, _ := args[1].AsBigFloat().Float64()
			return ctyNumber(math.Pow(base, exp)), nil
		},
	})

	return funcs
}

// walkForFunctions recursively collects function call names from the
// subset of the HCL syntax tree a formula can produce.
func walkForFunctions(expr hclsyntax.Expression, out map[string]struct{}) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		out[e.Name] = struct{}{}
		for _, arg := range e.Args {
			walkForFunctions(arg, out)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(e.LHS, out)
		walkForFunctions(e.RHS, out)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(e.Val, out)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(e.Expression, out)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(e.Condition, out)
		walkForFunctions(e.TrueResult, out)
		walkForFunctions(e.FalseResult, out)
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			walkForFunctions(part, out)
		}
	case *hclsyntax.TemplateWrapExpr:
		walkForFunctions(e.Wrapped, out)
	}
}

func diagOffset(diags hcl.Diagnostics) int {
	for _, d := range diags {
		if d.Subject != nil {
			return d.Subject.Start.Byte
		}
	}
	return -1
}
