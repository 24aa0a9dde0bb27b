package formula

import (
	"fmt"
	"math"

	"github.com/vk/curvefit/internal/table"
)

// evalEnv carries the per-call state for one evaluation. Nothing in it is
// retained between calls, keeping Solve pure.
type evalEnv struct {
	params []float64
	row    table.Row
	vars   []binding
}

type astNode interface {
	eval(env *evalEnv) (float64, error)
}

type litNode struct {
	val float64
}

func (n *litNode) eval(*evalEnv) (float64, error) { return n.val, nil }

type paramNode struct {
	idx  int
	name string
}

func (n *paramNode) eval(env *evalEnv) (float64, error) {
	if n.idx >= len(env.params) {
		return 0, fmt.Errorf("no value bound for parameter %q", n.name)
	}
	return env.params[n.idx], nil
}

// varNode reads the current row at the bound column.
type varNode struct {
	idx int
}

func (n *varNode) eval(env *evalEnv) (float64, error) {
	return env.row.Number(env.vars[n.idx].col)
}

type negNode struct {
	operand astNode
}

func (n *negNode) eval(env *evalEnv) (float64, error) {
	v, err := n.operand.eval(env)
	return -v, err
}

type binaryNode struct {
	op       tokenKind
	lhs, rhs astNode
}

func (n *binaryNode) eval(env *evalEnv) (float64, error) {
	l, err := n.lhs.eval(env)
	if err != nil {
		return 0, err
	}
	r, err := n.rhs.eval(env)
	if err != nil {
		return 0, err
	}

	switch n.op {
	case tokPlus:
		return l + r, nil
	case tokMinus:
		return l - r, nil
	case tokStar:
		return l * r, nil
	case tokSlash:
		return l / r, nil
	case tokCaret:
		return math.Pow(l, r), nil
	}
	return 0, fmt.Errorf("unknown operator %v", n.op)
}

type callNode struct {
	fn  Builtin
	arg astNode
}

func (n *callNode) eval(env *evalEnv) (float64, error) {
	v, err := n.arg.eval(env)
	if err != nil {
		return 0, err
	}
	return n.fn.Fn(v), nil
}

// ModelV1 is the default equation resolver: a hand-written grammar over
// + - * / ^, unary minus, parentheses, float literals, and the builtin
// function calls.
type ModelV1 struct {
	src      string
	root     astNode
	vars     []binding
	params   []string
	builtins Builtins
}

// ParseV1 parses src against the header index with the default builtins.
func ParseV1(src string, headers *table.Headers) (*ModelV1, error) {
	return parseV1(src, headers, DefaultBuiltins())
}

func parseV1(src string, headers *table.Headers, builtins Builtins) (*ModelV1, error) {
	root, vars, params, err := parseFormula(src, headers, builtins)
	if err != nil {
		offset := -1
		if se, ok := err.(*syntaxError); ok {
			offset = se.pos
		}
		return nil, &ParseError{Formula: src, Offset: offset, Err: err}
	}

	m := &ModelV1{src: src, root: root, vars: vars, params: params, builtins: builtins}
	if err := probeEvaluable(m, headers.Len()); err != nil {
		return nil, &ParseError{Formula: src, Offset: -1, Err: err}
	}
	return m, nil
}

// ParamsLen is the number of free parameters.
func (m *ModelV1) ParamsLen() int { return len(m.params) }

// Params returns the free parameter names in first-occurrence order.
func (m *ModelV1) Params() []string { return append([]string(nil), m.params...) }

// Vars returns the column-bound identifier names.
func (m *ModelV1) Vars() []string {
	out := make([]string, len(m.vars))
	for i, b := range m.vars {
		out[i] = b.name
	}
	return out
}

// Expr returns the original formula text.
func (m *ModelV1) Expr() string { return m.src }

// Solve evaluates the formula for one row.
func (m *ModelV1) Solve(params []float64, row table.Row) (float64, error) {
	if len(params) != len(m.params) {
		return 0, fmt.Errorf("formula has %d parameters but %d values were supplied", len(m.params), len(params))
	}
	env := evalEnv{params: params, row: row, vars: m.vars}
	return m.root.eval(&env)
}
