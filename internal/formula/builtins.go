package formula

import "math"

// Builtin is a named unary math function available inside formulas.
type Builtin struct {
	Name string
	Fn   func(float64) float64
}

// Builtins is the fixed function context for formula evaluation. It is an
// explicit value rather than package state so evaluation never depends on
// process-wide initialisation. Function names always win over column names
// during identifier classification.
type Builtins map[string]Builtin

// DefaultBuiltins returns the standard function context.
func DefaultBuiltins() Builtins {
	fns := []Builtin{
		{Name: "sin", Fn: math.Sin},
		{Name: "cos", Fn: math.Cos},
		{Name: "tan", Fn: math.Tan},
		{Name: "ln", Fn: math.Log},
		{Name: "log", Fn: math.Log10},
		{Name: "sqrt", Fn: math.Sqrt},
		{Name: "exp", Fn: math.Exp},
		{Name: "abs", Fn: math.Abs},
	}

	b := make(Builtins, len(fns))
	for _, f := range fns {
		b[f.Name] = f
	}
	return b
}
