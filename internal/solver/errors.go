package solver

import "fmt"

// ZeroParametersError reports a formula with no free parameters: an
// all-constant or fully column-bound expression cannot be fit.
type ZeroParametersError struct {
	Formula string
}

func (e *ZeroParametersError) Error() string {
	return fmt.Sprintf("formula '%s' has no free parameters to fit; leave at least one identifier unbound from the columns", e.Formula)
}

// SolveKind classifies optimizer failures.
type SolveKind int

const (
	// KindSingular: the Jacobian is rank-deficient at the optimum, so the
	// parameter covariance cannot be computed.
	KindSingular SolveKind = iota
	// KindNoConvergence: the iteration cap was reached before the stopping
	// tolerance was satisfied.
	KindNoConvergence
	// KindEval: the model could not be evaluated at all. This is a hard
	// fault, distinct from the non-finite sentinel path.
	KindEval
)

func (k SolveKind) String() string {
	switch k {
	case KindSingular:
		return "singular"
	case KindNoConvergence:
		return "no convergence"
	case KindEval:
		return "evaluation fault"
	}
	return "unknown"
}

// SolveError is an optimizer failure. It is never downgraded to a default
// parameter vector.
type SolveError struct {
	Kind SolveKind
	Err  error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("failed to fit the equation to the input data: %s: %v", e.Kind, e.Err)
}

func (e *SolveError) Unwrap() error { return e.Err }
