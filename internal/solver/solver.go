package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/vk/curvefit/internal/ctxlog"
	"github.com/vk/curvefit/internal/formula"
	"github.com/vk/curvefit/internal/table"
)

const (
	defaultMaxIterations = 200

	// residualSentinel replaces non-finite residuals so a bad parameter
	// region raises the objective instead of poisoning it with NaN. The
	// magnitude is a tunable stabilisation constant, not a contract.
	residualSentinel = 1e10

	// finiteDiffEps is sqrt of float64 machine epsilon; perturbation sizes
	// scale from it.
	finiteDiffEps = 1.4901161193847656e-08

	ssrTolerance  = 1e-10
	stepTolerance = 1e-12

	dampingInit   = 1e-3
	dampingFactor = 10.0
	dampingFloor  = 1e-12

	// maxRejects bounds the damping retries within one outer iteration.
	maxRejects = 16
)

// Options tunes the optimizer. The zero value selects the defaults.
type Options struct {
	// MaxIterations caps the outer damped Gauss-Newton iterations.
	MaxIterations int
}

// Fit estimates the model's parameters by minimizing the sum of squared
// residuals against the target column. On success it returns the fitted
// parameter vector, in the model's parameter order, and the diagonal of
// (JᵀJ)⁻¹ at the optimum for standard-error computation.
func Fit(ctx context.Context, model formula.Model, data *table.Dataset, targetCol int, opts Options) ([]float64, []float64, error) {
	logger := ctxlog.FromContext(ctx)

	k := model.ParamsLen()
	if k == 0 {
		return nil, nil, &ZeroParametersError{Formula: model.Expr()}
	}
	if data.Len() == 0 {
		return nil, nil, errors.New("dataset has no observation rows")
	}
	// Fail fast on text cells; iterating on guaranteed-unsolvable data is
	// wasted work.
	if err := validateColumns(model, data, targetCol); err != nil {
		return nil, nil, err
	}

	n := data.Len()
	params := startingPoint(model, data)
	logger.Debug("starting point selected", "params", params)

	r := make([]float64, n)
	ssr, err := residuals(model, data, targetCol, params, r)
	if err != nil {
		return nil, nil, &SolveError{Kind: KindEval, Err: err}
	}

	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}

	jac := mat.NewDense(n, k, nil)
	trial := make([]float64, k)
	rTrial := make([]float64, n)
	lambda := dampingInit
	converged := false

	for iter := 0; iter < maxIter && !converged; iter++ {
		if err := jacobian(model, data, targetCol, params, jac); err != nil {
			return nil, nil, &SolveError{Kind: KindEval, Err: err}
		}

		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		var jtr mat.VecDense
		jtr.MulVec(jac.T(), mat.NewVecDense(n, r))

		accepted := false
		for reject := 0; reject < maxRejects; reject++ {
			delta, solveErr := dampedStep(&jtj, &jtr, lambda)
			if solveErr != nil {
				lambda *= dampingFactor
				continue
			}

			for i := range trial {
				trial[i] = params[i] - delta.AtVec(i)
			}
			trialSSR, err := residuals(model, data, targetCol, trial, rTrial)
			if err != nil {
				return nil, nil, &SolveError{Kind: KindEval, Err: err}
			}

			if trialSSR <= ssr {
				relative := (ssr - trialSSR) / math.Max(ssr, stepTolerance)
				negligible := mat.Norm(delta, 2) <= stepTolerance*(floatsNorm(params)+stepTolerance)

				copy(params, trial)
				r, rTrial = rTrial, r
				ssr = trialSSR
				lambda = math.Max(lambda/dampingFactor, dampingFloor)
				accepted = true

				logger.Debug("step accepted", "iter", iter, "ssr", ssr, "lambda", lambda)
				if relative < ssrTolerance || negligible {
					converged = true
				}
				break
			}
			lambda *= dampingFactor
		}

		if !accepted {
			// Damping grew past the point of producing any acceptable
			// step: the update is numerically negligible.
			logger.Debug("no acceptable step, stopping", "iter", iter, "ssr", ssr, "lambda", lambda)
			converged = true
		}
	}

	if !converged {
		return nil, nil, &SolveError{
			Kind: KindNoConvergence,
			Err:  fmt.Errorf("no convergence after %d iterations (ssr %g)", maxIter, ssr),
		}
	}

	cov, err := covarianceDiagonal(model, data, targetCol, params, jac)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("fit converged", "params", params, "ssr", ssr)
	return params, cov, nil
}

// dampedStep solves the Marquardt-damped normal equations
// (JᵀJ + λ·diag(JᵀJ))δ = Jᵀr for the parameter update δ.
func dampedStep(jtj *mat.Dense, jtr *mat.VecDense, lambda float64) (*mat.VecDense, error) {
	k, _ := jtj.Dims()

	damped := mat.NewDense(k, k, nil)
	damped.Copy(jtj)
	for i := 0; i < k; i++ {
		d := jtj.At(i, i)
		if d == 0 {
			// A zero curvature direction still needs damping to keep the
			// system solvable.
			d = 1
		}
		damped.Set(i, i, jtj.At(i, i)+lambda*d)
	}

	var delta mat.VecDense
	if err := delta.SolveVec(damped, jtr); err != nil {
		return nil, err
	}
	return &delta, nil
}

// residuals fills r with target − prediction per row and returns the sum of
// squares. Non-finite residuals are replaced by the sentinel magnitude
// rather than propagated.
func residuals(model formula.Model, data *table.Dataset, targetCol int, params []float64, r []float64) (float64, error) {
	var ssr float64
	for i := 0; i < data.Len(); i++ {
		row := data.Row(i)
		y, err := row.Number(targetCol)
		if err != nil {
			return 0, err
		}
		f, err := model.Solve(params, row)
		if err != nil {
			return 0, err
		}

		d := y - f
		if math.IsNaN(d) || math.IsInf(d, 0) {
			d = residualSentinel
		}
		r[i] = d
		ssr += d * d
	}
	return ssr, nil
}

// jacobian fills jac with ∂r/∂p by central finite differences, one
// parameter at a time.
func jacobian(model formula.Model, data *table.Dataset, targetCol int, params []float64, jac *mat.Dense) error {
	n, k := jac.Dims()

	perturbed := make([]float64, k)
	fwd := make([]float64, n)
	back := make([]float64, n)

	for j := 0; j < k; j++ {
		h := finiteDiffEps * math.Max(math.Abs(params[j]), 1)

		copy(perturbed, params)
		perturbed[j] = params[j] + h
		if _, err := residuals(model, data, targetCol, perturbed, fwd); err != nil {
			return err
		}
		perturbed[j] = params[j] - h
		if _, err := residuals(model, data, targetCol, perturbed, back); err != nil {
			return err
		}

		for i := 0; i < n; i++ {
			jac.Set(i, j, (fwd[i]-back[i])/(2*h))
		}
	}
	return nil
}

// covarianceDiagonal computes the diagonal of (JᵀJ)⁻¹ at the fitted
// parameters. A rank-deficient Jacobian is reported as KindSingular.
func covarianceDiagonal(model formula.Model, data *table.Dataset, targetCol int, params []float64, jac *mat.Dense) ([]float64, error) {
	if err := jacobian(model, data, targetCol, params, jac); err != nil {
		return nil, &SolveError{Kind: KindEval, Err: err}
	}

	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)

	var inv mat.Dense
	if err := inv.Inverse(&jtj); err != nil {
		return nil, &SolveError{Kind: KindSingular, Err: err}
	}

	_, k := jac.Dims()
	cov := make([]float64, k)
	for i := 0; i < k; i++ {
		c := inv.At(i, i)
		if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
			return nil, &SolveError{Kind: KindSingular, Err: fmt.Errorf("covariance diagonal entry %d is not a valid variance", i)}
		}
		cov[i] = c
	}
	return cov, nil
}

// validateColumns fails when any column referenced by the fit (target plus
// every bound variable) contains a text cell. The error locates the first
// offending row and column.
func validateColumns(model formula.Model, data *table.Dataset, targetCol int) error {
	cols := []int{targetCol}
	hdrs := data.Headers()
	for _, v := range model.Vars() {
		// Variables were bound through the same lookup at parse time, so a
		// miss here cannot happen; skipping is still safer than panicking.
		if i, ok := hdrs.FindIgnoreCaseAndWS(v); ok {
			cols = append(cols, i)
		}
	}

	for ri := 0; ri < data.Len(); ri++ {
		row := data.Row(ri)
		for _, c := range cols {
			if _, err := row.Number(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// startingPoint probes the deterministic trial sequence against the first
// row and uses the first vector with a finite evaluation. The probes are a
// heuristic; when all fail, the fit still proceeds from a small nonzero
// default.
func startingPoint(model formula.Model, data *table.Dataset) []float64 {
	k := model.ParamsLen()

	row := data.Row(0)
	for _, cand := range formula.TrialVectors(k) {
		v, err := model.Solve(cand, row)
		if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return cand
		}
	}

	p := make([]float64, k)
	for i := range p {
		p[i] = 0.1
	}
	return p
}

func floatsNorm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}
