// Package stats turns the solver's output into the reported fit
// statistics: standard errors, t-values, root mean squared residual, and
// adjusted R squared.
package stats

import (
	"fmt"
	"math"

	"github.com/vk/curvefit/internal/formula"
	"github.com/vk/curvefit/internal/table"
)

// FitResult is the final artifact of a successful fit. It is created once
// and never mutated; downstream rendering depends on exactly these fields.
type FitResult struct {
	// Names holds the parameter names, in the model's parameter order.
	Names []string `json:"parameter_names"`
	// Values holds the fitted parameter values, aligned with Names.
	Values []float64 `json:"parameter_values"`
	// N is the number of observations.
	N int `json:"n"`
	// StdErrs is the standard error of each parameter.
	StdErrs []float64 `json:"xerrs"`
	// TValues is each parameter's t-statistic.
	TValues []float64 `json:"tvals"`
	// RMSR is the root mean squared residual error.
	RMSR float64 `json:"rmsr"`
	// AdjRSquared is the adjusted R squared value.
	AdjRSquared float64 `json:"rsq"`
}

// DegenerateError reports insufficient degrees of freedom for the
// standard-error computation: n must exceed k+1.
type DegenerateError struct {
	N, K int
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("cannot compute fit statistics: %d observations leave no residual degrees of freedom for %d parameters", e.N, e.K)
}

// Summarize computes the post-fit statistics for a fitted model. covDiag is
// the unit-scale covariance diagonal from the solver; it is rescaled by the
// residual variance here, matching linear-regression standard-error
// conventions.
func Summarize(model formula.Model, data *table.Dataset, targetCol int, params, covDiag []float64) (*FitResult, error) {
	n := data.Len()
	k := len(params)

	dfr := float64(n - k - 1)
	if dfr <= 0 {
		return nil, &DegenerateError{N: n, K: k}
	}

	ys := make([]float64, n)
	var meanY float64
	for i := 0; i < n; i++ {
		y, err := data.Row(i).Number(targetCol)
		if err != nil {
			return nil, fmt.Errorf("summarising fit: %w", err)
		}
		ys[i] = y
		meanY += y
	}
	meanY /= float64(n)

	// The fit already succeeded, so a model that cannot evaluate the full
	// dataset here is an invariant violation worth surfacing loudly.
	preds := make([]float64, n)
	for i := 0; i < n; i++ {
		f, err := model.Solve(params, data.Row(i))
		if err != nil {
			return nil, fmt.Errorf("failed to solve equation when summarising: %w", err)
		}
		preds[i] = f
	}

	var ssr, sse float64
	for i := 0; i < n; i++ {
		d := ys[i] - preds[i]
		ssr += d * d
		e := preds[i] - meanY
		sse += e * e
	}

	rmsr := math.Sqrt(ssr / dfr)
	rsq := 1 - ssr/(ssr+sse)
	adjRsq := 1 - (1-rsq)*float64(n-1)/dfr

	stderrs := make([]float64, k)
	tvals := make([]float64, k)
	for i := 0; i < k; i++ {
		stderrs[i] = math.Sqrt(covDiag[i]) * rmsr
		tvals[i] = params[i] / stderrs[i]
	}

	return &FitResult{
		Names:       model.Params(),
		Values:      append([]float64(nil), params...),
		N:           n,
		StdErrs:     stderrs,
		TValues:     tvals,
		RMSR:        rmsr,
		AdjRSquared: adjRsq,
	}, nil
}
