package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vk/curvefit/internal/ctxlog"
	"github.com/vk/curvefit/internal/formula"
	"github.com/vk/curvefit/internal/render"
	"github.com/vk/curvefit/internal/solver"
	"github.com/vk/curvefit/internal/stats"
	"github.com/vk/curvefit/internal/table"
)

// Run executes the full pipeline: ingest, parse, fit, summarise, render.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	in, cleanup, err := a.openInput()
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := table.ReadCSV(in)
	if err != nil {
		return a.withSource(err)
	}
	a.logger.Debug("dataset ingested", "rows", data.Len(), "columns", data.Headers().Len())

	model, err := formula.Parse(a.cfg.Resolver, a.cfg.Formula, data.Headers())
	if err != nil {
		return a.withSource(err)
	}
	a.logger.Debug("formula parsed", "params", model.Params(), "vars", model.Vars())

	if a.cfg.Debug {
		return a.writeDebug(model, data.Headers())
	}

	tgt, ok := data.Headers().FindIgnoreCaseAndWS(a.cfg.Target)
	if !ok {
		return a.withSource(&table.ColumnNotFoundError{
			Column: a.cfg.Target,
			Help:   data.Headers().SuggestHelp(a.cfg.Target),
		})
	}

	params, cov, err := solver.Fit(ctx, model, data, tgt, solver.Options{MaxIterations: a.cfg.MaxIterations})
	if err != nil {
		return a.withSource(err)
	}

	res, err := stats.Summarize(model, data, tgt, params, cov)
	if err != nil {
		return a.withSource(err)
	}

	return render.Write(a.outW, res, a.cfg.Output, !a.cfg.NoStats)
}

func (a *App) openInput() (io.Reader, func(), error) {
	if a.cfg.DataPath == "" {
		fmt.Fprintln(a.errW, "Reading CSV from stdin")
		return a.inR, func() {}, nil
	}

	f, err := os.Open(a.cfg.DataPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open '%s': %w", a.cfg.DataPath, err)
	}
	return f, func() { f.Close() }, nil
}

// withSource prefixes an error with where the data came from.
func (a *App) withSource(err error) error {
	if a.cfg.DataPath != "" {
		return fmt.Errorf("in '%s': %w", a.cfg.DataPath, err)
	}
	return fmt.Errorf("from stdin: %w", err)
}

// writeDebug prints the parsed expression and its identifier
// classification without attempting a fit.
func (a *App) writeDebug(model formula.Model, hdrs *table.Headers) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Expression:\n  %s\n", model.Expr())

	b.WriteString("Parameters:\n")
	params := model.Params()
	if len(params) == 0 {
		b.WriteString("  <none>\n")
	}
	for _, p := range params {
		b.WriteString("  " + p)
		// A parameter that nearly matches a header is usually a typo.
		if len(hdrs.FuzzyMatch(p)) > 0 {
			b.WriteString(" :: " + hdrs.SuggestHelp(p))
		}
		b.WriteByte('\n')
	}

	b.WriteString("Variables:\n")
	vars := model.Vars()
	if len(vars) == 0 {
		b.WriteString("  <none>\n")
	}
	for _, v := range vars {
		b.WriteString("  " + v + "\n")
	}

	fmt.Fprintf(&b, "Target:\n  %s\n", a.cfg.Target)

	if _, err := io.WriteString(a.outW, b.String()); err != nil {
		return err
	}

	if _, ok := hdrs.FindIgnoreCaseAndWS(a.cfg.Target); !ok {
		return &table.ColumnNotFoundError{Column: a.cfg.Target, Help: hdrs.SuggestHelp(a.cfg.Target)}
	}
	return nil
}
