// Package render writes a fit result to a stream in one of the supported
// output formats.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vk/curvefit/internal/stats"
)

// Format selects how a fit result is written.
type Format string

const (
	// FormatTable is a rich bordered table, the default.
	FormatTable Format = "table"
	// FormatPlain is a plain space separated table.
	FormatPlain Format = "plain"
	// FormatCSV is comma separated output with full-precision values.
	FormatCSV Format = "csv"
	// FormatMD is a Markdown table.
	FormatMD Format = "md"
	// FormatJSON is the serialised result structure.
	FormatJSON Format = "json"
)

var resultHeader = []string{"Parameter", "Value", "Standard Error", "t-value"}

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatPlain, FormatCSV, FormatMD, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected table, plain, csv, md or json)", s)
	}
}

// Write renders the fit result to w. The statistics block is appended
// unless withStats is false; JSON output always carries every field.
func Write(w io.Writer, res *stats.FitResult, format Format, withStats bool) error {
	switch format {
	case FormatTable:
		return writeTable(w, res, withStats)
	case FormatPlain:
		return writePlain(w, res, withStats)
	case FormatCSV:
		return writeCSV(w, res, withStats)
	case FormatMD:
		return writeMD(w, res, withStats)
	case FormatJSON:
		return json.NewEncoder(w).Encode(res)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeTable(w io.Writer, res *stats.FitResult, withStats bool) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		StyleFunc(func(int, int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(resultHeader...)

	for i := range res.Names {
		t.Row(res.Names[i], short(res.Values[i]), short(res.StdErrs[i]), short(res.TValues[i]))
	}

	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}
	if withStats {
		return writeStats(w, res)
	}
	return nil
}

func writePlain(w io.Writer, res *stats.FitResult, withStats bool) error {
	rows := [][]string{resultHeader}
	for i := range res.Names {
		rows = append(rows, []string{res.Names[i], short(res.Values[i]), short(res.StdErrs[i]), short(res.TValues[i])})
	}

	widths := make([]int, len(resultHeader))
	for _, row := range rows {
		for j, cell := range row {
			if len(cell) > widths[j] {
				widths[j] = len(cell)
			}
		}
	}

	for _, row := range rows {
		for j, cell := range row {
			if _, err := fmt.Fprintf(w, " %-*s", widths[j], cell); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if withStats {
		return writeStats(w, res)
	}
	return nil
}

func writeCSV(w io.Writer, res *stats.FitResult, withStats bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeader); err != nil {
		return err
	}
	for i := range res.Names {
		rec := []string{res.Names[i], full(res.Values[i]), full(res.StdErrs[i]), full(res.TValues[i])}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	if withStats {
		return writeStats(w, res)
	}
	return nil
}

func writeMD(w io.Writer, res *stats.FitResult, withStats bool) error {
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(resultHeader, " | ")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|---|---|---|---|"); err != nil {
		return err
	}
	for i := range res.Names {
		_, err := fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			res.Names[i], short(res.Values[i]), short(res.StdErrs[i]), short(res.TValues[i]))
		if err != nil {
			return err
		}
	}

	if withStats {
		return writeStats(w, res)
	}
	return nil
}

func writeStats(w io.Writer, res *stats.FitResult) error {
	_, err := fmt.Fprintf(w,
		"  Number of observations: %d\n  Root Mean Squared Residual error: %s\n  R-sq Adjusted: %s\n",
		res.N, short(res.RMSR), short(res.AdjRSquared))
	return err
}

// short is the human-facing value formatting: four significant digits.
func short(f float64) string {
	return strconv.FormatFloat(f, 'g', 4, 64)
}

// full is the machine-facing formatting with no loss of precision.
func full(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
