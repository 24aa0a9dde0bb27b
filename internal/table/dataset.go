package table

import "fmt"

// Dataset pairs a header index with observation rows. Every row has exactly
// one cell per header; New enforces this at construction.
type Dataset struct {
	headers *Headers
	rows    [][]Cell
}

// New builds a Dataset, verifying that each row length matches the header
// count. The error names the offending row with a 1-based index.
func New(headers *Headers, rows [][]Cell) (*Dataset, error) {
	for i, row := range rows {
		if len(row) != headers.Len() {
			return nil, fmt.Errorf("row %d has %d cells but the headers have %d columns", i+1, len(row), headers.Len())
		}
	}
	return &Dataset{headers: headers, rows: rows}, nil
}

// Len is the number of observation rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Headers returns the dataset's header index.
func (d *Dataset) Headers() *Headers { return d.headers }

// Row returns a read-only view of the i-th observation (0-based).
func (d *Dataset) Row(i int) Row {
	return Row{Index: i, cells: d.rows[i]}
}

// Row is a view over a single observation. It borrows the dataset's cells
// and must not outlive it.
type Row struct {
	// Index is the 0-based observation index.
	Index int

	cells []Cell
}

// NewRow builds a standalone row, used for trial evaluations and tests.
func NewRow(index int, cells []Cell) Row {
	return Row{Index: index, cells: cells}
}

// Len is the number of cells in the row.
func (r Row) Len() int { return len(r.cells) }

// Cell returns the cell at the column index.
func (r Row) Cell(col int) Cell { return r.cells[col] }

// Number returns the numeric value at the column index, or a
// *NonNumericCellError locating the offending cell when it holds text.
func (r Row) Number(col int) (float64, error) {
	if f, ok := r.cells[col].Number(); ok {
		return f, nil
	}
	return 0, &NonNumericCellError{Row: r.Index + 1, Column: col, Text: r.cells[col].String()}
}
