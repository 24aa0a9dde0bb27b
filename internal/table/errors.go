package table

import "fmt"

// NonNumericCellError reports a text cell in a column the fit requires to be
// numeric. Row is 1-based, matching how users count CSV data rows.
type NonNumericCellError struct {
	Row    int
	Column int
	Text   string
}

func (e *NonNumericCellError) Error() string {
	return fmt.Sprintf("in row %d: in column index %d: failed to parse %q as a number", e.Row, e.Column, e.Text)
}

// ColumnNotFoundError reports a target or variable name with no matching
// header. Help carries the fuzzy-match suggestion line.
type ColumnNotFoundError struct {
	Column string
	Help   string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("could not find column %q in headers\n%s", e.Column, e.Help)
}
