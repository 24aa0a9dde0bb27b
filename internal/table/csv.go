package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ReadCSV ingests a CSV stream. The first record is the header row; every
// following record is parsed cell by cell with best-effort numeric
// detection.
func ReadCSV(r io.Reader) (*Dataset, error) {
	rdr := csv.NewReader(r)

	rec, err := rdr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("headers row is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header row: %w", err)
	}

	headers := NewHeaders(rec...)

	var rows [][]Cell
	for i := 1; ; i++ {
		rec, err := rdr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d in CSV: %w", i, err)
		}

		row := make([]Cell, len(rec))
		for j, raw := range rec {
			row[j] = ParseCell(raw)
		}
		rows = append(rows, row)
	}

	return New(headers, rows)
}
