// Package table holds the tabular input model: an ordered header index,
// best-effort numeric cells, and a Dataset of uniform-length rows.
package table
