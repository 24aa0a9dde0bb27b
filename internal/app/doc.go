// Package app is the composition root: it owns the run configuration, the
// logger, and the straight-line fit pipeline from CSV ingestion to the
// rendered result.
package app
