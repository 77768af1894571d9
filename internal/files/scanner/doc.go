// Package scanner discovers candidate CSV source files for directory
// ingestion.
//
// The walk is non-recursive and deterministic: only regular files with a
// .csv extension (case-insensitive) directly inside the directory qualify,
// returned sorted by name so batch reports are stable across runs.
package scanner
