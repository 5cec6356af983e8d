// Package census implements the employer census ingestion core: extraction
// of tabular data from CSV, XLS and XLSX bytes, resolution of logical fields
// to physical columns, value normalization, rule-based validation and
// standardized output generation.
//
// # Architecture
//
// The package is a pure pipeline with no I/O beyond the bytes handed to it:
//
//	Extract -> Resolve -> Standardizer.Run -> Report
//
// Extract parses raw file bytes into a Table of header-keyed rows. Resolve
// maps the logical census fields (name, DOB, ZIP, gender, relationship,
// enrollment tier) onto the file's headers using an alias table and explicit
// overrides. Standardizer.Run normalizes each value, evaluates the rule
// catalog and, when every required field resolved, builds the standardized
// records in canonical column order.
//
// Callers that need network assignment feed the extracted rows and the
// resolved ZIP header to the network package; the two stages share the
// Table but make decisions independently.
//
// # Error Handling
//
// Only extraction fails hard: ErrUnsupportedFormat, ErrEmptyFile and
// ErrMissingHeaderRow abort a run before any row is processed. Every
// downstream problem is reported as an Issue carrying a stable RuleCode
// (see rules.go) instead of an error, so a single pass collects everything
// a reviewer needs to fix the file.
package census
