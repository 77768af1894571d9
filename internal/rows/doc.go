// Package rows reads CSV source files and validates their rows into terms.
//
// The reader handles encoding artifacts (invalid UTF-8, ragged rows, quoted
// cells) and indexes the header; the validator is a pure function from one
// record plus its ValueSet context to a fully-typed term.
//
// Row numbering is logical and 1-based: the header is row 1, the first data
// row is row 2. Every validation failure is a vset.SchemaError carrying the
// row number and column name.
package rows
