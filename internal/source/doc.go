// Package source defines how tabular data reaches the mapping engine.
//
// A Source lists the tables it holds and opens any of them as a Table: a
// header, a column count and a forward-only Rows cursor. Opening the same
// table again yields a fresh, equivalent cursor, so header detection and
// mapped execution can make independent passes.
//
// Adapters live in subpackages: csvsrc for delimited text, excelsrc for
// spreadsheets and sqlsrc for PostgreSQL. Memory serves tests and callers
// that already hold rows.
package source
