// Package engine executes a mapping against the rows of one table and
// produces a normalized dataset plus row-scoped errors.
//
// Execution has three phases:
//
//  1. Resolution: every node is resolved once against the header and column
//     count. Unknown header names, out-of-range columns and mappings that
//     fail validation are reported as a StructuralError before any row is
//     read.
//  2. Pivot header pass: for pivoted mappings, rows up to the last pivot row
//     are read once and every eligible column gets its tuple of pivot values,
//     converted with the row type of each header row.
//  3. Data pass: rows from the first data row are read up to MaxRows. A
//     conversion failure or a missing required name drops that row (or that
//     single pivoted cell) and records a RowError; other rows are unaffected.
//
// Execute is synchronous and never logs. All I/O goes through the Rows
// cursor it is given.
package engine
