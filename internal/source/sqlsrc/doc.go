// Package sqlsrc reads PostgreSQL tables and named queries as tables.
//
// Tables of one schema are listed from information_schema; named queries
// configured on the source are listed alongside them and take precedence
// over a table of the same name. Column names form the header.
package sqlsrc
