// Package csvsrc reads delimited text files as tables.
//
// A source is built from files and directories. Every *.csv, *.tsv and *.txt
// file found becomes one table named after the file without its extension.
package csvsrc
