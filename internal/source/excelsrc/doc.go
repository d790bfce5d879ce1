// Package excelsrc reads spreadsheet workbooks as tables, one table per
// sheet, using excelize.
package excelsrc
