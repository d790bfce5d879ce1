package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// TableLevel is the row number of errors that concern a whole table.
const TableLevel = -1

// RowError is a non-fatal failure scoped to one row of one table. Row is
// zero-based, or TableLevel.
type RowError struct {
	Table   string `yaml:"table" json:"table"`
	Row     int    `yaml:"row" json:"row"`
	Message string `yaml:"message" json:"message"`
}

func (e RowError) Error() string {
	if e.Row == TableLevel {
		return fmt.Sprintf("%s: %s", e.Table, e.Message)
	}

	return fmt.Sprintf("%s: row %d: %s", e.Table, e.Row, e.Message)
}

// TableError returns a table-level error.
func TableError(table string, err error) RowError {
	return RowError{Table: table, Row: TableLevel, Message: err.Error()}
}

// FromErrors converts errors, such as a sink's integrity errors, into the
// error-log shape. RowErrors are kept as they are.
func FromErrors(table string, errs []error) []RowError {
	out := make([]RowError, 0, len(errs))

	for _, err := range errs {
		var re RowError
		if errors.As(err, &re) {
			out = append(out, re)
			continue
		}

		out = append(out, TableError(table, err))
	}

	return out
}

// WriteErrorLog writes errs as flat text, one timestamped error per line,
// after a header line naming the run.
func WriteErrorLog(w io.Writer, clock clockwork.Clock, runID uuid.UUID, errs []RowError) error {
	bw := bufio.NewWriter(w)

	stamp := func() string {
		return clock.Now().UTC().Format(time.RFC3339)
	}

	if _, err := fmt.Fprintf(bw, "# import run %s at %s: %d errors\n", runID, stamp(), len(errs)); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}

	for _, e := range errs {
		if _, err := fmt.Fprintf(bw, "%s %s\n", stamp(), e.Error()); err != nil {
			return fmt.Errorf("failed to write error log: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}

	return nil
}

// WriteErrorLogFile writes the error log to path, replacing any existing file.
func WriteErrorLogFile(path string, clock clockwork.Clock, runID uuid.UUID, errs []RowError) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create error log %s: %w", path, err)
	}

	if err := WriteErrorLog(f, clock, runID, errs); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
