package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/dataset"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/engine"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/logger"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/metrics"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/source"
)

// ErrUnknownSource is reported for tables of a source the coordinator does
// not hold.
var ErrUnknownSource = errors.New("unknown source")

// ErrNothingToImport is returned when handing a failed or cancelled run to
// a sink.
var ErrNothingToImport = errors.New("run produced no usable dataset")

// Table statuses.
const (
	StatusImported = "imported"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// TableReport summarizes one table of a run.
type TableReport struct {
	Source   string
	Table    string
	Status   string
	Rows     int
	Records  int
	Errors   int
	Duration time.Duration
}

// Outcome is the terminal result of a run. Data is nil when the run failed
// under CancelOnError or was cancelled.
type Outcome struct {
	RunID     uuid.UUID
	Data      *dataset.Dataset
	Errors    []dataset.RowError
	Tables    []TableReport
	Failed    bool
	Cancelled bool
}

// Coordinator runs requests against a fixed set of sources.
type Coordinator struct {
	Sources map[string]source.Source
	Logger  *slog.Logger
	Clock   clockwork.Clock
	Metrics *metrics.Metrics
}

// New returns a coordinator over sources with a discarding logger and the
// real clock.
func New(sources map[string]source.Source) *Coordinator {
	return &Coordinator{
		Sources: sources,
		Logger:  logger.Discard(),
		Clock:   clockwork.NewRealClock(),
	}
}

func (c *Coordinator) applyDefaults() {
	if c.Logger == nil {
		c.Logger = logger.Discard()
	}

	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
}

// run holds the state of one Run call.
type run struct {
	*Coordinator

	id        uuid.UUID
	req       Request
	log       *slog.Logger
	connected map[string]error
	data      *dataset.Dataset
	errs      []dataset.RowError
	reports   []TableReport
}

// Run processes the tables of req in order. Connection and structural
// failures are recorded against their table and the run moves on.
func (c *Coordinator) Run(ctx context.Context, req Request) *Outcome {
	c.applyDefaults()

	r := &run{
		Coordinator: c,
		id:          uuid.New(),
		req:         req,
		connected:   map[string]error{},
		data:        dataset.New(),
	}
	r.log = c.Logger.With("run_id", r.id.String())

	defer r.closeSources()

	started := c.Clock.Now()
	r.log.Info("import started", "tables", len(req.Tables), "cancel_on_error", req.CancelOnError)

	for _, ref := range req.Tables {
		if ctx.Err() != nil {
			r.log.Warn("import cancelled", "completed_tables", len(r.reports))
			c.Metrics.ObserveRun("cancelled")

			return &Outcome{RunID: r.id, Errors: r.errs, Tables: r.reports, Cancelled: true}
		}

		r.table(ctx, ref)
	}

	out := &Outcome{RunID: r.id, Data: r.data, Errors: r.errs, Tables: r.reports}

	result := "completed"
	if req.CancelOnError && len(r.errs) > 0 {
		out.Data = nil
		out.Failed = true
		result = "failed"
	}

	c.Metrics.ObserveRun(result)

	if out.Data != nil {
		c.Metrics.ObserveRecords(out.Data.Counts())
	}

	r.log.Info("import finished",
		"result", result,
		"records", out.Data.Len(),
		"errors", len(out.Errors),
		"duration", c.Clock.Since(started),
	)

	return out
}

func (r *run) table(ctx context.Context, ref TableRef) {
	log := r.log.With("source", ref.Source, "table", ref.Table)
	report := TableReport{Source: ref.Source, Table: ref.Table, Status: StatusSkipped}

	root, mapped := r.req.Mappings[ref.Table]
	if !ref.Selected || !mapped || root == nil {
		log.Debug("table skipped", "selected", ref.Selected, "mapped", mapped && root != nil)
		r.reports = append(r.reports, report)
		r.Metrics.ObserveTable(ref.Source, metrics.StatusSkipped, 0, 0, 0)

		return
	}

	log.Debug("table started", "mapping", root.Kind().String())
	started := r.Clock.Now()

	rows, res, err := r.execute(ctx, ref)

	report.Duration = r.Clock.Since(started)
	report.Rows = rows

	if err != nil {
		log.Warn("table failed", "error", err)

		report.Status = StatusFailed
		report.Errors = 1
		r.errs = append(r.errs, dataset.TableError(ref.Table, err))
		r.reports = append(r.reports, report)
		r.Metrics.ObserveTable(ref.Source, metrics.StatusFailed, rows, 1, report.Duration)

		return
	}

	report.Status = StatusImported
	report.Records = res.records
	report.Errors = len(res.rowErrors)
	r.errs = append(r.errs, res.rowErrors...)
	r.reports = append(r.reports, report)
	r.Metrics.ObserveTable(ref.Source, metrics.StatusOK, rows, report.Errors, report.Duration)

	log.Info("table imported",
		"rows", rows,
		"records", report.Records,
		"errors", report.Errors,
		"duration", report.Duration,
	)
}

type tableResult struct {
	records   int
	rowErrors []dataset.RowError
}

// execute opens and maps one table. Only a complete execution is merged
// into the running dataset.
func (r *run) execute(ctx context.Context, ref TableRef) (int, tableResult, error) {
	src, err := r.source(ctx, ref.Source)
	if err != nil {
		return 0, tableResult{}, err
	}

	table, err := src.Open(ctx, ref.Table, r.req.Options[ref.Table])
	if err != nil {
		return 0, tableResult{}, err
	}

	rows := &countingRows{Rows: table.Rows}
	defer rows.Close()

	types := r.req.Types[ref.Table]

	ds, rowErrs, err := engine.Execute(engine.Input{
		Table:       ref.Table,
		Rows:        rows,
		Header:      table.Header,
		ColumnCount: table.ColumnCount,
		Mapping:     r.req.Mappings[ref.Table],
		ColumnTypes: types.Columns,
		RowTypes:    types.Rows,
		MaxRows:     r.req.MaxRows,
	})
	if err != nil {
		return rows.n, tableResult{}, err
	}

	r.data.Merge(ds)

	return rows.n, tableResult{records: ds.Len(), rowErrors: rowErrs}, nil
}

// source connects a source on first use; a failed connection is reported
// for every table of that source.
func (r *run) source(ctx context.Context, id string) (source.Source, error) {
	src, ok := r.Sources[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSource, id)
	}

	err, seen := r.connected[id]
	if !seen {
		err = src.Connect(ctx)
		r.connected[id] = err

		if err == nil {
			r.log.Debug("source connected", "source", id)
		}
	}

	if err != nil {
		return nil, err
	}

	return src, nil
}

func (r *run) closeSources() {
	for id, err := range r.connected {
		if err != nil {
			continue
		}

		if cerr := r.Sources[id].Close(); cerr != nil {
			r.log.Warn("failed to close source", "source", id, "error", cerr)
		}
	}
}

// countingRows counts the rows handed to the engine.
type countingRows struct {
	source.Rows
	n int
}

func (c *countingRows) Next() bool {
	if !c.Rows.Next() {
		return false
	}

	c.n++

	return true
}

// Start runs req on a new goroutine. The channel yields exactly one Outcome
// and is then closed. The request is copied before Start returns.
func (c *Coordinator) Start(ctx context.Context, req Request) <-chan *Outcome {
	req = req.Clone()
	done := make(chan *Outcome, 1)

	go func() {
		defer close(done)
		done <- c.Run(ctx, req)
	}()

	return done
}

// Import hands the outcome's dataset to sink and folds the sink's integrity
// errors into the outcome's error log.
func (c *Coordinator) Import(ctx context.Context, sink dataset.Sink, out *Outcome) (int, error) {
	c.applyDefaults()

	if out == nil || out.Failed || out.Cancelled || out.Data == nil {
		return 0, ErrNothingToImport
	}

	n, errs := sink.Import(ctx, out.Data)
	out.Errors = append(out.Errors, dataset.FromErrors("sink", errs)...)
	c.Metrics.ObserveSink(n, len(errs))

	c.Logger.Info("dataset stored", "run_id", out.RunID.String(), "imported", n, "integrity_errors", len(errs))

	return n, nil
}
