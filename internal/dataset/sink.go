package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Sink stores a finished dataset. It returns the number of records stored
// and the integrity errors it encountered.
type Sink interface {
	Import(ctx context.Context, d *Dataset) (int, []error)
}

// MemorySink keeps every imported dataset in memory.
type MemorySink struct {
	mu       sync.Mutex
	datasets []*Dataset
}

// Import implements Sink.
func (s *MemorySink) Import(ctx context.Context, d *Dataset) (int, []error) {
	if err := ctx.Err(); err != nil {
		return 0, []error{err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.datasets = append(s.datasets, d)

	return d.Len(), nil
}

// Datasets returns the datasets imported so far.
func (s *MemorySink) Datasets() []*Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*Dataset(nil), s.datasets...)
}

// Format is the encoding of a FileSink.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatFor picks the format from a file extension; YAML unless .json.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}

	return FormatYAML
}

// FileSink writes the dataset to a file, folding composite values first
// unless Raw is set.
type FileSink struct {
	Path   string
	Format Format
	Raw    bool
}

// NewFileSink returns a sink writing to path in the format its extension
// implies.
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path, Format: FormatFor(path)}
}

// Import implements Sink.
func (s *FileSink) Import(ctx context.Context, d *Dataset) (int, []error) {
	if err := ctx.Err(); err != nil {
		return 0, []error{err}
	}

	var errs []error

	if !s.Raw {
		d, errs = d.Fold()
	}

	data, err := s.encode(d)
	if err != nil {
		return 0, append(errs, fmt.Errorf("failed to encode dataset: %w", err))
	}

	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return 0, append(errs, fmt.Errorf("failed to write dataset %s: %w", s.Path, err))
	}

	return d.Len(), errs
}

func (s *FileSink) encode(d *Dataset) ([]byte, error) {
	if s.Format == FormatJSON {
		return json.MarshalIndent(d, "", "  ")
	}

	return yaml.Marshal(d)
}
