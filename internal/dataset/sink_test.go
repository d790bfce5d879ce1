package dataset

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleDataset() *Dataset {
	d := New()
	d.AddObjectClass("unit")
	d.AddObject("unit", "a")
	d.AddObjectParameter("unit", "p")
	d.AddObjectParameterValue(indexed(ShapeMap, "a", "p", 10.5, "1"))
	d.AddObjectParameterValue(indexed(ShapeMap, "a", "p", 20.5, "2"))

	return d
}

func TestMemorySink(t *testing.T) {
	var sink MemorySink

	n, errs := sink.Import(context.Background(), sampleDataset())
	assert.Equal(t, 5, n)
	assert.Empty(t, errs)
	assert.Len(t, sink.Datasets(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, errs = sink.Import(ctx, sampleDataset())
	assert.Zero(t, n)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestFileSink_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	sink := NewFileSink(path)
	require.Equal(t, FormatYAML, sink.Format)

	n, errs := sink.Import(context.Background(), sampleDataset())
	require.Empty(t, errs)
	assert.Equal(t, 4, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))

	values := doc["object_parameter_values"].([]any)
	require.Len(t, values, 1)

	value := values[0].(map[string]any)
	assert.Equal(t, "map", value["shape"])
	assert.Equal(t, map[string]any{"index": []any{"1", "2"}, "values": []any{10.5, 20.5}}, value["value"])
}

func TestFileSink_JSONRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	sink := NewFileSink(path)
	sink.Raw = true
	require.Equal(t, FormatJSON, sink.Format)

	n, errs := sink.Import(context.Background(), sampleDataset())
	require.Empty(t, errs)
	assert.Equal(t, 5, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Objects []Entity `json:"objects"`
		Values  []struct {
			Index []any `json:"index"`
		} `json:"object_parameter_values"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []Entity{{Class: "unit", Name: "a"}}, doc.Objects)
	require.Len(t, doc.Values, 2)
	assert.Equal(t, []any{"1"}, doc.Values[0].Index)
}

func TestFileSink_WriteFailure(t *testing.T) {
	sink := NewFileSink(filepath.Join(t.TempDir(), "missing", "out.yaml"))

	n, errs := sink.Import(context.Background(), sampleDataset())
	assert.Zero(t, n)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "failed to write dataset")
}
