package logger

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRFC3339Millis(t *testing.T) {
	at := time.Date(2024, 3, 1, 13, 30, 5, 123_456_789, time.FixedZone("CET", 3600))

	assert.Equal(t, "2024-03-01T12:30:05.123Z", formatRFC3339Millis(at))
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer

	log := NewWithWriter(&buf, false)
	log.Debug("hidden")
	log.Info("table imported", "table", "units", "note", "", "rows", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "table imported")
	assert.Contains(t, out, "table=units")
	assert.Contains(t, out, "rows=2")
	assert.NotContains(t, out, "note=")

	buf.Reset()
	NewWithWriter(&buf, true).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
