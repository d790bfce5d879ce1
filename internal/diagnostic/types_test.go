package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics(t *testing.T) {
	var d Diagnostics

	assert.False(t, d.HasErrors())
	require.NoError(t, d.Err())

	d.AddWarning("unused_skip", "column 7 is skipped but never read", "skip_columns")
	assert.False(t, d.HasErrors())

	d.AddError("unknown_header", `header "nmae" not found`, "objects", "name")
	d.AddError("dimension_count", "relationship class has no dimensions", "")

	assert.True(t, d.HasErrors())
	assert.True(t, d.HasCode("dimension_count"))
	assert.False(t, d.HasCode("unused_skip"))

	err := d.Err()
	require.Error(t, err)
	assert.Equal(t,
		`objects: [unknown_header] header "nmae" not found (did you mean "name"?); [dimension_count] relationship class has no dimensions`,
		err.Error())
}

func TestDiagnostics_Merge(t *testing.T) {
	var a, b Diagnostics

	a.AddError("x", "first", "")
	b.AddError("y", "second", "")
	b.AddWarning("z", "third", "")

	a.Merge(b)
	assert.Len(t, a.Errors, 2)
	assert.Len(t, a.Warnings, 1)
	assert.Equal(t, "error", a.Errors[1].Severity.String())
}
