package mapping

import (
	"fmt"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/diagnostic"
)

// Diagnostic codes reported by Validate.
const (
	CodeNilMapping            = "mapping_is_nil"
	CodeDimensionCount        = "dimension_count"
	CodeParameterDimensions   = "parameter_dimensions"
	CodeInvalidRowReference   = "invalid_row_reference"
	CodeInvalidColumn         = "invalid_column_reference"
	CodeMissingName           = "missing_name"
	CodeMissingParameterName  = "missing_parameter_name"
	CodeMissingValue          = "missing_value_mapping"
	CodeMissingEntity         = "missing_entity_mapping"
	CodeRepeatIgnored         = "repeat_ignored"
	CodeSkippedClaimedColumn  = "skipped_claimed_column"
	CodeNegativeReadStartRow  = "negative_read_start_row"
	CodeNegativeSkippedColumn = "negative_skip_column"
)

// Validate checks the mapping without any data. Errors make the mapping
// unusable for execution; warnings flag fields that will make every row fail
// or produce nothing.
func Validate(r Root) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if r == nil {
		res.AddError(CodeNilMapping, "mapping is nil", "")
		return res
	}

	validateOptions(r.Options(), res)

	fields := Fields(r)
	for _, f := range fields {
		validateReference(f, res)
	}

	// Every root lists its name first.
	requireNode(res, fields[0], CodeMissingName, "no name mapping")

	switch m := r.(type) {
	case ObjectClass:
		validateParameter(r, m.Parameter, res)

		if m.Parameter.Kind.HasValue() && m.Objects.IsNone() {
			res.AddWarning(CodeMissingEntity, "parameter values require an objects mapping", keyObjects)
		}
	case RelationshipClass:
		if len(m.Dimensions) == 0 {
			res.AddError(CodeDimensionCount, "relationship class declares no object classes", keyObjectClasses)
		}

		for _, f := range fields {
			if f.Role == RoleDimensionClass {
				requireNode(res, f, CodeMissingName, "no object class mapping")
			}
		}

		validateParameter(r, m.Parameter, res)

		if m.Parameter.Kind.HasValue() {
			for _, f := range fields {
				if f.Role == RoleDimensionObjects {
					requireNode(res, f, CodeMissingEntity, "parameter values require every dimension's objects")
				}
			}
		}
	case ObjectGroup:
		requireNode(res, Field{Role: RoleGroups, Node: m.Groups}, CodeMissingEntity, "no group mapping")
		requireNode(res, Field{Role: RoleMembers, Node: m.Members}, CodeMissingEntity, "no member mapping")
	case ScenarioAlternative:
		requireNode(res, Field{Role: RoleAlternative, Node: m.Alternative}, CodeMissingEntity, "no alternative mapping")
	}

	if cols := intersect(SkipColumns(r), ClaimedColumns(r)); len(cols) > 0 {
		res.AddWarning(CodeSkippedClaimedColumn,
			fmt.Sprintf("columns %v are both skipped and mapped; skip_columns only affects the pivoted region", cols),
			keySkipColumns)
	}

	return res
}

func validateOptions(opts TableOptions, res *diagnostic.Diagnostics) {
	if opts.ReadStartRow < 0 {
		res.AddError(CodeNegativeReadStartRow,
			fmt.Sprintf("read_start_row must not be negative, got %d", opts.ReadStartRow), keyReadStartRow)
	}

	for _, c := range opts.SkipColumns {
		if c < 0 {
			res.AddError(CodeNegativeSkippedColumn, fmt.Sprintf("skip column %d is negative", c), keySkipColumns)
		}
	}
}

func validateReference(f Field, res *diagnostic.Diagnostics) {
	n := f.Node

	switch n.Kind {
	case NodeRow:
		if n.Ref.Index < HeaderRow {
			res.AddError(CodeInvalidRowReference,
				fmt.Sprintf("row reference %d is below the header row", n.Ref.Index), f.Path())
		}
	case NodeColumn, NodeColumnHeader:
		if !n.Ref.ByName() && n.Ref.Index < 0 {
			res.AddError(CodeInvalidColumn, fmt.Sprintf("column reference %d is negative", n.Ref.Index), f.Path())
		}
	}
}

func validateParameter(r Root, p Parameter, res *diagnostic.Diagnostics) {
	if p.Kind == ParameterNone {
		return
	}

	if p.Name.IsNone() {
		res.AddWarning(CodeMissingParameterName, "parameter has no name mapping", keyParameters+"."+keyName)
	}

	lo, hi := p.Kind.ExtraDimensions()
	if n := len(p.ExtraDimensions); n < lo || (hi != Unlimited && n > hi) {
		res.AddError(CodeParameterDimensions,
			fmt.Sprintf("%s parameter takes %s extra dimensions, got %d", p.Kind, dimensionRange(lo, hi), n),
			keyParameters+"."+keyExtraDimensions)
	}

	if p.Kind.HasValue() && p.Value.IsNone() && !IsPivoted(r) {
		res.AddWarning(CodeMissingValue, "parameter value has no mapping and the table is not pivoted",
			keyParameters+"."+keyValue)
	}

	if p.Repeat && p.Kind != ParameterTimeSeries {
		res.AddWarning(CodeRepeatIgnored, "repeat only applies to time series", keyParameters+"."+keyOptions)
	}
}

func requireNode(res *diagnostic.Diagnostics, f Field, code, msg string) {
	if f.Node.IsNone() {
		res.AddWarning(code, msg, f.Path())
	}
}

func dimensionRange(lo, hi int) string {
	if hi == Unlimited {
		return fmt.Sprintf("at least %d", lo)
	}

	if lo == hi {
		return fmt.Sprintf("exactly %d", lo)
	}

	return fmt.Sprintf("%d to %d", lo, hi)
}

func intersect(a, b []int) []int {
	var out []int

	for _, x := range a {
		for _, y := range b {
			if x == y {
				out = append(out, x)
			}
		}
	}

	return out
}
