package mapping

import (
	"strings"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/common"
)

// ParameterKind is the shape of the parameter values a mapping captures.
type ParameterKind int

const (
	ParameterNone ParameterKind = iota
	ParameterDefinition
	ParameterSingleValue
	ParameterArray
	ParameterMap
	ParameterTimeSeries
	ParameterTimePattern
)

// String returns the parameter_type used when serialized.
func (k ParameterKind) String() string {
	switch k {
	case ParameterNone:
		return "none"
	case ParameterDefinition:
		return "definition"
	case ParameterSingleValue:
		return "single value"
	case ParameterArray:
		return "array"
	case ParameterMap:
		return "map"
	case ParameterTimeSeries:
		return "time series"
	case ParameterTimePattern:
		return "time pattern"
	default:
		return common.UnknownStr
	}
}

// ParseParameterKind parses a parameter_type. Underscores are accepted in
// place of spaces.
func ParseParameterKind(s string) (ParameterKind, bool) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", " ")
	for k := ParameterNone; k <= ParameterTimePattern; k++ {
		if k.String() == norm {
			return k, true
		}
	}

	return ParameterNone, false
}

// HasValue reports whether the kind captures values, not just definitions.
func (k ParameterKind) HasValue() bool {
	return k >= ParameterSingleValue && k <= ParameterTimePattern
}

// Unlimited is the maximum returned by ExtraDimensions for kinds without an
// upper bound.
const Unlimited = -1

// ExtraDimensions returns the allowed number of extra-dimension nodes. Maps
// take one node per nesting level.
func (k ParameterKind) ExtraDimensions() (minCount, maxCount int) {
	switch k {
	case ParameterArray:
		return 0, 1
	case ParameterMap:
		return 1, Unlimited
	case ParameterTimeSeries, ParameterTimePattern:
		return 1, 1
	default:
		return 0, 0
	}
}

// Parameter describes the parameter definition or value captured per row.
type Parameter struct {
	Kind ParameterKind
	Name Node
	// Value is None for pivoted tables, where each data cell is a value.
	Value Node
	// ExtraDimensions are the index coordinates of composite values.
	ExtraDimensions []Node
	// Alternative names the alternative values belong to.
	Alternative Node
	// Repeat marks time series as repeating.
	Repeat bool
}

// NoParameter returns the absent parameter mapping.
func NoParameter() Parameter {
	return Parameter{}
}

// Definition returns a mapping capturing only parameter names.
func Definition(name Node) Parameter {
	return Parameter{Kind: ParameterDefinition, Name: name}
}

// SingleValue returns a mapping capturing one scalar value per record.
func SingleValue(name, value Node) Parameter {
	return Parameter{Kind: ParameterSingleValue, Name: name, Value: value}
}

// Indexed returns a composite-value mapping of the given kind.
func Indexed(kind ParameterKind, name, value Node, extra ...Node) Parameter {
	p := Parameter{Kind: kind, Name: name, Value: value}
	if len(extra) > 0 {
		p.ExtraDimensions = extra
	}

	return p
}

// WithAlternative returns a copy of p with values assigned to an alternative.
func (p Parameter) WithAlternative(alt Node) Parameter {
	p.Alternative = alt
	return p
}
