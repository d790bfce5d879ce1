package convert

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/common"
)

// Kind identifies the target type of a Spec.
type Kind int

const (
	KindString Kind = iota
	KindFloat
	KindDateTime
	KindDuration
	KindIntegerSequenceDateTime
)

// String returns the name used for the kind in serialized specs.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindDateTime:
		return "datetime"
	case KindDuration:
		return "duration"
	case KindIntegerSequenceDateTime:
		return "integer_sequence_datetime"
	default:
		return common.UnknownStr
	}
}

// Spec describes how to convert a raw cell. Only the integer sequence kind
// uses the anchor fields.
type Spec struct {
	Kind Kind

	// Start is the instant that StartInt maps to.
	Start time.Time
	// StartInt is the ordinal that maps to Start.
	StartInt int64
	// Step is the distance between consecutive ordinals.
	Step Duration
}

// Predefined stateless specs.
var (
	StringSpec   = Spec{Kind: KindString}
	FloatSpec    = Spec{Kind: KindFloat}
	DateTimeSpec = Spec{Kind: KindDateTime}
	DurationSpec = Spec{Kind: KindDuration}
)

// IntegerSequenceDateTime returns a spec that maps the first run of digits n
// in a cell to start + (n - startInt) * step.
func IntegerSequenceDateTime(start time.Time, startInt int64, step Duration) Spec {
	return Spec{
		Kind:     KindIntegerSequenceDateTime,
		Start:    start,
		StartInt: startInt,
		Step:     step,
	}
}

// Name returns the spec's kind name.
func (s Spec) Name() string {
	return s.Kind.String()
}

// specsByName holds the stateless specs addressable by a plain name.
var specsByName = map[string]Spec{
	"string":   StringSpec,
	"str":      StringSpec,
	"float":    FloatSpec,
	"datetime": DateTimeSpec,
	"duration": DurationSpec,
}

// Names returns the plain names ParseSpec accepts, sorted.
func Names() []string {
	names := make([]string, 0, len(specsByName)+1)
	for name := range specsByName {
		names = append(names, name)
	}

	names = append(names, KindIntegerSequenceDateTime.String())
	slices.Sort(names)

	return names
}

// ParseSpec builds a Spec from its plain representation: either a name such
// as "float", or a map with a "type" key. The integer sequence form is
//
//	{type: integer_sequence_datetime, start_datetime: 2020-01-01T00:00:00,
//	 start_int: 1, duration: 1h}
func ParseSpec(v any) (Spec, error) {
	switch val := v.(type) {
	case string:
		name := strings.ToLower(strings.TrimSpace(val))
		if spec, ok := specsByName[name]; ok {
			return spec, nil
		}

		return Spec{}, fmt.Errorf("unknown type %q (expected one of %s)", val, strings.Join(Names(), ", "))
	case map[string]any:
		return parseSpecMap(val)
	case Spec:
		return val, nil
	default:
		return Spec{}, fmt.Errorf("expected type name or map, got %T", v)
	}
}

func parseSpecMap(m map[string]any) (Spec, error) {
	name, _ := m["type"].(string)
	if name == "" {
		return Spec{}, fmt.Errorf("type spec is missing %q", "type")
	}

	if strings.ToLower(name) != KindIntegerSequenceDateTime.String() {
		return ParseSpec(name)
	}

	var start time.Time

	switch raw := m["start_datetime"].(type) {
	case time.Time:
		start = raw
	case string:
		t, err := parseDateTime(raw)
		if err != nil {
			return Spec{}, fmt.Errorf("start_datetime: %w", err)
		}

		start = t
	default:
		return Spec{}, fmt.Errorf("start_datetime: expected timestamp, got %T", raw)
	}

	startInt, ok := asInt64(m["start_int"])
	if !ok {
		return Spec{}, fmt.Errorf("start_int: expected integer, got %T", m["start_int"])
	}

	stepText, _ := m["duration"].(string)

	step, err := ParseDuration(stepText)
	if err != nil {
		return Spec{}, fmt.Errorf("duration: %w", err)
	}

	return IntegerSequenceDateTime(start, startInt, step), nil
}

// Value returns the plain representation accepted by ParseSpec.
func (s Spec) Value() any {
	if s.Kind != KindIntegerSequenceDateTime {
		return s.Name()
	}

	return map[string]any{
		"type":           s.Name(),
		"start_datetime": s.Start.Format(time.RFC3339Nano),
		"start_int":      s.StartInt,
		"duration":       s.Step.String(),
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}

	spec, err := ParseSpec(raw)
	if err != nil {
		return err
	}

	*s = spec

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Spec) MarshalYAML() (any, error) {
	return s.Value(), nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}

		return int64(n), true
	default:
		return 0, false
	}
}
