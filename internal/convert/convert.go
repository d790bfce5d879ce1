package convert

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FormatError reports a cell that could not be converted to the requested type.
type FormatError struct {
	Kind Kind
	Raw  any
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("could not convert %s to %s: %v", describe(e.Raw), e.Kind, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

var (
	errEmpty    = errors.New("empty value")
	errNoDigits = errors.New("no digits found")
)

// dateTimeLayouts are tried in order when parsing timestamps.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15",
	"2006-01-02",
	"2006-01",
}

var digitsPattern = regexp.MustCompile(`\d+`)

// Convert converts raw into the value type described by spec.
// The result is a string, float64, time.Time or Duration.
func Convert(spec Spec, raw any) (any, error) {
	var (
		out any
		err error
	)

	switch spec.Kind {
	case KindString:
		return Stringify(raw), nil
	case KindFloat:
		out, err = toFloat(raw)
	case KindDateTime:
		out, err = toDateTime(raw)
	case KindDuration:
		out, err = toDuration(raw)
	case KindIntegerSequenceDateTime:
		out, err = spec.sequence(raw)
	default:
		err = fmt.Errorf("unsupported type kind %d", int(spec.Kind))
	}

	if err != nil {
		return nil, &FormatError{Kind: spec.Kind, Raw: raw, Err: err}
	}

	return out, nil
}

// Convert is shorthand for Convert(s, raw).
func (s Spec) Convert(raw any) (any, error) {
	return Convert(s, raw)
}

// Stringify renders any cell value as text. Floats use the shortest exact
// representation, so 1.0 becomes "1".
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// IsEmpty reports whether a raw cell holds no value.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	default:
		return false
	}
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, errEmpty
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errors.New("not a number")
		}

		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, errors.New("not a finite number")
		}

		return f, nil
	case nil:
		return 0, errEmpty
	default:
		return 0, fmt.Errorf("unsupported value of type %T", raw)
	}
}

func toDateTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseDateTime(v)
	case nil:
		return time.Time{}, errEmpty
	default:
		return time.Time{}, fmt.Errorf("unsupported value of type %T", raw)
	}
}

func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errEmpty
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.New("not an ISO timestamp")
}

func toDuration(raw any) (Duration, error) {
	switch v := raw.(type) {
	case Duration:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return Duration{}, errEmpty
		}

		return ParseDuration(v)
	case float64:
		if v != math.Trunc(v) {
			return Duration{}, errors.New("fractional minutes")
		}

		return Duration{Amount: int64(v), Unit: UnitMinute}, nil
	case int:
		return Duration{Amount: int64(v), Unit: UnitMinute}, nil
	case int64:
		return Duration{Amount: v, Unit: UnitMinute}, nil
	case nil:
		return Duration{}, errEmpty
	default:
		return Duration{}, fmt.Errorf("unsupported value of type %T", raw)
	}
}

func (s Spec) sequence(raw any) (time.Time, error) {
	digits := digitsPattern.FindString(Stringify(raw))
	if digits == "" {
		return time.Time{}, errNoDigits
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return s.Step.Scale(n - s.StartInt).AddTo(s.Start), nil
}

func describe(v any) string {
	switch val := v.(type) {
	case nil:
		return "empty value"
	case string:
		return strconv.Quote(val)
	default:
		return fmt.Sprintf("%v (%T)", val, val)
	}
}
