package dataset

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/convert"
)

// Array is an ordered list of values.
type Array struct {
	Values []any `yaml:"values" json:"values"`
}

// Map is an ordered index to value mapping. A value may itself be a Map
// when records carry more than one index level.
type Map struct {
	Index  []any `yaml:"index" json:"index"`
	Values []any `yaml:"values" json:"values"`
}

// TimeSeries is a series of values stamped with time, sorted by time.
type TimeSeries struct {
	Index  []time.Time `yaml:"index" json:"index"`
	Values []any       `yaml:"values" json:"values"`
	Repeat bool        `yaml:"repeat,omitempty" json:"repeat,omitempty"`
}

// TimePattern maps time-pattern expressions such as "M1-4" to values.
type TimePattern struct {
	Index  []string `yaml:"index" json:"index"`
	Values []any    `yaml:"values" json:"values"`
}

var errMissingIndex = errors.New("value has no index")

// Fold returns a copy of d in which indexed parameter-value records are
// folded into one composite value per entity, parameter and alternative.
// Records that cannot be folded are dropped and reported.
func (d *Dataset) Fold() (*Dataset, []error) {
	out := New()
	out.Merge(d)

	var errs, more []error

	out.ObjectParameterValues, errs = FoldValues(d.ObjectParameterValues)
	out.RelationshipParameterValues, more = FoldValues(d.RelationshipParameterValues)

	return out, append(errs, more...)
}

// FoldValues folds indexed records sharing class, entity, parameter,
// alternative and shape into one record holding a composite value. The
// folded record takes the position of the first contributing record; scalar
// records pass through unchanged.
func FoldValues(values []ParameterValue) ([]ParameterValue, []error) {
	var (
		firsts  []ParameterValue
		members = map[string][]ParameterValue{}
	)

	for _, v := range values {
		if v.Shape == ShapeScalar {
			firsts = append(firsts, v)
			continue
		}

		key := v.seriesKey()
		if _, ok := members[key]; !ok {
			firsts = append(firsts, v)
		}

		members[key] = append(members[key], v)
	}

	var (
		out  []ParameterValue
		errs []error
	)

	for _, v := range firsts {
		if v.Shape == ShapeScalar {
			out = append(out, v)
			continue
		}

		composite, err := fold(v.Shape, members[v.seriesKey()])
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to fold %s of %s %s: %w",
				v.Parameter, v.Class, strings.Join(v.Entity, ", "), err))

			continue
		}

		v.Index = nil
		v.Value = composite
		out = append(out, v)
	}

	return out, errs
}

func fold(shape Shape, entries []ParameterValue) (any, error) {
	switch shape {
	case ShapeArray:
		arr := Array{Values: make([]any, 0, len(entries))}
		for _, e := range entries {
			arr.Values = append(arr.Values, e.Value)
		}

		return arr, nil
	case ShapeMap:
		return buildMap(entries, 0)
	case ShapeTimeSeries:
		return buildTimeSeries(entries)
	case ShapeTimePattern:
		tp := TimePattern{}

		for _, e := range entries {
			if len(e.Index) == 0 {
				return nil, errMissingIndex
			}

			tp.Index = append(tp.Index, convert.Stringify(e.Index[0]))
			tp.Values = append(tp.Values, e.Value)
		}

		return tp, nil
	default:
		return nil, fmt.Errorf("cannot fold %s values", shape)
	}
}

func buildMap(entries []ParameterValue, depth int) (Map, error) {
	var (
		m      Map
		nested [][]ParameterValue
		pos    = map[string]int{}
	)

	for _, e := range entries {
		if len(e.Index) <= depth {
			return Map{}, errMissingIndex
		}

		idx := e.Index[depth]
		key := fmt.Sprintf("%T:%s", idx, convert.Stringify(idx))

		i, ok := pos[key]
		if !ok {
			i = len(m.Index)
			pos[key] = i
			m.Index = append(m.Index, idx)
			m.Values = append(m.Values, nil)
			nested = append(nested, nil)
		}

		if len(e.Index) == depth+1 {
			m.Values[i] = e.Value
		} else {
			nested[i] = append(nested[i], e)
		}
	}

	for i, group := range nested {
		if len(group) == 0 {
			continue
		}

		sub, err := buildMap(group, depth+1)
		if err != nil {
			return Map{}, err
		}

		m.Values[i] = sub
	}

	return m, nil
}

func buildTimeSeries(entries []ParameterValue) (TimeSeries, error) {
	type point struct {
		at    time.Time
		value any
	}

	points := make([]point, 0, len(entries))

	for _, e := range entries {
		if len(e.Index) == 0 {
			return TimeSeries{}, errMissingIndex
		}

		at, ok := e.Index[0].(time.Time)
		if !ok {
			v, err := convert.Convert(convert.DateTimeSpec, e.Index[0])
			if err != nil {
				return TimeSeries{}, err
			}

			at = v.(time.Time)
		}

		points = append(points, point{at: at, value: e.Value})
	}

	slices.SortStableFunc(points, func(a, b point) int {
		return a.at.Compare(b.at)
	})

	ts := TimeSeries{Repeat: entries[0].Repeat}
	for _, p := range points {
		ts.Index = append(ts.Index, p.at)
		ts.Values = append(ts.Values, p.value)
	}

	return ts, nil
}
