package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/convert"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/dataset"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
)

// paramRecord is the evaluated parameter part of a record.
type paramRecord struct {
	name  string
	value *dataset.ParameterValue
}

// emit evaluates one record and commits it to the dataset. Nothing is
// committed when an error is returned.
func (x *executor) emit(c cursor, seen map[string]struct{}) error {
	switch x.p.root.Kind() {
	case mapping.KindObjectClass:
		return x.emitObjectClass(c, seen)
	case mapping.KindRelationshipClass:
		return x.emitRelationshipClass(c, seen)
	case mapping.KindObjectGroup:
		return x.emitObjectGroup(c, seen)
	case mapping.KindAlternative:
		return x.emitAlternative(c)
	case mapping.KindScenario:
		return x.emitScenario(c, seen)
	case mapping.KindScenarioAlternative:
		return x.emitScenarioAlternative(c, seen)
	default:
		return fmt.Errorf("unsupported mapping %s", x.p.root.Kind())
	}
}

func (x *executor) emitObjectClass(c cursor, seen map[string]struct{}) error {
	p := x.p

	class, err := x.require(p.name, c, "object class name")
	if err != nil {
		return err
	}

	var (
		object string
		entity []string
	)

	if p.objects.kind != fieldNone {
		if object, err = x.require(p.objects, c, "object name"); err != nil {
			return err
		}

		entity = []string{object}
	}

	pr, err := x.parameterRecord(c, class, entity)
	if err != nil {
		return err
	}

	x.ds.AddObjectClass(class)

	if object != "" && once(seen, "object", class, object) {
		x.ds.AddObject(class, object)
	}

	if pr != nil {
		x.ds.AddObjectParameter(class, pr.name)

		if pr.value != nil {
			x.addAlternative(pr.value)
			x.ds.AddObjectParameterValue(*pr.value)
		}
	}

	return nil
}

func (x *executor) emitRelationshipClass(c cursor, seen map[string]struct{}) error {
	p := x.p

	rc, err := x.require(p.name, c, "relationship class name")
	if err != nil {
		return err
	}

	classes := make([]string, len(p.dims))
	objects := make([]string, len(p.dims))
	complete := true

	for i, d := range p.dims {
		if classes[i], err = x.require(d.class, c, fmt.Sprintf("object class of dimension %d", i+1)); err != nil {
			return err
		}

		if d.objects.kind == fieldNone {
			complete = false
			continue
		}

		if objects[i], err = x.require(d.objects, c, fmt.Sprintf("object of dimension %d", i+1)); err != nil {
			return err
		}
	}

	var entity []string
	if complete {
		entity = objects
	}

	pr, err := x.parameterRecord(c, rc, entity)
	if err != nil {
		return err
	}

	x.ds.AddRelationshipClass(rc, classes)

	if p.importObjects {
		for i, class := range classes {
			x.ds.AddObjectClass(class)

			if objects[i] != "" && once(seen, "object", class, objects[i]) {
				x.ds.AddObject(class, objects[i])
			}
		}
	}

	if complete && once(seen, append([]string{"relationship", rc}, objects...)...) {
		x.ds.AddRelationship(rc, objects)
	}

	if pr != nil {
		x.ds.AddRelationshipParameter(rc, pr.name)

		if pr.value != nil {
			x.addAlternative(pr.value)
			x.ds.AddRelationshipParameterValue(*pr.value)
		}
	}

	return nil
}

func (x *executor) emitObjectGroup(c cursor, seen map[string]struct{}) error {
	p := x.p

	class, err := x.require(p.name, c, "object class name")
	if err != nil {
		return err
	}

	group, err := x.require(p.groups, c, "group name")
	if err != nil {
		return err
	}

	member, err := x.require(p.members, c, "member name")
	if err != nil {
		return err
	}

	if p.importObjects {
		x.ds.AddObjectClass(class)

		for _, object := range []string{group, member} {
			if once(seen, "object", class, object) {
				x.ds.AddObject(class, object)
			}
		}
	}

	if once(seen, "group", class, group, member) {
		x.ds.AddObjectGroup(class, group, member)
	}

	return nil
}

func (x *executor) emitAlternative(c cursor) error {
	name, err := x.require(x.p.name, c, "alternative name")
	if err != nil {
		return err
	}

	x.ds.AddAlternative(name)

	return nil
}

func (x *executor) emitScenario(c cursor, seen map[string]struct{}) error {
	name, err := x.require(x.p.name, c, "scenario name")
	if err != nil {
		return err
	}

	active, err := x.flag(x.p.active, c)
	if err != nil {
		return err
	}

	if once(seen, "scenario", name, strconv.FormatBool(active)) {
		x.ds.AddScenario(name, active)
	}

	return nil
}

func (x *executor) emitScenarioAlternative(c cursor, seen map[string]struct{}) error {
	p := x.p

	scenario, err := x.require(p.name, c, "scenario name")
	if err != nil {
		return err
	}

	alternative, err := x.require(p.alternative, c, "alternative name")
	if err != nil {
		return err
	}

	before := x.text(p.before, c)

	if once(seen, "scenario_alternative", scenario, alternative, before) {
		x.ds.AddScenarioAlternative(scenario, alternative, before)
	}

	return nil
}

// parameterRecord evaluates the parameter part of a record. A value is only
// produced for a known entity and a non-empty value cell.
func (x *executor) parameterRecord(c cursor, class string, entity []string) (*paramRecord, error) {
	pp := x.p.param
	if pp.kind == mapping.ParameterNone {
		return nil, nil
	}

	name, err := x.require(pp.name, c, "parameter name")
	if err != nil {
		return nil, err
	}

	rec := &paramRecord{name: name}
	if !pp.kind.HasValue() || entity == nil {
		return rec, nil
	}

	value, ok, err := x.value(c)
	if err != nil || !ok {
		return rec, err
	}

	var index []any

	for i, f := range pp.extra {
		v := x.typed(f, c)
		if convert.IsEmpty(v) {
			return nil, &fieldError{
				msg:   fmt.Sprintf("index %d of parameter %s is empty", i+1, name),
				pivot: f.kind == fieldPivot,
			}
		}

		index = append(index, v)
	}

	rec.value = &dataset.ParameterValue{
		Class:       class,
		Entity:      append([]string(nil), entity...),
		Parameter:   name,
		Alternative: x.text(pp.alt, c),
		Index:       index,
		Value:       value,
		Shape:       shapeOf(pp.kind),
		Repeat:      pp.repeat && pp.kind == mapping.ParameterTimeSeries,
	}

	return rec, nil
}

// value evaluates the parameter value. ok is false for empty cells.
func (x *executor) value(c cursor) (v any, ok bool, err error) {
	pp := x.p.param

	if pp.value.kind != fieldNone {
		v = x.typed(pp.value, c)
		return v, !convert.IsEmpty(v), nil
	}

	if !x.p.implicit || c.col < 0 {
		return nil, false, nil
	}

	raw := cell(c.row, c.col)
	if convert.IsEmpty(raw) {
		return nil, false, nil
	}

	spec, typed := x.in.ColumnTypes[c.col]
	if !typed {
		spec, typed = x.in.RowTypes[c.index]
	}

	if !typed {
		return raw, true, nil
	}

	v, err = spec.Convert(raw)
	if err != nil {
		return nil, false, &fieldError{msg: fmt.Sprintf("column %d: %v", c.col, err), pivot: true}
	}

	return v, true, nil
}

// flag evaluates an active flag; empty is false.
func (x *executor) flag(f field, c cursor) (bool, error) {
	v := x.eval(f, c)

	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	case float64:
		return b != 0, nil
	case int64:
		return b != 0, nil
	case int:
		return b != 0, nil
	}

	s := strings.ToLower(strings.TrimSpace(convert.Stringify(v)))
	switch s {
	case "":
		return false, nil
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, &fieldError{msg: fmt.Sprintf("active flag %q is not a boolean", s), pivot: f.kind == fieldPivot}
	}

	return b, nil
}

func (x *executor) addAlternative(v *dataset.ParameterValue) {
	if v.Alternative != "" {
		x.ds.AddAlternative(v.Alternative)
	}
}

func shapeOf(k mapping.ParameterKind) dataset.Shape {
	switch k {
	case mapping.ParameterArray:
		return dataset.ShapeArray
	case mapping.ParameterMap:
		return dataset.ShapeMap
	case mapping.ParameterTimeSeries:
		return dataset.ShapeTimeSeries
	case mapping.ParameterTimePattern:
		return dataset.ShapeTimePattern
	default:
		return dataset.ShapeScalar
	}
}
