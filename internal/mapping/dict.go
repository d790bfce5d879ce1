package mapping

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	keyMapType         = "map_type"
	keyReference       = "reference"
	keyPrepend         = "prepend_str"
	keyAppend          = "append_str"
	keyName            = "name"
	keyObjects         = "objects"
	keyObjectClasses   = "object_classes"
	keyGroups          = "groups"
	keyMembers         = "members"
	keyActive          = "active"
	keyAlternativeName = "alternative_name"
	keyBefore          = "before_alternative_name"
	keyParameters      = "parameters"
	keyParameterType   = "parameter_type"
	keyValue           = "value"
	keyExtraDimensions = "extra_dimensions"
	keyOptions         = "options"
	keyRepeat          = "repeat"
	keyImportObjects   = "import_objects"
	keyReadStartRow    = "read_start_row"
	keySkipColumns     = "skip_columns"
	parameterMapType   = "parameter"
	columnNameAlias    = "column_name"
	noneMapType        = "none"
)

// DictError reports a malformed serialized mapping.
type DictError struct {
	Path    string
	Message string
}

func (e *DictError) Error() string {
	if e.Path == "" {
		return "invalid mapping: " + e.Message
	}

	return fmt.Sprintf("invalid mapping at %s: %s", e.Path, e.Message)
}

func dictErr(path, format string, args ...any) error {
	return &DictError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// ToDict converts a root into its map/list/scalar representation. Empty
// optional keys are omitted.
func ToDict(r Root) map[string]any {
	d := map[string]any{keyMapType: r.Kind().String()}

	switch m := r.(type) {
	case ObjectClass:
		putNode(d, keyName, m.Name)
		putNode(d, keyObjects, m.Objects)
		putParameter(d, m.Parameter)
	case RelationshipClass:
		putNode(d, keyName, m.Name)

		if len(m.Dimensions) > 0 {
			classes := make([]any, len(m.Dimensions))
			objects := make([]any, len(m.Dimensions))

			for i, dim := range m.Dimensions {
				classes[i] = nodeToDict(dim.Class)
				objects[i] = nodeToDict(dim.Objects)
			}

			d[keyObjectClasses] = classes
			d[keyObjects] = objects
		}

		putParameter(d, m.Parameter)
		putFlag(d, keyImportObjects, m.ImportObjects)
	case ObjectGroup:
		putNode(d, keyName, m.Name)
		putNode(d, keyGroups, m.Groups)
		putNode(d, keyMembers, m.Members)
		putFlag(d, keyImportObjects, m.ImportObjects)
	case Alternative:
		putNode(d, keyName, m.Name)
	case Scenario:
		putNode(d, keyName, m.Name)
		putNode(d, keyActive, m.Active)
	case ScenarioAlternative:
		putNode(d, keyName, m.Name)
		putNode(d, keyAlternativeName, m.Alternative)
		putNode(d, keyBefore, m.Before)
	}

	opts := r.Options()
	if opts.ReadStartRow != 0 {
		d[keyReadStartRow] = opts.ReadStartRow
	}

	if len(opts.SkipColumns) > 0 {
		cols := make([]any, len(opts.SkipColumns))
		for i, c := range opts.SkipColumns {
			cols[i] = c
		}

		d[keySkipColumns] = cols
	}

	return d
}

func putNode(d map[string]any, key string, n Node) {
	if v := nodeToDict(n); v != nil {
		d[key] = v
	}
}

func putFlag(d map[string]any, key string, v bool) {
	if v {
		d[key] = true
	}
}

func putParameter(d map[string]any, p Parameter) {
	if p.Kind == ParameterNone {
		return
	}

	pd := map[string]any{
		keyMapType:       parameterMapType,
		keyParameterType: p.Kind.String(),
	}
	putNode(pd, keyName, p.Name)
	putNode(pd, keyValue, p.Value)

	if len(p.ExtraDimensions) > 0 {
		extra := make([]any, len(p.ExtraDimensions))
		for i, n := range p.ExtraDimensions {
			extra[i] = nodeToDict(n)
		}

		pd[keyExtraDimensions] = extra
	}

	putNode(pd, keyAlternativeName, p.Alternative)

	if p.Repeat {
		pd[keyOptions] = map[string]any{keyRepeat: true}
	}

	d[keyParameters] = pd
}

func nodeToDict(n Node) any {
	var d map[string]any

	switch n.Kind {
	case NodeConstant:
		d = map[string]any{keyMapType: n.Kind.String(), keyReference: n.Value}
	case NodeColumn, NodeColumnHeader:
		var ref any = n.Ref.Index
		if n.Ref.ByName() {
			ref = n.Ref.Name
		}

		d = map[string]any{keyMapType: n.Kind.String(), keyReference: ref}
	case NodeRow:
		d = map[string]any{keyMapType: n.Kind.String(), keyReference: n.Ref.Index}
	case NodeTableName:
		d = map[string]any{keyMapType: n.Kind.String()}
	default:
		return nil
	}

	if n.Prepend != "" {
		d[keyPrepend] = n.Prepend
	}

	if n.Append != "" {
		d[keyAppend] = n.Append
	}

	return d
}

// FromDict builds a root from its map/list/scalar representation.
func FromDict(d map[string]any) (Root, error) {
	if d == nil {
		return nil, dictErr("", "mapping is empty")
	}

	mt, _ := d[keyMapType].(string)

	kind, ok := parseRootKind(mt)
	if !ok {
		return nil, dictErr(keyMapType, "unknown root type %q", mt)
	}

	opts, err := optionsFromDict(d)
	if err != nil {
		return nil, err
	}

	name, err := nodeAt(d, keyName)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindObjectClass:
		return objectClassFromDict(d, name, opts)
	case KindRelationshipClass:
		return relationshipClassFromDict(d, name, opts)
	case KindObjectGroup:
		return objectGroupFromDict(d, name, opts)
	case KindAlternative:
		return Alternative{Name: name, TableOptions: opts}, nil
	case KindScenario:
		active, err := nodeAt(d, keyActive)
		if err != nil {
			return nil, err
		}

		return Scenario{Name: name, Active: active, TableOptions: opts}, nil
	case KindScenarioAlternative:
		alt, err := nodeAt(d, keyAlternativeName)
		if err != nil {
			return nil, err
		}

		before, err := nodeAt(d, keyBefore)
		if err != nil {
			return nil, err
		}

		return ScenarioAlternative{Name: name, Alternative: alt, Before: before, TableOptions: opts}, nil
	default:
		return nil, dictErr(keyMapType, "unknown root type %q", mt)
	}
}

func parseRootKind(s string) (RootKind, bool) {
	for k := KindObjectClass; k <= KindScenarioAlternative; k++ {
		if strings.EqualFold(k.String(), s) {
			return k, true
		}
	}

	return 0, false
}

func objectClassFromDict(d map[string]any, name Node, opts TableOptions) (Root, error) {
	objects, err := nodeAt(d, keyObjects)
	if err != nil {
		return nil, err
	}

	param, err := parameterFromAny(d[keyParameters])
	if err != nil {
		return nil, err
	}

	return ObjectClass{Name: name, Objects: objects, Parameter: param, TableOptions: opts}, nil
}

func relationshipClassFromDict(d map[string]any, name Node, opts TableOptions) (Root, error) {
	classes, err := nodeList(d, keyObjectClasses)
	if err != nil {
		return nil, err
	}

	objects, err := nodeList(d, keyObjects)
	if err != nil {
		return nil, err
	}

	if len(objects) > len(classes) {
		return nil, dictErr(keyObjects, "%d object mappings for %d object classes", len(objects), len(classes))
	}

	var dims []Dimension
	for i, c := range classes {
		dim := Dimension{Class: c}
		if i < len(objects) {
			dim.Objects = objects[i]
		}

		dims = append(dims, dim)
	}

	param, err := parameterFromAny(d[keyParameters])
	if err != nil {
		return nil, err
	}

	importObjects, err := boolAt(d, keyImportObjects)
	if err != nil {
		return nil, err
	}

	return RelationshipClass{
		Name:          name,
		Dimensions:    dims,
		Parameter:     param,
		ImportObjects: importObjects,
		TableOptions:  opts,
	}, nil
}

func objectGroupFromDict(d map[string]any, name Node, opts TableOptions) (Root, error) {
	groups, err := nodeAt(d, keyGroups)
	if err != nil {
		return nil, err
	}

	members, err := nodeAt(d, keyMembers)
	if err != nil {
		return nil, err
	}

	importObjects, err := boolAt(d, keyImportObjects)
	if err != nil {
		return nil, err
	}

	return ObjectGroup{
		Name:          name,
		Groups:        groups,
		Members:       members,
		ImportObjects: importObjects,
		TableOptions:  opts,
	}, nil
}

func optionsFromDict(d map[string]any) (TableOptions, error) {
	var opts TableOptions

	if v, ok := d[keyReadStartRow]; ok && v != nil {
		start, ok := asInt(v)
		if !ok || start < 0 {
			return opts, dictErr(keyReadStartRow, "expected a non-negative integer, got %v", v)
		}

		opts.ReadStartRow = start
	}

	switch cols := d[keySkipColumns].(type) {
	case nil:
	case []int:
		if len(cols) > 0 {
			opts.SkipColumns = append([]int(nil), cols...)
		}
	case []any:
		for i, c := range cols {
			idx, ok := asInt(c)
			if !ok {
				return opts, dictErr(fmt.Sprintf("%s[%d]", keySkipColumns, i), "expected a column index, got %v", c)
			}

			opts.SkipColumns = append(opts.SkipColumns, idx)
		}
	default:
		if idx, ok := asInt(cols); ok {
			opts.SkipColumns = []int{idx}
		} else {
			return opts, dictErr(keySkipColumns, "expected a list of column indices, got %T", cols)
		}
	}

	return opts, nil
}

func parameterFromAny(v any) (Parameter, error) {
	if v == nil {
		return NoParameter(), nil
	}

	d, ok := v.(map[string]any)
	if !ok {
		return Parameter{}, dictErr(keyParameters, "expected a parameter mapping, got %T", v)
	}

	mt, _ := d[keyMapType].(string)
	if strings.EqualFold(mt, noneMapType) {
		return NoParameter(), nil
	}

	if mt != "" && mt != parameterMapType {
		return Parameter{}, dictErr(keyParameters, "unknown parameter map_type %q", mt)
	}

	kind := ParameterSingleValue

	if raw, ok := d[keyParameterType].(string); ok {
		kind, ok = ParseParameterKind(raw)
		if !ok {
			return Parameter{}, dictErr(keyParameters+"."+keyParameterType, "unknown parameter type %q", raw)
		}
	}

	if kind == ParameterNone {
		return NoParameter(), nil
	}

	p := Parameter{Kind: kind}

	var err error

	if p.Name, err = nodeAt(d, keyName); err != nil {
		return Parameter{}, err
	}

	if p.Value, err = nodeAt(d, keyValue); err != nil {
		return Parameter{}, err
	}

	if p.ExtraDimensions, err = nodeList(d, keyExtraDimensions); err != nil {
		return Parameter{}, err
	}

	if p.Alternative, err = nodeAt(d, keyAlternativeName); err != nil {
		return Parameter{}, err
	}

	if opts, ok := d[keyOptions].(map[string]any); ok {
		if p.Repeat, err = boolAt(opts, keyRepeat); err != nil {
			return Parameter{}, err
		}
	}

	return p, nil
}

func nodeAt(d map[string]any, key string) (Node, error) {
	return nodeFromAny(d[key], key)
}

func nodeList(d map[string]any, key string) ([]Node, error) {
	switch v := d[key].(type) {
	case nil:
		return nil, nil
	case []any:
		if len(v) == 0 {
			return nil, nil
		}

		out := make([]Node, len(v))

		for i, item := range v {
			n, err := nodeFromAny(item, fmt.Sprintf("%s[%d]", key, i))
			if err != nil {
				return nil, err
			}

			out[i] = n
		}

		return out, nil
	default:
		return nil, dictErr(key, "expected a list, got %T", v)
	}
}

func nodeFromAny(v any, path string) (Node, error) {
	switch x := v.(type) {
	case nil:
		return None(), nil
	case string:
		return Constant(x), nil
	case bool:
		return Constant(strconv.FormatBool(x)), nil
	case map[string]any:
		return nodeFromMap(x, path)
	default:
		if idx, ok := asInt(v); ok {
			return Column(idx), nil
		}

		return Node{}, dictErr(path, "unsupported node value %v (%T)", v, v)
	}
}

func nodeFromMap(d map[string]any, path string) (Node, error) {
	mt, _ := d[keyMapType].(string)
	mt = strings.ToLower(mt)
	ref := d[keyReference]

	var n Node

	switch mt {
	case noneMapType:
		return None(), nil
	case "":
		return Node{}, dictErr(path, "missing %s", keyMapType)
	case NodeConstant.String():
		if ref == nil {
			return None(), nil
		}

		s, ok := scalarString(ref)
		if !ok {
			return Node{}, dictErr(path, "constant requires a scalar reference, got %v", ref)
		}

		n = Constant(s)
	case NodeColumn.String(), NodeColumnHeader.String(), columnNameAlias:
		kind := NodeColumn
		if mt != NodeColumn.String() {
			kind = NodeColumnHeader
		}

		r, err := columnReference(ref, path)
		if err != nil {
			return Node{}, err
		}

		n = Node{Kind: kind, Ref: r}
	case NodeRow.String():
		idx, ok := asInt(ref)
		if !ok || idx < HeaderRow {
			return Node{}, dictErr(path, "row reference must be an integer >= %d, got %v", HeaderRow, ref)
		}

		n = Row(idx)
	case NodeTableName.String():
		n = TableName()
	default:
		return Node{}, dictErr(path, "unknown node map_type %q", mt)
	}

	prefix, err := stringAt(d, keyPrepend, path)
	if err != nil {
		return Node{}, err
	}

	suffix, err := stringAt(d, keyAppend, path)
	if err != nil {
		return Node{}, err
	}

	return n.Decorated(prefix, suffix), nil
}

func columnReference(ref any, path string) (Reference, error) {
	if s, ok := ref.(string); ok {
		if s == "" {
			return Reference{}, dictErr(path, "empty column name")
		}

		return Reference{Name: s}, nil
	}

	idx, ok := asInt(ref)
	if !ok || idx < 0 {
		return Reference{}, dictErr(path, "column reference must be a name or a non-negative index, got %v", ref)
	}

	return Reference{Index: idx}, nil
}

func stringAt(d map[string]any, key, path string) (string, error) {
	switch v := d[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", dictErr(path+"."+key, "expected a string, got %T", v)
	}
}

func boolAt(d map[string]any, key string) (bool, error) {
	switch v := d[key].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	default:
		return false, dictErr(key, "expected a boolean, got %T", v)
	}
}

func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		if i, ok := asInt(v); ok {
			return strconv.Itoa(i), true
		}

		return "", false
	}
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case int32:
		return int(x), true
	case uint64:
		return int(x), true
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, false
		}

		return int(x), true
	default:
		return 0, false
	}
}
