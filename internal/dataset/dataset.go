package dataset

import (
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/common"
)

// Shape is the kind of value a parameter-value record belongs to.
type Shape int

const (
	ShapeScalar Shape = iota
	ShapeArray
	ShapeMap
	ShapeTimeSeries
	ShapeTimePattern
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeArray:
		return "array"
	case ShapeMap:
		return "map"
	case ShapeTimeSeries:
		return "time_series"
	case ShapeTimePattern:
		return "time_pattern"
	default:
		return common.UnknownStr
	}
}

// MarshalText encodes the shape name.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Entity is an object of a class.
type Entity struct {
	Class string `yaml:"class" json:"class"`
	Name  string `yaml:"name" json:"name"`
}

// RelationshipClass is a named tuple of object classes.
type RelationshipClass struct {
	Name          string   `yaml:"name" json:"name"`
	ObjectClasses []string `yaml:"object_classes" json:"object_classes"`
}

// Relationship is a tuple of objects, one per dimension of its class.
type Relationship struct {
	Class   string   `yaml:"class" json:"class"`
	Objects []string `yaml:"objects" json:"objects"`
}

// ParameterDefinition declares a parameter on an object or relationship class.
type ParameterDefinition struct {
	Class string `yaml:"class" json:"class"`
	Name  string `yaml:"name" json:"name"`
}

// ParameterValue is one value of a parameter for one entity. Indexed records
// carry the index coordinates of a single element of a composite value.
type ParameterValue struct {
	Class       string   `yaml:"class" json:"class"`
	Entity      []string `yaml:"entity" json:"entity"`
	Parameter   string   `yaml:"parameter" json:"parameter"`
	Alternative string   `yaml:"alternative,omitempty" json:"alternative,omitempty"`
	Index       []any    `yaml:"index,omitempty" json:"index,omitempty"`
	Value       any      `yaml:"value" json:"value"`
	Shape       Shape    `yaml:"shape" json:"shape"`
	Repeat      bool     `yaml:"repeat,omitempty" json:"repeat,omitempty"`
}

// seriesKey identifies the composite value a record contributes to.
func (v ParameterValue) seriesKey() string {
	parts := make([]string, 0, len(v.Entity)+4)
	parts = append(parts, v.Class)
	parts = append(parts, v.Entity...)
	parts = append(parts, v.Parameter, v.Alternative, v.Shape.String())

	return common.JoinKey(parts...)
}

// Group records an object as a member of a group object of the same class.
type Group struct {
	Class  string `yaml:"class" json:"class"`
	Group  string `yaml:"group" json:"group"`
	Member string `yaml:"member" json:"member"`
}

// Scenario is a named scenario and its active flag.
type Scenario struct {
	Name   string `yaml:"name" json:"name"`
	Active bool   `yaml:"active" json:"active"`
}

// ScenarioAlternative places an alternative in a scenario, optionally before
// another alternative.
type ScenarioAlternative struct {
	Scenario    string `yaml:"scenario" json:"scenario"`
	Alternative string `yaml:"alternative" json:"alternative"`
	Before      string `yaml:"before,omitempty" json:"before,omitempty"`
}

// Dataset is the normalized result of one or more executions. The zero value
// is ready to use.
type Dataset struct {
	ObjectClasses               []string              `yaml:"object_classes,omitempty" json:"object_classes,omitempty"`
	Objects                     []Entity              `yaml:"objects,omitempty" json:"objects,omitempty"`
	ObjectParameters            []ParameterDefinition `yaml:"object_parameters,omitempty" json:"object_parameters,omitempty"`
	ObjectParameterValues       []ParameterValue      `yaml:"object_parameter_values,omitempty" json:"object_parameter_values,omitempty"`
	RelationshipClasses         []RelationshipClass   `yaml:"relationship_classes,omitempty" json:"relationship_classes,omitempty"`
	Relationships               []Relationship        `yaml:"relationships,omitempty" json:"relationships,omitempty"`
	RelationshipParameters      []ParameterDefinition `yaml:"relationship_parameters,omitempty" json:"relationship_parameters,omitempty"`
	RelationshipParameterValues []ParameterValue      `yaml:"relationship_parameter_values,omitempty" json:"relationship_parameter_values,omitempty"`
	ObjectGroups                []Group               `yaml:"object_groups,omitempty" json:"object_groups,omitempty"`
	Alternatives                []string              `yaml:"alternatives,omitempty" json:"alternatives,omitempty"`
	Scenarios                   []Scenario            `yaml:"scenarios,omitempty" json:"scenarios,omitempty"`
	ScenarioAlternatives        []ScenarioAlternative `yaml:"scenario_alternatives,omitempty" json:"scenario_alternatives,omitempty"`

	seen map[string]struct{}
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{}
}

// firstSeen records key and reports whether it was new.
func (d *Dataset) firstSeen(bucket string, parts ...string) bool {
	if d.seen == nil {
		d.seen = map[string]struct{}{}
	}

	key := common.JoinKey(append([]string{bucket}, parts...)...)
	if _, ok := d.seen[key]; ok {
		return false
	}

	d.seen[key] = struct{}{}

	return true
}

// AddObjectClass records an object class once.
func (d *Dataset) AddObjectClass(name string) {
	if d.firstSeen("oc", name) {
		d.ObjectClasses = append(d.ObjectClasses, name)
	}
}

// AddObject records an object.
func (d *Dataset) AddObject(class, name string) {
	d.Objects = append(d.Objects, Entity{Class: class, Name: name})
}

// AddObjectParameter records an object parameter definition once.
func (d *Dataset) AddObjectParameter(class, name string) {
	if d.firstSeen("op", class, name) {
		d.ObjectParameters = append(d.ObjectParameters, ParameterDefinition{Class: class, Name: name})
	}
}

// AddObjectParameterValue records an object parameter value.
func (d *Dataset) AddObjectParameterValue(v ParameterValue) {
	d.ObjectParameterValues = append(d.ObjectParameterValues, v)
}

// AddRelationshipClass records a relationship class once; the first set of
// object classes seen for a name wins.
func (d *Dataset) AddRelationshipClass(name string, objectClasses []string) {
	if d.firstSeen("rc", name) {
		d.RelationshipClasses = append(d.RelationshipClasses, RelationshipClass{
			Name:          name,
			ObjectClasses: append([]string(nil), objectClasses...),
		})
	}
}

// AddRelationship records a relationship.
func (d *Dataset) AddRelationship(class string, objects []string) {
	d.Relationships = append(d.Relationships, Relationship{
		Class:   class,
		Objects: append([]string(nil), objects...),
	})
}

// AddRelationshipParameter records a relationship parameter definition once.
func (d *Dataset) AddRelationshipParameter(class, name string) {
	if d.firstSeen("rp", class, name) {
		d.RelationshipParameters = append(d.RelationshipParameters, ParameterDefinition{Class: class, Name: name})
	}
}

// AddRelationshipParameterValue records a relationship parameter value.
func (d *Dataset) AddRelationshipParameterValue(v ParameterValue) {
	d.RelationshipParameterValues = append(d.RelationshipParameterValues, v)
}

// AddObjectGroup records a group membership.
func (d *Dataset) AddObjectGroup(class, group, member string) {
	d.ObjectGroups = append(d.ObjectGroups, Group{Class: class, Group: group, Member: member})
}

// AddAlternative records an alternative once.
func (d *Dataset) AddAlternative(name string) {
	if d.firstSeen("alt", name) {
		d.Alternatives = append(d.Alternatives, name)
	}
}

// AddScenario records a scenario.
func (d *Dataset) AddScenario(name string, active bool) {
	d.Scenarios = append(d.Scenarios, Scenario{Name: name, Active: active})
}

// AddScenarioAlternative records a scenario alternative.
func (d *Dataset) AddScenarioAlternative(scenario, alternative, before string) {
	d.ScenarioAlternatives = append(d.ScenarioAlternatives, ScenarioAlternative{
		Scenario:    scenario,
		Alternative: alternative,
		Before:      before,
	})
}

// Merge appends every record of other, de-duplicating class-like buckets.
func (d *Dataset) Merge(other *Dataset) {
	if other == nil {
		return
	}

	for _, name := range other.ObjectClasses {
		d.AddObjectClass(name)
	}

	d.Objects = append(d.Objects, other.Objects...)

	for _, p := range other.ObjectParameters {
		d.AddObjectParameter(p.Class, p.Name)
	}

	d.ObjectParameterValues = append(d.ObjectParameterValues, other.ObjectParameterValues...)

	for _, rc := range other.RelationshipClasses {
		d.AddRelationshipClass(rc.Name, rc.ObjectClasses)
	}

	d.Relationships = append(d.Relationships, other.Relationships...)

	for _, p := range other.RelationshipParameters {
		d.AddRelationshipParameter(p.Class, p.Name)
	}

	d.RelationshipParameterValues = append(d.RelationshipParameterValues, other.RelationshipParameterValues...)
	d.ObjectGroups = append(d.ObjectGroups, other.ObjectGroups...)

	for _, name := range other.Alternatives {
		d.AddAlternative(name)
	}

	d.Scenarios = append(d.Scenarios, other.Scenarios...)
	d.ScenarioAlternatives = append(d.ScenarioAlternatives, other.ScenarioAlternatives...)
}

// Len returns the total number of records across all buckets.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}

	return len(d.ObjectClasses) + len(d.Objects) + len(d.ObjectParameters) + len(d.ObjectParameterValues) +
		len(d.RelationshipClasses) + len(d.Relationships) + len(d.RelationshipParameters) +
		len(d.RelationshipParameterValues) + len(d.ObjectGroups) + len(d.Alternatives) +
		len(d.Scenarios) + len(d.ScenarioAlternatives)
}

// IsEmpty reports whether the dataset holds no records.
func (d *Dataset) IsEmpty() bool {
	return d.Len() == 0
}

// Counts returns the number of records per bucket, keyed by the bucket's
// serialized name. Empty buckets are omitted.
func (d *Dataset) Counts() map[string]int {
	counts := map[string]int{}

	put := func(name string, n int) {
		if n > 0 {
			counts[name] = n
		}
	}

	put("object_classes", len(d.ObjectClasses))
	put("objects", len(d.Objects))
	put("object_parameters", len(d.ObjectParameters))
	put("object_parameter_values", len(d.ObjectParameterValues))
	put("relationship_classes", len(d.RelationshipClasses))
	put("relationships", len(d.Relationships))
	put("relationship_parameters", len(d.RelationshipParameters))
	put("relationship_parameter_values", len(d.RelationshipParameterValues))
	put("object_groups", len(d.ObjectGroups))
	put("alternatives", len(d.Alternatives))
	put("scenarios", len(d.Scenarios))
	put("scenario_alternatives", len(d.ScenarioAlternatives))

	return counts
}
