package mapping

import (
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/common"
)

// RootKind identifies the entity shape a table describes.
type RootKind int

const (
	KindObjectClass RootKind = iota
	KindRelationshipClass
	KindObjectGroup
	KindAlternative
	KindScenario
	KindScenarioAlternative
)

// String returns the map_type of the root.
func (k RootKind) String() string {
	switch k {
	case KindObjectClass:
		return "ObjectClass"
	case KindRelationshipClass:
		return "RelationshipClass"
	case KindObjectGroup:
		return "ObjectGroup"
	case KindAlternative:
		return "Alternative"
	case KindScenario:
		return "Scenario"
	case KindScenarioAlternative:
		return "ScenarioAlternative"
	default:
		return common.UnknownStr
	}
}

// Root is the top-level mapping of one table. The set of implementations is
// closed: ObjectClass, RelationshipClass, ObjectGroup, Alternative, Scenario
// and ScenarioAlternative.
type Root interface {
	Kind() RootKind
	Options() TableOptions
	isRoot()
}

// TableOptions are the table-level read directives shared by all roots.
type TableOptions struct {
	// ReadStartRow is the first row read as data.
	ReadStartRow int
	// SkipColumns are excluded from the pivoted data region.
	SkipColumns []int
}

// Options returns the options.
func (o TableOptions) Options() TableOptions {
	return o
}

// ObjectClass maps rows to objects of a class and their parameters.
type ObjectClass struct {
	Name      Node
	Objects   Node
	Parameter Parameter
	TableOptions
}

// Dimension is one object class / object pair of a relationship.
type Dimension struct {
	Class   Node
	Objects Node
}

// RelationshipClass maps rows to relationships between objects.
type RelationshipClass struct {
	Name       Node
	Dimensions []Dimension
	Parameter  Parameter
	// ImportObjects also records the dimension objects as standalone objects.
	ImportObjects bool
	TableOptions
}

// ObjectGroup maps rows to group membership within an object class.
type ObjectGroup struct {
	Name          Node
	Groups        Node
	Members       Node
	ImportObjects bool
	TableOptions
}

// Alternative maps rows to alternative names.
type Alternative struct {
	Name Node
	TableOptions
}

// Scenario maps rows to scenarios and their active flag.
type Scenario struct {
	Name   Node
	Active Node
	TableOptions
}

// ScenarioAlternative maps rows to the alternatives of a scenario and their
// ordering.
type ScenarioAlternative struct {
	Name        Node
	Alternative Node
	Before      Node
	TableOptions
}

func (ObjectClass) Kind() RootKind         { return KindObjectClass }
func (RelationshipClass) Kind() RootKind   { return KindRelationshipClass }
func (ObjectGroup) Kind() RootKind         { return KindObjectGroup }
func (Alternative) Kind() RootKind         { return KindAlternative }
func (Scenario) Kind() RootKind            { return KindScenario }
func (ScenarioAlternative) Kind() RootKind { return KindScenarioAlternative }

func (ObjectClass) isRoot()         {}
func (RelationshipClass) isRoot()   {}
func (ObjectGroup) isRoot()         {}
func (Alternative) isRoot()         {}
func (Scenario) isRoot()            {}
func (ScenarioAlternative) isRoot() {}

// ParameterOf returns the parameter mapping of roots that carry one.
func ParameterOf(r Root) Parameter {
	switch m := r.(type) {
	case ObjectClass:
		return m.Parameter
	case RelationshipClass:
		return m.Parameter
	default:
		return NoParameter()
	}
}
