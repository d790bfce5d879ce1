package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataset_ClassLikeBucketsDeduplicate(t *testing.T) {
	d := New()
	d.AddObjectClass("unit")
	d.AddObjectClass("node")
	d.AddObjectClass("unit")
	d.AddObjectParameter("unit", "capacity")
	d.AddObjectParameter("unit", "capacity")
	d.AddObjectParameter("node", "capacity")
	d.AddRelationshipClass("unit__node", []string{"unit", "node"})
	d.AddRelationshipClass("unit__node", []string{"x", "y"})
	d.AddRelationshipParameter("unit__node", "flow")
	d.AddRelationshipParameter("unit__node", "flow")
	d.AddAlternative("Base")
	d.AddAlternative("Base")

	assert.Equal(t, []string{"unit", "node"}, d.ObjectClasses)
	assert.Equal(t, []ParameterDefinition{{Class: "unit", Name: "capacity"}, {Class: "node", Name: "capacity"}}, d.ObjectParameters)
	assert.Equal(t, []RelationshipClass{{Name: "unit__node", ObjectClasses: []string{"unit", "node"}}}, d.RelationshipClasses)
	assert.Len(t, d.RelationshipParameters, 1)
	assert.Equal(t, []string{"Base"}, d.Alternatives)
}

func TestDataset_RowBucketsKeepEveryRecord(t *testing.T) {
	var d Dataset

	d.AddObject("unit", "a")
	d.AddObject("unit", "a")
	d.AddRelationship("unit__node", []string{"a", "n"})
	d.AddRelationship("unit__node", []string{"a", "n"})
	d.AddScenario("s", true)
	d.AddScenario("s", false)

	assert.Len(t, d.Objects, 2)
	assert.Len(t, d.Relationships, 2)
	assert.Equal(t, []Scenario{{Name: "s", Active: true}, {Name: "s", Active: false}}, d.Scenarios)
}

func TestDataset_AddRelationshipCopiesObjects(t *testing.T) {
	d := New()
	objects := []string{"a", "b"}
	d.AddRelationship("r", objects)
	objects[0] = "changed"

	assert.Equal(t, []string{"a", "b"}, d.Relationships[0].Objects)
}

func TestDataset_Merge(t *testing.T) {
	first := New()
	first.AddObjectClass("unit")
	first.AddObject("unit", "a")
	first.AddAlternative("Base")

	second := New()
	second.AddObjectClass("unit")
	second.AddObjectClass("node")
	second.AddObject("node", "n")
	second.AddAlternative("Base")
	second.AddAlternative("high")
	second.AddObjectGroup("node", "all", "n")
	second.AddScenarioAlternative("s", "high", "")

	first.Merge(second)
	first.Merge(nil)

	assert.Equal(t, []string{"unit", "node"}, first.ObjectClasses)
	assert.Equal(t, []Entity{{Class: "unit", Name: "a"}, {Class: "node", Name: "n"}}, first.Objects)
	assert.Equal(t, []string{"Base", "high"}, first.Alternatives)
	assert.Len(t, first.ObjectGroups, 1)
	assert.Len(t, first.ScenarioAlternatives, 1)
	assert.Equal(t, 8, first.Len())
	assert.Equal(t, map[string]int{
		"object_classes":        2,
		"objects":               2,
		"alternatives":          2,
		"object_groups":         1,
		"scenario_alternatives": 1,
	}, first.Counts())
}

func TestDataset_Len(t *testing.T) {
	var d *Dataset

	assert.Equal(t, 0, d.Len())
	assert.True(t, New().IsEmpty())
}
