package mapping

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML or JSON mapping file from the given path.
func LoadFile(path string) (Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML or JSON data into a Root.
func Parse(data []byte) (Root, error) {
	var raw map[string]any

	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping: %w", err)
	}

	return FromDict(raw)
}

// Marshal serializes a Root to YAML.
func Marshal(r Root) ([]byte, error) {
	return yaml.Marshal(ToDict(r))
}

// MarshalJSON serializes a Root to indented JSON.
func MarshalJSON(r Root) ([]byte, error) {
	return json.MarshalIndent(ToDict(r), "", "  ")
}

// WriteFile writes a Root to the given path, as JSON when the extension is
// .json and as YAML otherwise.
func WriteFile(r Root, path string) error {
	marshal := Marshal
	if strings.EqualFold(filepath.Ext(path), ".json") {
		marshal = MarshalJSON
	}

	data, err := marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}

	return nil
}

// Document embeds a mapping inside larger YAML documents.
type Document struct {
	Root Root
}

// UnmarshalYAML decodes the map_type representation.
func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}

	r, err := FromDict(raw)
	if err != nil {
		return err
	}

	d.Root = r

	return nil
}

// MarshalYAML encodes the map_type representation.
func (d Document) MarshalYAML() (any, error) {
	if d.Root == nil {
		return nil, nil
	}

	return ToDict(d.Root), nil
}
