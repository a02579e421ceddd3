package datatest

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a YAML document holding a sequence of cases and decodes
// every element into T. A case is named after its "name" key when it is a
// mapping with a scalar name, and after its index otherwise. Locations are
// "<path>:<line>".
func LoadYAML[T any](path string) ([]CaseDesc[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cases file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse cases file %s: %w", path, err)
	}
	if doc.Kind == 0 {
		// Empty file.
		return nil, nil
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s:%d: cases file must contain a sequence of cases", path, root.Line)
	}

	cases := make([]CaseDesc[T], 0, len(root.Content))
	for i, node := range root.Content {
		var value T
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("%s:%d: failed to decode case %d: %w", path, node.Line, i, err)
		}
		cases = append(cases, CaseDesc[T]{
			Case:     value,
			Name:     caseName(node, i),
			Location: fmt.Sprintf("%s:%d", path, node.Line),
		})
	}
	return cases, nil
}

// YAML is the default case source used for string-literal case annotations.
// It panics when the file cannot be loaded.
func YAML[T any](path string) []CaseDesc[T] {
	cases, err := LoadYAML[T](path)
	if err != nil {
		panic(fmt.Sprintf("datatest: %v", err))
	}
	return cases
}

func caseName(node *yaml.Node, index int) string {
	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if key.Value == "name" && val.Kind == yaml.ScalarNode && val.Value != "" {
				return val.Value
			}
		}
	}
	return strconv.Itoa(index)
}
