package numbering

import (
	"bytes"
	"strings"

	"github.com/dgallion1/docnum/internal/doctree"
	"gopkg.in/yaml.v3"
)

// DefaultGroupField is the front matter field selecting the format group.
const DefaultGroupField = "numGroupName"

// extractGroup reads field from the root's front matter and removes it.
// Front matter that is not a yaml mapping is left untouched.
func extractGroup(root *doctree.Node, field string) (string, error) {
	fm := frontMatter(root)
	if fm == nil {
		return "", nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(fm.Value), &doc); err != nil {
		return "", err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return "", nil
	}
	m := doc.Content[0]
	if m.Kind != yaml.MappingNode {
		return "", nil
	}

	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], m.Content[i+1]
		if key.Value != field || val.Kind != yaml.ScalarNode {
			continue
		}
		group := val.Value
		m.Content = append(m.Content[:i], m.Content[i+2:]...)

		value, err := encodeFrontMatter(&doc, len(m.Content) == 0)
		if err != nil {
			return "", err
		}
		fm.Value = value
		return group, nil
	}
	return "", nil
}

func frontMatter(root *doctree.Node) *doctree.Node {
	for _, c := range root.Children {
		if c.Type == doctree.TypeYAML {
			return c
		}
	}
	return nil
}

func encodeFrontMatter(doc *yaml.Node, empty bool) (string, error) {
	if empty {
		return "", nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
