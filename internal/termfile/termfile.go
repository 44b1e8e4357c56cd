package termfile

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is the parsed form of a terminology file: a YAML mapping with a
// `labels` sequence, each entry carrying a `name` and a `translations` list
// of single-key language→term maps. The underlying node tree is kept so that
// fields and comments this package knows nothing about survive a round trip.
type Document struct {
	root   *yaml.Node
	labels []*Label
}

// Label is a named terminology entry inside a Document. It is a live view
// onto the document's node tree; mutations through it edit the Document.
type Label struct {
	Name         string
	node         *yaml.Node
	translations *yaml.Node
}

// LanguageEntry is one language→term slot of a label.
type LanguageEntry struct {
	Language string
	Term     string
}

// Parse decodes file bytes into a Document. The top level must be a mapping
// containing a `labels` sequence; anything else fails immediately rather than
// surfacing later as a nil dereference.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse terminology file: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("terminology file is empty")
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("terminology file must be a mapping at the top level")
	}
	seq := mapValue(top, "labels")
	if seq == nil {
		return nil, fmt.Errorf("terminology file has no labels list")
	}
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("labels must be a sequence")
	}

	doc := &Document{root: &root}
	for _, item := range seq.Content {
		if item.Kind != yaml.MappingNode {
			// Preserved in the tree but invisible to lookups.
			continue
		}
		name := mapValue(item, "name")
		if name == nil || name.Kind != yaml.ScalarNode || name.Value == "" {
			continue
		}
		doc.labels = append(doc.labels, &Label{
			Name:         name.Value,
			node:         item,
			translations: mapValue(item, "translations"),
		})
	}
	return doc, nil
}

// Labels returns the document's labels in file order.
func (d *Document) Labels() []*Label { return d.labels }

// LabelByName returns the first label with the given name. Names are expected
// unique within a file; when they are not, the first occurrence wins.
func (d *Document) LabelByName(name string) (*Label, bool) {
	for _, l := range d.labels {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// Serialize re-encodes the document. String values are emitted double-quoted
// and keys plain, so unchanged data serializes identically run after run.
func (d *Document) Serialize() ([]byte, error) {
	normalizeStyles(d.root, false)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root.Content[0]); err != nil {
		return nil, fmt.Errorf("serialize terminology file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("serialize terminology file: %w", err)
	}
	return buf.Bytes(), nil
}

// Entries returns the label's language slots in file order. A label may list
// the same language more than once; all occurrences are returned.
func (l *Label) Entries() []LanguageEntry {
	if l.translations == nil || l.translations.Kind != yaml.SequenceNode {
		return nil
	}
	var out []LanguageEntry
	for _, item := range l.translations.Content {
		if item.Kind != yaml.MappingNode {
			continue
		}
		for i := 0; i+1 < len(item.Content); i += 2 {
			k, v := item.Content[i], item.Content[i+1]
			if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
				continue
			}
			out = append(out, LanguageEntry{Language: k.Value, Term: v.Value})
		}
	}
	return out
}

// Term returns the first term recorded for the language.
func (l *Label) Term(language string) (string, bool) {
	node := l.termNode(language)
	if node == nil {
		return "", false
	}
	return node.Value, true
}

// SetTerm overwrites the first existing slot for the language. It reports
// false when the label has no slot for that language; slots are never
// invented, so the document shape cannot drift.
func (l *Label) SetTerm(language, term string) bool {
	node := l.termNode(language)
	if node == nil {
		return false
	}
	node.Value = term
	node.Tag = "!!str"
	node.Style = yaml.DoubleQuotedStyle
	return true
}

func (l *Label) termNode(language string) *yaml.Node {
	if l.translations == nil || l.translations.Kind != yaml.SequenceNode {
		return nil
	}
	for _, item := range l.translations.Content {
		if item.Kind != yaml.MappingNode {
			continue
		}
		for i := 0; i+1 < len(item.Content); i += 2 {
			k, v := item.Content[i], item.Content[i+1]
			if k.Kind == yaml.ScalarNode && v.Kind == yaml.ScalarNode && k.Value == language {
				return v
			}
		}
	}
	return nil
}

// mapValue returns the value node for key in a mapping node, or nil.
func mapValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		k := mapping.Content[i]
		if k.Kind == yaml.ScalarNode && k.Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// normalizeStyles forces double quotes on string values and plain style on
// keys, the output convention reviewers see in terminology pull requests.
func normalizeStyles(node *yaml.Node, isKey bool) {
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			normalizeStyles(child, false)
		}
	case yaml.MappingNode:
		for i, child := range node.Content {
			normalizeStyles(child, i%2 == 0)
		}
	case yaml.ScalarNode:
		if isKey {
			node.Style = 0
			return
		}
		if node.Tag == "" || node.Tag == "!!str" {
			node.Style = yaml.DoubleQuotedStyle
		}
	}
}
