package docs

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Well-known front-matter field names
const (
	FieldDocID     = "doc_id"
	FieldTitle     = "title"
	FieldDocType   = "doc_type"
	FieldStatus    = "status"
	FieldCanonical = "canonical"
	FieldCreated   = "created"
	FieldUpdated   = "updated"
	FieldTags      = "tags"
	FieldSummary   = "summary"
)

// Metadata is the typed front-matter record of a managed document. Known fields
// are nil when absent; anything else is carried in Extra.
type Metadata struct {
	DocID     *Value
	Title     *Value
	DocType   *Value
	Status    *Value
	Canonical *Value
	Created   *Value
	Updated   *Value
	Tags      *Value
	Summary   *Value

	Extra map[string]Value

	keys []string
}

// NewMetadata builds a Metadata from an ordered list of key/value pairs.
// Mostly useful in tests; a repeated key keeps its first position and last value.
func NewMetadata(pairs ...any) *Metadata {
	m := &Metadata{}
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		m.Set(key, NewValue(pairs[i+1]))
	}
	return m
}

func (m *Metadata) slot(key string) **Value {
	switch key {
	case FieldDocID:
		return &m.DocID
	case FieldTitle:
		return &m.Title
	case FieldDocType:
		return &m.DocType
	case FieldStatus:
		return &m.Status
	case FieldCanonical:
		return &m.Canonical
	case FieldCreated:
		return &m.Created
	case FieldUpdated:
		return &m.Updated
	case FieldTags:
		return &m.Tags
	case FieldSummary:
		return &m.Summary
	}
	return nil
}

// Set assigns a field, recording its declaration order on first sight
func (m *Metadata) Set(key string, v Value) {
	if !m.Has(key) {
		m.keys = append(m.keys, key)
	}
	if s := m.slot(key); s != nil {
		val := v
		*s = &val
		return
	}
	if m.Extra == nil {
		m.Extra = make(map[string]Value)
	}
	m.Extra[key] = v
}

// Get returns the value for any field, known or extra
func (m *Metadata) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	if s := m.slot(key); s != nil {
		if *s == nil {
			return Value{}, false
		}
		return **s, true
	}
	v, ok := m.Extra[key]
	return v, ok
}

// Has reports whether the key was declared, even with a null value
func (m *Metadata) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns field names in declaration order
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of declared fields
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// TitleText returns the title when it is a string, otherwise ""
func (m *Metadata) TitleText() string {
	return m.text(m.Title)
}

// DocTypeText returns the document type when it is a string, otherwise ""
func (m *Metadata) DocTypeText() string {
	return m.text(m.DocType)
}

// StatusText returns the status when it is a string, otherwise ""
func (m *Metadata) StatusText() string {
	return m.text(m.Status)
}

func (m *Metadata) text(v *Value) string {
	if m == nil || v == nil {
		return ""
	}
	s, _ := v.Str()
	return s
}

// IsCanonical is true only for a genuine boolean true canonical flag
func (m *Metadata) IsCanonical() bool {
	if m == nil || m.Canonical == nil {
		return false
	}
	b, ok := m.Canonical.Bool()
	return ok && b
}

// metadataFromNode converts a YAML mapping node into Metadata, keeping key order
func metadataFromNode(node *yaml.Node) (*Metadata, error) {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, nil
		}
		node = node.Content[0]
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.Errorf("front matter must be a mapping, got %s", nodeKindName(node.Kind))
	}

	keepTimestampsVerbatim(node)

	m := &Metadata{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		var key string
		if err := keyNode.Decode(&key); err != nil {
			return nil, errors.Wrapf(err, "invalid key at line %d", keyNode.Line)
		}
		v, err := valueFromNode(valueNode)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	return m, nil
}

func nodeKindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
