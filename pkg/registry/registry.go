// Package registry builds and writes the JSON summary of a validated
// documentation corpus.
package registry

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/docs"
	"github.com/pkg/errors"
)

// TimestampFormat is ISO-8601 in UTC with microseconds and a Z suffix
const TimestampFormat = "2006-01-02T15:04:05.000000Z07:00"

// Registry is the derived index of the corpus. It is regenerated wholesale on
// every successful run.
type Registry struct {
	GeneratedAt string         `json:"generated_at" jsonschema:"description=UTC generation time in ISO-8601 with a Z suffix"`
	TotalDocs   int            `json:"total_docs" jsonschema:"description=Number of managed documents"`
	ByType      map[string]int `json:"by_type" jsonschema:"description=Document count per doc_type"`
	ByStatus    map[string]int `json:"by_status" jsonschema:"description=Document count per status"`
	Docs        []Record       `json:"docs" jsonschema:"description=One record per document sorted by path"`
}

// Record is one document entry. Front-matter fields are written verbatim
// between sha256 and simhash.
type Record struct {
	Path     string          `json:"path" jsonschema:"description=Path relative to the docs root"`
	SHA256   string          `json:"sha256" jsonschema:"description=Hex SHA-256 of the raw file content"`
	Simhash  string          `json:"simhash,omitempty" jsonschema:"description=64-bit content fingerprint as a decimal string"`
	Metadata *docs.Metadata `json:"-"`
}

// Build aggregates documents into a registry. Documents keep their collector order.
func Build(documents []*docs.Document, now time.Time) *Registry {
	reg := &Registry{
		GeneratedAt: now.UTC().Format(TimestampFormat),
		TotalDocs:   len(documents),
		ByType:      make(map[string]int),
		ByStatus:    make(map[string]int),
		Docs:        make([]Record, 0, len(documents)),
	}

	for _, doc := range documents {
		if v, ok := doc.Metadata.Get(docs.FieldDocType); ok && v.Truthy() {
			reg.ByType[v.String()]++
		}
		if v, ok := doc.Metadata.Get(docs.FieldStatus); ok && v.Truthy() {
			reg.ByStatus[v.String()]++
		}
	}

	for _, doc := range documents {
		record := Record{
			Path:     doc.Path,
			SHA256:   doc.ContentHash,
			Metadata: doc.Metadata,
		}
		if doc.Fingerprint != nil {
			record.Simhash = strconv.FormatUint(*doc.Fingerprint, 10)
		}
		reg.Docs = append(reg.Docs, record)
	}

	return reg
}

// MarshalJSON writes path, sha256, every metadata field in declaration order and
// finally simhash. A metadata key that collides with an earlier key replaces its
// value in place.
func (r Record) MarshalJSON() ([]byte, error) {
	obj := newOrderedObject()
	obj.set("path", r.Path)
	obj.set("sha256", r.SHA256)
	for _, key := range r.Metadata.Keys() {
		v, _ := r.Metadata.Get(key)
		obj.set(key, jsonValue(v.Raw()))
	}
	if r.Simhash != "" {
		obj.set("simhash", r.Simhash)
	}
	return obj.marshal()
}

// jsonValue replaces floats JSON cannot represent with their conventional
// spelling as strings: "NaN", "Infinity" and "-Infinity".
func jsonValue(v any) any {
	switch r := v.(type) {
	case float64:
		switch {
		case math.IsNaN(r):
			return "NaN"
		case math.IsInf(r, 1):
			return "Infinity"
		case math.IsInf(r, -1):
			return "-Infinity"
		}
		return r
	case []any:
		out := make([]any, len(r))
		for i, item := range r {
			out[i] = jsonValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(r))
		for key, item := range r {
			out[key] = jsonValue(item)
		}
		return out
	default:
		return v
	}
}

// Encode renders the registry as indented JSON with a trailing newline
func Encode(reg *Registry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reg); err != nil {
		return nil, errors.Wrap(err, "failed to encode registry")
	}
	return buf.Bytes(), nil
}

type orderedObject struct {
	keys   []string
	values map[string]any
}

func newOrderedObject() *orderedObject {
	return &orderedObject{values: make(map[string]any)}
}

func (o *orderedObject) set(key string, value any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func (o *orderedObject) marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalRaw(key)
		if err != nil {
			return nil, err
		}
		v, err := marshalRaw(o.values[key])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode field %q", key)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalRaw encodes without HTML escaping so titles are written as authored
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
