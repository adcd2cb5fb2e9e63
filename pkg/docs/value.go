package docs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Kind identifies the YAML type a front-matter value was written as
type Kind int

const (
	// KindNull is an explicit null or an empty value
	KindNull Kind = iota
	// KindString is a scalar string, including YAML timestamps
	KindString
	// KindBool is a genuine YAML boolean
	KindBool
	// KindInt is an integer scalar
	KindInt
	// KindFloat is a floating point scalar
	KindFloat
	// KindList is a YAML sequence
	KindList
	// KindMap is a YAML mapping
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindList:
		return "list"
	case KindMap:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a single front-matter value together with the kind it was declared as.
type Value struct {
	Kind Kind
	raw  any
}

// NewValue wraps a Go value decoded from YAML. Unknown types are stringified.
func NewValue(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Value{Kind: KindNull}
	case string:
		return Value{Kind: KindString, raw: v}
	case bool:
		return Value{Kind: KindBool, raw: v}
	case int:
		return Value{Kind: KindInt, raw: int64(v)}
	case int64:
		return Value{Kind: KindInt, raw: v}
	case uint64:
		return Value{Kind: KindInt, raw: v}
	case float64:
		return Value{Kind: KindFloat, raw: v}
	case []any:
		return Value{Kind: KindList, raw: plain(v)}
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return Value{Kind: KindList, raw: items}
	case map[string]any:
		return Value{Kind: KindMap, raw: plain(v)}
	case map[any]any:
		return Value{Kind: KindMap, raw: plain(v)}
	default:
		return Value{Kind: KindString, raw: fmt.Sprint(v)}
	}
}

// plain rewrites nested collections so every mapping has string keys.
// YAML allows any scalar as a key; the key is rendered the way findings quote it.
func plain(raw any) any {
	switch v := raw.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plain(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = plain(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[mapKey(key)] = plain(item)
		}
		return out
	case int:
		return int64(v)
	default:
		return raw
	}
}

func mapKey(key any) string {
	if key == nil {
		return "null"
	}
	return NewValue(key).String()
}

// keepTimestampsVerbatim retags unquoted dates and times as strings so they
// decode to the text that was written rather than to time.Time.
func keepTimestampsVerbatim(node *yaml.Node) {
	if node == nil {
		return
	}
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!timestamp" {
		node.Tag = "!!str"
	}
	for _, child := range node.Content {
		keepTimestampsVerbatim(child)
	}
}

func valueFromNode(node *yaml.Node) (Value, error) {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return Value{}, errors.Wrapf(err, "failed to decode value at line %d", node.Line)
	}
	return NewValue(raw), nil
}

// Raw returns the underlying decoded value
func (v Value) Raw() any {
	return v.raw
}

// Bool returns the boolean and true only for genuine booleans.
func (v Value) Bool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok && v.Kind == KindBool
}

// Str returns the string and true only for string scalars.
func (v Value) Str() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok && v.Kind == KindString
}

// Strings returns the list items rendered as strings.
func (v Value) Strings() []string {
	items, ok := v.raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, NewValue(item).String())
	}
	return out
}

// Truthy reports whether the value is non-empty: non-empty strings, lists and
// mappings, true, and non-zero numbers.
func (v Value) Truthy() bool {
	switch r := v.raw.(type) {
	case nil:
		return false
	case string:
		return r != ""
	case bool:
		return r
	case int64:
		return r != 0
	case uint64:
		return r != 0
	case float64:
		return r != 0
	case []any:
		return len(r) > 0
	case map[string]any:
		return len(r) > 0
	default:
		return true
	}
}

// String renders the value the way it is quoted in findings.
func (v Value) String() string {
	switch r := v.raw.(type) {
	case nil:
		return ""
	case string:
		return r
	case bool:
		return strconv.FormatBool(r)
	case int64:
		return strconv.FormatInt(r, 10)
	case uint64:
		return strconv.FormatUint(r, 10)
	case float64:
		return strconv.FormatFloat(r, 'g', -1, 64)
	case []any:
		parts := make([]string, len(r))
		for i, item := range r {
			parts[i] = NewValue(item).String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(r)
	}
}
