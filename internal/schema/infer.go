// Package schema infers structural schemas from sampled JSON payloads.
// One sample produces one schema; array items are folded into a single
// element schema by merging.
package schema

import (
	"encoding/json"
	"sort"
	"strings"
)

// Kind is the inferred JSON type of a value.
type Kind int

const (
	KindAny Kind = iota
	KindNull
	KindBoolean
	KindInteger
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the JSON Schema type name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "any"
	}
}

// Schema describes the shape of one sampled value.
type Schema struct {
	Kind Kind

	// Object state. PropOrder keeps property iteration deterministic;
	// Required lists the properties present in every observed instance.
	Properties map[string]*Schema
	PropOrder  []string
	Required   []string

	// Array element schema. Nil for arrays no element was observed in.
	Items *Schema
}

// IsRequired reports whether the named property was present in every
// observed instance.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Infer builds a schema from one decoded JSON value. Numbers decoded with
// json.Decoder.UseNumber keep their integer/float distinction; native Go
// numeric types are accepted for directly built values.
func Infer(value any) *Schema {
	switch v := value.(type) {
	case map[string]any:
		return inferObject(v)
	case []any:
		return inferArray(v)
	case json.Number:
		if strings.ContainsAny(v.String(), ".eE") {
			return &Schema{Kind: KindNumber}
		}
		return &Schema{Kind: KindInteger}
	case string:
		return &Schema{Kind: KindString}
	case bool:
		return &Schema{Kind: KindBoolean}
	case int, int32, int64:
		return &Schema{Kind: KindInteger}
	case float32, float64:
		return &Schema{Kind: KindNumber}
	case nil:
		return &Schema{Kind: KindNull}
	default:
		return &Schema{Kind: KindAny}
	}
}

func inferObject(value map[string]any) *Schema {
	s := &Schema{
		Kind:       KindObject,
		Properties: make(map[string]*Schema, len(value)),
	}
	for key := range value {
		s.PropOrder = append(s.PropOrder, key)
	}
	sort.Strings(s.PropOrder)

	for _, key := range s.PropOrder {
		s.Properties[key] = Infer(value[key])
		s.Required = append(s.Required, key)
	}
	return s
}

func inferArray(values []any) *Schema {
	s := &Schema{Kind: KindArray}
	for _, value := range values {
		s.Items = Merge(s.Items, Infer(value))
	}
	return s
}

// Merge folds two schemas observed for the same position into one.
//
// Identical kinds merge structurally: objects union their properties and
// keep only universally present ones required; arrays merge their element
// schemas. An integer observed next to a number widens to number, and null
// yields to any concrete kind. Anything else degrades to any.
func Merge(a, b *Schema) *Schema {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}

	if a.Kind == b.Kind {
		switch a.Kind {
		case KindObject:
			return mergeObjects(a, b)
		case KindArray:
			return &Schema{Kind: KindArray, Items: Merge(a.Items, b.Items)}
		default:
			return a
		}
	}

	if bothNumeric(a.Kind, b.Kind) {
		return &Schema{Kind: KindNumber}
	}
	if a.Kind == KindNull {
		return b
	}
	if b.Kind == KindNull {
		return a
	}
	return &Schema{Kind: KindAny}
}

func bothNumeric(a, b Kind) bool {
	numeric := func(k Kind) bool { return k == KindInteger || k == KindNumber }
	return numeric(a) && numeric(b)
}

func mergeObjects(a, b *Schema) *Schema {
	merged := &Schema{
		Kind:       KindObject,
		Properties: make(map[string]*Schema, len(a.Properties)+len(b.Properties)),
	}

	for name, prop := range a.Properties {
		merged.Properties[name] = prop
	}
	for name, prop := range b.Properties {
		merged.Properties[name] = Merge(merged.Properties[name], prop)
	}

	for name := range merged.Properties {
		merged.PropOrder = append(merged.PropOrder, name)
	}
	sort.Strings(merged.PropOrder)

	for _, name := range merged.PropOrder {
		if a.IsRequired(name) && b.IsRequired(name) {
			merged.Required = append(merged.Required, name)
		}
	}
	return merged
}
