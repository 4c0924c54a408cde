package codegen

import (
	"strings"
	"unicode"

	"github.com/YADRO-KNS/sebastes/internal/schema"
	utilstrings "github.com/YADRO-KNS/sebastes/internal/util/strings"
)

// Compile turns an inferred schema into draft definitions. Nested objects
// become their own definitions named <Owner><Field>, appended before their
// owner so the slice is dependency-first with the root definition last.
// Samples are fetched as JSON objects; a non-object schema still compiles,
// to a single-field passthrough wrapper.
func Compile(s *schema.Schema, rootName string) []*Definition {
	c := &compiler{}
	if s == nil {
		s = &schema.Schema{Kind: schema.KindObject}
	}

	if s.Kind == schema.KindObject {
		root := c.defineObject(rootName, s)
		root.Root = true
		return c.defs
	}

	root := &Definition{
		Name:   rootName,
		Root:   true,
		Fields: []Field{{Name: "root", Type: c.typeFor(rootName, "item", s)}},
	}
	c.defs = append(c.defs, root)
	return c.defs
}

type compiler struct {
	defs []*Definition
}

func (c *compiler) defineObject(name string, s *schema.Schema) *Definition {
	def := &Definition{Name: name}
	for _, prop := range s.PropOrder {
		def.Fields = append(def.Fields, Field{
			Name:     sanitizeFieldName(prop),
			JSONName: prop,
			Type:     c.typeFor(name, prop, s.Properties[prop]),
			Optional: !s.IsRequired(prop),
		})
	}
	c.defs = append(c.defs, def)
	return def
}

func (c *compiler) typeFor(owner, field string, s *schema.Schema) TypeRef {
	switch s.Kind {
	case schema.KindObject:
		if len(s.Properties) == 0 {
			return TypeRef{Name: "any", Wrap: WrapMap}
		}
		return TypeRef{Def: c.defineObject(owner+typeNameSegment(field), s)}
	case schema.KindArray:
		if s.Items == nil {
			return TypeRef{Name: "any", Wrap: WrapList}
		}
		inner := c.typeFor(owner, field, s.Items)
		if inner.Wrap != WrapNone {
			// Nested containers flatten; one wrap level is expressible.
			return TypeRef{Name: "any", Wrap: WrapList}
		}
		inner.Wrap = WrapList
		return inner
	case schema.KindString:
		return TypeRef{Name: "string"}
	case schema.KindInteger:
		return TypeRef{Name: "int64"}
	case schema.KindNumber:
		return TypeRef{Name: "float64"}
	case schema.KindBoolean:
		return TypeRef{Name: "bool"}
	default:
		return TypeRef{Name: "any"}
	}
}

// sanitizeFieldName maps a wire name onto an identifier-safe snake form:
// every non-alphanumeric byte becomes an underscore, then the result is
// snake-cased. "@odata.id" becomes "_odata_id", "Members@odata.count"
// becomes "members_odata_count".
func sanitizeFieldName(wire string) string {
	var b strings.Builder
	for _, r := range wire {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return utilstrings.ToSnakeCase(b.String())
}

// typeNameSegment derives the nested definition name part from a wire field
// name, keeping the original casing of alphanumeric runs.
func typeNameSegment(wire string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range wire {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "Field"
	}
	return b.String()
}
