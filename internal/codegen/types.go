// Package codegen turns sampled resource nodes into emission-ready Go type
// definitions. Draft definitions compiled from an inferred schema pass
// through a normalization pipeline that canonicalizes field names, collapses
// protocol idioms onto shared base types, rewires references, and resolves
// names and imports before rendering.
package codegen

// DataCategory classifies a definition by the canonical field set it carries.
type DataCategory int

const (
	DataUnknown DataCategory = iota
	DataLink
	DataAction
	DataResource
	DataCollection
)

// String returns the canonical base type name for the category.
func (c DataCategory) String() string {
	switch c {
	case DataLink:
		return "Link"
	case DataAction:
		return "Action"
	case DataResource:
		return "Resource"
	case DataCollection:
		return "Collection"
	default:
		return "Unknown"
	}
}

// Wrap is the container shape around a field's base type.
type Wrap int

const (
	WrapNone Wrap = iota
	WrapList
	WrapMap
)

// TypeRef points at a builtin type, an externally owned symbol, or another
// definition in the same unit. In-unit references hold the definition itself
// so later renames propagate without bookkeeping.
type TypeRef struct {
	Name      string
	Def       *Definition
	Qualifier string
	Wrap      Wrap
}

// Builtin reports whether the reference resolves to a language builtin.
func (r TypeRef) Builtin() bool {
	return r.Def == nil && r.Qualifier == ""
}

// Target returns the referenced type name as it stands now.
func (r TypeRef) Target() string {
	if r.Def != nil {
		return r.Def.Name
	}
	return r.Name
}

// Field is one named member of a definition. Name is the sanitized snake
// form used by the categorization tables; JSONName is the wire name and goes
// into the serialization tag untouched.
type Field struct {
	Name     string
	JSONName string
	Type     TypeRef
	Optional bool
}

// Definition is one draft or final type of an output unit.
type Definition struct {
	Name        string
	Description string

	// Embedded base type. BaseQual carries its package qualifier when the
	// base is owned outside the unit.
	Base     string
	BaseQual string

	Fields []Field

	// ElementType names the member type a collection accessor returns.
	// Cross-result by design: in a pair unit the element's definitions
	// come from a separate synthesis call.
	ElementType string

	// URI is the path the sample was fetched from; rendered as a URL
	// accessor on the root definition.
	URI string

	Root     bool
	Category DataCategory
}

// fieldNames returns the set of canonical field names the definition holds.
func (d *Definition) fieldNames() map[string]struct{} {
	names := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		names[f.Name] = struct{}{}
	}
	return names
}

// dropFields removes every field whose canonical name is in the given set.
func (d *Definition) dropFields(names map[string]struct{}) {
	kept := d.Fields[:0]
	for _, f := range d.Fields {
		if _, ok := names[f.Name]; !ok {
			kept = append(kept, f)
		}
	}
	d.Fields = kept
}

// Import is one package import required by a rendered unit.
type Import struct {
	Path  string
	Alias string
}

// Result is the outcome of synthesizing one node: the rendered definition
// bodies, the imports they require, and the exported names in unit order.
type Result struct {
	Body    string
	Imports []Import
	Names   []string
}
