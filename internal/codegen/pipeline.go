package codegen

import (
	"fmt"
	"strings"

	"github.com/YADRO-KNS/sebastes/internal/scanner"
	"github.com/YADRO-KNS/sebastes/internal/schema"
)

// replaceWords maps protocol-specific field manglings onto canonical names.
// Applied as ordered substring replacements; the generic double-underscore
// collapse must come last.
var replaceWords = [...][2]string{
	{"_odata_etag", "odata_etag"},
	{"_odata_id", "odata_id"},
	{"_odata_context", "odata_context"},
	{"_odata_type", "odata_type"},
	{"__redfish__action_info", "redfish_action_info"},
	{"__", "_"},
}

// categoryFields lists the field set that makes a definition a member of a
// category. Checked in order; a later match overrides an earlier one, so a
// collection outranks the resource and link shapes it also satisfies.
var categoryFields = []struct {
	category DataCategory
	required []string
}{
	{DataLink, []string{"odata_id"}},
	{DataAction, []string{"target"}},
	{DataResource, []string{"odata_id", "odata_type"}},
	{DataCollection, []string{"odata_id", "odata_type", "members_odata_count", "members"}},
}

// optionalFields lists the category-specific fields a collapsed definition
// sheds along with its required set; they all live on the canonical base.
var optionalFields = map[DataCategory][]string{
	DataAction:     {"redfish_action_info"},
	DataResource:   {"id", "odata_context", "description", "name", "odata_etag"},
	DataCollection: {"id", "odata_context", "description", "name", "odata_etag", "members_odata_next_link"},
}

// Synthesizer turns one scanned node into an emission-ready Result. It holds
// only immutable configuration; every Synthesize call builds its state,
// symbol table included, from scratch.
type Synthesizer struct {
	// ModulePath is the module path of the emitted library; canonical type
	// imports resolve against it.
	ModulePath string
}

func NewSynthesizer(modulePath string) *Synthesizer {
	return &Synthesizer{ModulePath: modulePath}
}

// Synthesize compiles the node's sample into definitions and runs the
// normalization pipeline over them. A supplied child marks a collection and
// its paired element type. Failures never escape the caller's unit: the
// returned error attributes the node and is recorded as a problem upstream.
func (s *Synthesizer) Synthesize(node, child *scanner.Node) (*Result, error) {
	defs := Compile(schema.Infer(node.Sample), node.FullName)

	canonicalizeFields(defs)
	categorize(defs)
	collapse(defs)
	rewriteReferences(defs)
	defs = dropCollapsedWrappers(defs)

	attachElement(defs, child)
	attachOrigin(defs, node)
	if err := renameRoot(defs, node.FullName); err != nil {
		return nil, err
	}
	defs = elideDuplicateRoot(defs)

	dedupeNames(defs, NewSymbolTable())
	imports := resolveImports(defs, s.ModulePath)
	body, names := render(defs)

	return &Result{Body: body, Imports: imports, Names: names}, nil
}

// canonicalizeFields renames every field through the replacement table so
// categorization and collapsing operate on canonical names.
func canonicalizeFields(defs []*Definition) {
	for _, def := range defs {
		for i := range def.Fields {
			name := def.Fields[i].Name
			for _, rw := range replaceWords {
				name = strings.ReplaceAll(name, rw[0], rw[1])
			}
			def.Fields[i].Name = name
		}
	}
}

// categorize assigns each definition the last category whose required field
// set it satisfies.
func categorize(defs []*Definition) {
	for _, def := range defs {
		names := def.fieldNames()
		for _, entry := range categoryFields {
			if containsAll(names, entry.required) {
				def.Category = entry.category
			}
		}
	}
}

func containsAll(names map[string]struct{}, required []string) bool {
	for _, name := range required {
		if _, ok := names[name]; !ok {
			return false
		}
	}
	return true
}

// collapse strips every categorized definition's defining and category
// optional fields and replaces its base with the shared canonical type.
func collapse(defs []*Definition) {
	for _, def := range defs {
		if def.Category == DataUnknown {
			continue
		}
		strip := make(map[string]struct{})
		for _, name := range requiredFields(def.Category) {
			strip[name] = struct{}{}
		}
		for _, name := range optionalFields[def.Category] {
			strip[name] = struct{}{}
		}
		def.dropFields(strip)
		def.Base = def.Category.String()
		def.BaseQual = canonicalQualifier
	}
}

func requiredFields(category DataCategory) []string {
	for _, entry := range categoryFields {
		if entry.category == category {
			return entry.required
		}
	}
	return nil
}

// rewriteReferences re-points every field referencing a collapsed definition
// at its canonical base type, preserving the container wrap.
func rewriteReferences(defs []*Definition) {
	for _, def := range defs {
		for i := range def.Fields {
			ref := def.Fields[i].Type
			if ref.Def == nil || ref.Def.Category == DataUnknown {
				continue
			}
			def.Fields[i].Type = TypeRef{
				Name:      ref.Def.Category.String(),
				Qualifier: canonicalQualifier,
				Wrap:      ref.Wrap,
			}
		}
	}
}

// dropCollapsedWrappers removes link and action shaped definitions; after
// reference rewriting nothing points at them and emitting them would litter
// the library with empty wrapper types. The root survives regardless.
func dropCollapsedWrappers(defs []*Definition) []*Definition {
	kept := defs[:0]
	for _, def := range defs {
		if !def.Root && (def.Category == DataLink || def.Category == DataAction) {
			continue
		}
		kept = append(kept, def)
	}
	return kept
}

// attachElement declares the paired child's type as the element type of the
// root collection.
func attachElement(defs []*Definition, child *scanner.Node) {
	root := findRoot(defs)
	if root == nil || child == nil || root.Category != DataCollection {
		return
	}
	root.ElementType = child.FullName
}

// attachOrigin records the node's description and source URI on the root so
// the emitted type can report where it came from without a live fetch.
func attachOrigin(defs []*Definition, node *scanner.Node) {
	root := findRoot(defs)
	if root == nil {
		return
	}
	root.Description = node.Description
	root.URI = node.URI
}

// renameRoot pins the root definition to exactly the node's full name so
// callers can look it up deterministically. Walked backward: the root sits
// last in compile order.
func renameRoot(defs []*Definition, fullName string) error {
	for i := len(defs) - 1; i >= 0; i-- {
		if strings.EqualFold(defs[i].Name, fullName) {
			defs[i].Name = fullName
			defs[i].Root = true
			return nil
		}
	}
	return fmt.Errorf("no root definition matching %q", fullName)
}

// elideDuplicateRoot drops a root that is a transparent single-field wrapper
// around a same-named definition: the target absorbs the wrapper's identity,
// references to the wrapper are redirected, and inheriting from the wrapper
// falls back to the default base, since single-value wrappers cannot be
// embedded.
func elideDuplicateRoot(defs []*Definition) []*Definition {
	root := findRoot(defs)
	if root == nil || root.Base != "" || len(root.Fields) != 1 {
		return defs
	}
	ref := root.Fields[0].Type
	if ref.Def == nil || ref.Wrap != WrapNone {
		return defs
	}
	target := ref.Def
	if canonicalTypeName(target.Name) != canonicalTypeName(root.Name) {
		return defs
	}

	wrapperName := root.Name
	for _, def := range defs {
		if def.Base == wrapperName && def.BaseQual == "" {
			def.Base = ""
		}
		for i := range def.Fields {
			if def.Fields[i].Type.Def == root {
				def.Fields[i].Type.Def = target
			}
		}
	}

	target.Name = wrapperName
	target.Root = true
	target.Description = root.Description
	target.URI = root.URI
	target.ElementType = root.ElementType

	kept := make([]*Definition, 0, len(defs)-1)
	for _, def := range defs {
		if def != root {
			kept = append(kept, def)
		}
	}
	return kept
}

// canonicalTypeName strips the deterministic dedup decorations from a type
// name for duplicate-root matching.
func canonicalTypeName(name string) string {
	name = strings.TrimRight(name, "0123456789")
	name = strings.TrimSuffix(name, "Model")
	return strings.ToLower(name)
}

func findRoot(defs []*Definition) *Definition {
	for _, def := range defs {
		if def.Root {
			return def
		}
	}
	return nil
}
