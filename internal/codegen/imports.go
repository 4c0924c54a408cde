package codegen

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// canonicalQualifier is the package every canonical base type is owned by.
// Collapsed definitions and rewritten references qualify through it.
const canonicalQualifier = "redfish"

// resolveImports collects the package imports the unit's definitions
// require. The only symbols owned outside a unit are the canonical base
// types, so qualifiers resolve against the emitted module's own packages.
func resolveImports(defs []*Definition, modulePath string) []Import {
	qualifiers := make(map[string]struct{})
	for _, def := range defs {
		if def.BaseQual != "" {
			qualifiers[def.BaseQual] = struct{}{}
		}
		for _, f := range def.Fields {
			if f.Type.Qualifier != "" {
				qualifiers[f.Type.Qualifier] = struct{}{}
			}
		}
	}

	imports := make([]Import, 0, len(qualifiers))
	for qual := range qualifiers {
		imports = append(imports, Import{Path: qualifierPath(modulePath, qual)})
	}
	sort.Slice(imports, func(i, j int) bool { return imports[i].Path < imports[j].Path })
	return imports
}

func qualifierPath(modulePath, qualifier string) string {
	return strings.TrimSuffix(modulePath, "/") + "/" + qualifier
}

// MergeImports folds the import lists of a unit's synthesis results into
// one, deduplicating by path. Distinct paths sharing a base name get a
// numbered alias; with canonical types all owned by a single package this
// stays a safeguard rather than a working path, which is what keeps merged
// bodies valid without requalification.
func MergeImports(lists ...[]Import) []Import {
	seen := make(map[string]struct{})
	names := make(map[string]string)
	var merged []Import

	for _, list := range lists {
		for _, imp := range list {
			if _, ok := seen[imp.Path]; ok {
				continue
			}
			seen[imp.Path] = struct{}{}

			name := imp.Alias
			if name == "" {
				name = path.Base(imp.Path)
			}
			if owner, ok := names[name]; ok && owner != imp.Path {
				base := name
				for i := 2; ; i++ {
					candidate := fmt.Sprintf("%s%d", base, i)
					if _, ok := names[candidate]; !ok {
						name = candidate
						imp.Alias = candidate
						break
					}
				}
			}
			names[name] = imp.Path
			merged = append(merged, imp)
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Path < merged[j].Path })
	return merged
}
