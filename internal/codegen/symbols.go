package codegen

import "fmt"

// SymbolTable hands out unit-unique type names. One fresh table per output
// unit; no state survives between units.
type SymbolTable struct {
	taken map[string]struct{}
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{taken: make(map[string]struct{})}
}

// Claim reserves a name, resolving collisions with a deterministic suffix:
// "Model" first, then "Model2", "Model3", and so on. Collisions never fail.
func (t *SymbolTable) Claim(name string) string {
	if t.reserve(name) {
		return name
	}
	if withSuffix := name + "Model"; t.reserve(withSuffix) {
		return withSuffix
	}
	for i := 2; ; i++ {
		if withSuffix := fmt.Sprintf("%sModel%d", name, i); t.reserve(withSuffix) {
			return withSuffix
		}
	}
}

func (t *SymbolTable) reserve(name string) bool {
	if _, ok := t.taken[name]; ok {
		return false
	}
	t.taken[name] = struct{}{}
	return true
}

// dedupeNames assigns every definition a unit-unique name. The walk runs in
// reverse so the root, rendered last, claims its name first and keeps it;
// references follow automatically since they hold the definitions themselves.
func dedupeNames(defs []*Definition, table *SymbolTable) {
	for i := len(defs) - 1; i >= 0; i-- {
		defs[i].Name = table.Claim(defs[i].Name)
	}
}
