package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolTableClaim(t *testing.T) {
	table := NewSymbolTable()

	assert.Equal(t, "Manager", table.Claim("Manager"))
	assert.Equal(t, "ManagerModel", table.Claim("Manager"))
	assert.Equal(t, "ManagerModel2", table.Claim("Manager"))
	assert.Equal(t, "ManagerModel3", table.Claim("Manager"))

	// Other names are unaffected by earlier claims.
	assert.Equal(t, "Chassis", table.Claim("Chassis"))
}

func TestSymbolTableClaimOccupiedSuffix(t *testing.T) {
	table := NewSymbolTable()

	assert.Equal(t, "ManagerModel", table.Claim("ManagerModel"))
	assert.Equal(t, "Manager", table.Claim("Manager"))
	// The plain suffix is taken; numbering starts at 2.
	assert.Equal(t, "ManagerModel2", table.Claim("Manager"))
}

func TestDedupeNamesRootKeepsName(t *testing.T) {
	nested := &Definition{Name: "Manager"}
	root := &Definition{Name: "Manager", Root: true}
	defs := []*Definition{nested, root}

	dedupeNames(defs, NewSymbolTable())

	assert.Equal(t, "ManagerModel", nested.Name)
	assert.Equal(t, "Manager", root.Name)
}

func TestDedupeNamesFreshTablePerUnit(t *testing.T) {
	first := []*Definition{{Name: "Manager", Root: true}}
	second := []*Definition{{Name: "Manager", Root: true}}

	dedupeNames(first, NewSymbolTable())
	dedupeNames(second, NewSymbolTable())

	assert.Equal(t, "Manager", first[0].Name)
	assert.Equal(t, "Manager", second[0].Name)
}
