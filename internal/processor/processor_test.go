package processor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YADRO-KNS/sebastes/internal/codegen"
	"github.com/YADRO-KNS/sebastes/internal/scanner"
)

// chassisGraph builds a minimal scan result: a service root, a chassis
// collection hanging off it, and one chassis member.
func chassisGraph() []*scanner.Node {
	root := scanner.NewNode("ServiceRoot", map[string]any{
		"@odata.id":      "/redfish/v1/",
		"@odata.type":    "#ServiceRoot.v1_5_0.ServiceRoot",
		"Id":             "RootService",
		"Name":           "Root Service",
		"RedfishVersion": "1.6.0",
		"Chassis":        map[string]any{"@odata.id": "/redfish/v1/Chassis"},
	}, "/redfish/v1/", nil)

	coll := scanner.NewNode("ChassisCollection", map[string]any{
		"@odata.id":           "/redfish/v1/Chassis",
		"@odata.type":         "#ChassisCollection.ChassisCollection",
		"Name":                "Chassis Collection",
		"Members@odata.count": int64(1),
		"Members": []any{
			map[string]any{"@odata.id": "/redfish/v1/Chassis/1"},
		},
	}, "/redfish/v1/Chassis", root)

	elem := scanner.NewNode("Chassis", map[string]any{
		"@odata.id":   "/redfish/v1/Chassis/1",
		"@odata.type": "#Chassis.v1_10_0.Chassis",
		"Id":          "1",
		"Name":        "Chassis One",
		"ChassisType": "RackMount",
	}, "/redfish/v1/Chassis/1", coll)

	return []*scanner.Node{root, coll, elem}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestGenerateWritesLibraryTree(t *testing.T) {
	dir := t.TempDir()
	p := New(chassisGraph(), dir, Options{})

	require.NoError(t, p.Generate())
	assert.Empty(t, p.Problems())

	gomod := readFile(t, filepath.Join(dir, "go.mod"))
	assert.Equal(t, "module redfishlib\n\ngo 1.21\n", gomod)

	canonical := readFile(t, filepath.Join(dir, "redfish", "redfish.go"))
	assert.Contains(t, canonical, "package redfish")
	assert.Contains(t, canonical, "type DataManager struct")

	solo := readFile(t, filepath.Join(dir, "models", "service_root.go"))
	assert.Contains(t, solo, "// Code generated by sebastes. DO NOT EDIT.")
	assert.Contains(t, solo, "package models")
	assert.Contains(t, solo, "\"redfishlib/redfish\"")
	assert.Contains(t, solo, "type ServiceRoot struct")
	assert.Contains(t, solo, "redfish.Resource")
	assert.Contains(t, solo, "Chassis redfish.Link `json:\"Chassis\"`")
	assert.Contains(t, solo, `return "/redfish/v1/"`)
	assert.NotContains(t, solo, "OdataID")

	index := readFile(t, filepath.Join(dir, "models", "models.go"))
	assert.Contains(t, index, "// Package models holds the generated types for the scanned service.")
	assert.Contains(t, index, "//\tAction, ChassisCollectionChassis, Collection, DataManager, Link, Resource, ServiceRoot, ServiceRootChassisCollection")
	assert.Contains(t, index, `import "redfishlib/redfish"`)
	assert.Contains(t, index, "redfish.DataManager{},")
	assert.Contains(t, index, "ServiceRoot{},")
	assert.Contains(t, index, `"service_root_chassis_collection": {`)
}

func TestGenerateEmitsElementBeforeCollection(t *testing.T) {
	dir := t.TempDir()
	p := New(chassisGraph(), dir, Options{})
	require.NoError(t, p.Generate())

	unit := readFile(t, filepath.Join(dir, "models", "service_root_chassis_collection.go"))

	element := strings.Index(unit, "type ChassisCollectionChassis struct")
	collection := strings.Index(unit, "type ServiceRootChassisCollection struct")
	require.GreaterOrEqual(t, element, 0)
	require.GreaterOrEqual(t, collection, 0)
	assert.Less(t, element, collection)

	assert.Contains(t, unit, "redfish.Collection")
	assert.Contains(t, unit, "func (s ServiceRootChassisCollection) Element() ChassisCollectionChassis {")
	assert.Contains(t, unit, "ChassisType string `json:\"ChassisType\"`")
}

func TestGenerateRecordsManifest(t *testing.T) {
	p := New(chassisGraph(), t.TempDir(), Options{})
	require.NoError(t, p.Generate())

	manifest := p.Manifest()
	require.Len(t, manifest, 3)
	assert.Equal(t, "redfish", manifest[0].Unit)
	assert.Equal(t, []string{"DataManager", "Link", "Action", "Resource", "Collection"}, manifest[0].Names)
	assert.Equal(t, "service_root_chassis_collection", manifest[1].Unit)
	assert.Equal(t, []string{"ChassisCollectionChassis", "ServiceRootChassisCollection"}, manifest[1].Names)
	assert.Equal(t, "service_root", manifest[2].Unit)
	assert.Equal(t, []string{"ServiceRoot"}, manifest[2].Names)
}

func TestGenerateReportsProgress(t *testing.T) {
	type step struct {
		done, total int
		unit        string
	}
	var steps []step

	p := New(chassisGraph(), t.TempDir(), Options{
		OnUnit: func(done, total int, unit string) {
			steps = append(steps, step{done, total, unit})
		},
	})
	require.NoError(t, p.Generate())

	assert.Equal(t, []step{
		{1, 2, "service_root_chassis_collection"},
		{2, 2, "service_root"},
	}, steps)
}

// failingSynth fails exactly one node and delegates the rest.
type failingSynth struct {
	inner  synthesizer
	failOn string
}

func (f *failingSynth) Synthesize(node, child *scanner.Node) (*codegen.Result, error) {
	if node.FullName == f.failOn {
		return nil, errors.New("boom")
	}
	return f.inner.Synthesize(node, child)
}

func TestGenerateSkipsUnitWhenElementFails(t *testing.T) {
	dir := t.TempDir()
	p := New(chassisGraph(), dir, Options{})
	p.synth = &failingSynth{inner: p.synth, failOn: "ChassisCollectionChassis"}

	require.NoError(t, p.Generate())

	require.Len(t, p.Problems(), 1)
	assert.Equal(t, "/redfish/v1/Chassis/1", p.Problems()[0].URI)
	assert.Contains(t, p.Problems()[0].Description, "boom")

	_, err := os.Stat(filepath.Join(dir, "models", "service_root_chassis_collection.go"))
	assert.True(t, os.IsNotExist(err))

	// The solo unit is unaffected and the skipped unit never reaches the
	// index.
	assert.FileExists(t, filepath.Join(dir, "models", "service_root.go"))
	index := readFile(t, filepath.Join(dir, "models", "models.go"))
	assert.NotContains(t, index, "service_root_chassis_collection")
	require.Len(t, p.Manifest(), 2)
}

func TestGenerateSkipsUnitWhenCollectionFails(t *testing.T) {
	dir := t.TempDir()
	p := New(chassisGraph(), dir, Options{})
	p.synth = &failingSynth{inner: p.synth, failOn: "ServiceRootChassisCollection"}

	require.NoError(t, p.Generate())

	require.Len(t, p.Problems(), 1)
	assert.Equal(t, "/redfish/v1/Chassis", p.Problems()[0].URI)

	_, err := os.Stat(filepath.Join(dir, "models", "service_root_chassis_collection.go"))
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, filepath.Join(dir, "models", "service_root.go"))
}

func TestPlanUnitsPairsElementsWithCollections(t *testing.T) {
	nodes := chassisGraph()
	p := New(nodes, t.TempDir(), Options{})

	plans := p.planUnits()
	require.Len(t, plans, 2)

	assert.Same(t, nodes[1], plans[0].node)
	assert.Same(t, nodes[2], plans[0].child)
	assert.Same(t, nodes[0], plans[1].node)
	assert.Nil(t, plans[1].child)
}

func TestPlanUnitsSharedCollectionFallsBackToSolo(t *testing.T) {
	sample := map[string]any{
		"@odata.id":   "/redfish/v1/PowerSupplies/0",
		"@odata.type": "#PowerSupply.v1_0_0.PowerSupply",
	}
	coll := scanner.NewNode("PowerSupplyCollection", map[string]any{
		"@odata.id":           "/redfish/v1/PowerSupplies",
		"@odata.type":         "#PowerSupplyCollection.PowerSupplyCollection",
		"Members@odata.count": int64(0),
		"Members":             []any{},
	}, "/redfish/v1/PowerSupplies", nil)
	first := scanner.NewNode("PowerSupply", sample, "/redfish/v1/PowerSupplies/0", coll)
	second := scanner.NewNode("Power", sample, "/redfish/v1/PowerSupplies/Power", coll)

	p := New([]*scanner.Node{coll, first, second}, t.TempDir(), Options{})

	plans := p.planUnits()
	require.Len(t, plans, 2)

	assert.Same(t, coll, plans[0].node)
	assert.Same(t, first, plans[0].child)
	assert.Same(t, second, plans[1].node)
	assert.Nil(t, plans[1].child)
}

func TestGenerateHonorsModulePath(t *testing.T) {
	dir := t.TempDir()
	p := New(chassisGraph(), dir, Options{ModulePath: "example.com/bmc/lib"})
	require.NoError(t, p.Generate())

	gomod := readFile(t, filepath.Join(dir, "go.mod"))
	assert.Equal(t, "module example.com/bmc/lib\n\ngo 1.21\n", gomod)

	unit := readFile(t, filepath.Join(dir, "models", "service_root.go"))
	assert.Contains(t, unit, "\"example.com/bmc/lib/redfish\"")
}

func TestGenerateReplacesStaleModels(t *testing.T) {
	dir := t.TempDir()
	modelsDir := filepath.Join(dir, "models")
	require.NoError(t, os.MkdirAll(modelsDir, 0755))
	stale := filepath.Join(modelsDir, "stale_unit.go")
	require.NoError(t, os.WriteFile(stale, []byte("package models\n"), 0644))

	p := New(chassisGraph(), dir, Options{})
	require.NoError(t, p.Generate())

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, filepath.Join(modelsDir, "service_root.go"))
}
