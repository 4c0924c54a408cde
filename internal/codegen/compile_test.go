package codegen

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YADRO-KNS/sebastes/internal/schema"
)

func inferred(t *testing.T, raw string) *schema.Schema {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var value any
	require.NoError(t, dec.Decode(&value))
	return schema.Infer(value)
}

func TestCompileFlatObject(t *testing.T) {
	defs := Compile(inferred(t, `{
		"@odata.id": "/redfish/v1/Chassis/1",
		"Name": "Chassis",
		"Slots": 8,
		"Reading": 24.5,
		"Enabled": true
	}`), "Chassis")

	require.Len(t, defs, 1)
	root := defs[0]
	assert.True(t, root.Root)
	assert.Equal(t, "Chassis", root.Name)

	expected := []struct {
		name     string
		jsonName string
		typeName string
	}{
		{"_odata_id", "@odata.id", "string"},
		{"enabled", "Enabled", "bool"},
		{"name", "Name", "string"},
		{"reading", "Reading", "float64"},
		{"slots", "Slots", "int64"},
	}
	require.Len(t, root.Fields, len(expected))
	for i, want := range expected {
		assert.Equal(t, want.name, root.Fields[i].Name)
		assert.Equal(t, want.jsonName, root.Fields[i].JSONName)
		assert.Equal(t, want.typeName, root.Fields[i].Type.Name)
		assert.True(t, root.Fields[i].Type.Builtin())
		assert.False(t, root.Fields[i].Optional)
	}
}

func TestCompileNestedObject(t *testing.T) {
	defs := Compile(inferred(t, `{"Status": {"State": "Enabled", "Health": "OK"}}`), "Chassis")

	require.Len(t, defs, 2)
	nested, root := defs[0], defs[1]

	assert.Equal(t, "ChassisStatus", nested.Name)
	assert.False(t, nested.Root)

	require.Len(t, root.Fields, 1)
	assert.Same(t, nested, root.Fields[0].Type.Def)
	assert.Equal(t, WrapNone, root.Fields[0].Type.Wrap)
}

func TestCompileArrayOfObjects(t *testing.T) {
	defs := Compile(inferred(t, `{"Fans": [{"Name": "Fan1"}, {"Name": "Fan2"}]}`), "Thermal")

	require.Len(t, defs, 2)
	items, root := defs[0], defs[1]

	assert.Equal(t, "ThermalFans", items.Name)
	require.Len(t, root.Fields, 1)
	assert.Same(t, items, root.Fields[0].Type.Def)
	assert.Equal(t, WrapList, root.Fields[0].Type.Wrap)
}

func TestCompileContainerEdges(t *testing.T) {
	defs := Compile(inferred(t, `{"Oem": {}, "Tags": [], "Values": [1, "two"]}`), "Thing")

	require.Len(t, defs, 1)
	fields := defs[0].Fields

	// Oem: object without properties.
	assert.Equal(t, TypeRef{Name: "any", Wrap: WrapMap}, fields[0].Type)
	// Tags: array with no observed element.
	assert.Equal(t, TypeRef{Name: "any", Wrap: WrapList}, fields[1].Type)
	// Values: mixed element kinds.
	assert.Equal(t, TypeRef{Name: "any", Wrap: WrapList}, fields[2].Type)
}

func TestCompileOptionalFromMergedItems(t *testing.T) {
	defs := Compile(inferred(t, `{"Fans": [
		{"Name": "Fan1", "Reading": 2000},
		{"Name": "Fan2"}
	]}`), "Thermal")

	require.Len(t, defs, 2)
	items := defs[0]
	require.Len(t, items.Fields, 2)

	assert.Equal(t, "name", items.Fields[0].Name)
	assert.False(t, items.Fields[0].Optional)
	assert.Equal(t, "reading", items.Fields[1].Name)
	assert.True(t, items.Fields[1].Optional)
}

func TestCompileNonObjectRoot(t *testing.T) {
	defs := Compile(inferred(t, `[{"Name": "x"}]`), "Batch")

	require.Len(t, defs, 2)
	items, root := defs[0], defs[1]

	assert.Equal(t, "BatchItem", items.Name)
	assert.True(t, root.Root)
	require.Len(t, root.Fields, 1)
	assert.Equal(t, "root", root.Fields[0].Name)
	assert.Empty(t, root.Fields[0].JSONName)
	assert.Same(t, items, root.Fields[0].Type.Def)
	assert.Equal(t, WrapList, root.Fields[0].Type.Wrap)
}

func TestSanitizeFieldName(t *testing.T) {
	tests := []struct {
		wire     string
		expected string
	}{
		{"@odata.id", "_odata_id"},
		{"@odata.etag", "_odata_etag"},
		{"Members@odata.count", "members_odata_count"},
		{"Members@odata.nextLink", "members_odata_next_link"},
		{"@Redfish.ActionInfo", "__redfish__action_info"},
		{"Name", "name"},
		{"ChassisType", "chassis_type"},
		{"#Chassis.Reset", "__chassis__reset"},
		{"target", "target"},
	}

	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeFieldName(tt.wire))
		})
	}
}

func TestTypeNameSegment(t *testing.T) {
	tests := []struct {
		wire     string
		expected string
	}{
		{"Status", "Status"},
		{"status", "Status"},
		{"@odata.foo", "OdataFoo"},
		{"PCIeDevices", "PCIeDevices"},
		{"Members@odata.count", "MembersOdataCount"},
		{"@@@", "Field"},
	}

	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			assert.Equal(t, tt.expected, typeNameSegment(tt.wire))
		})
	}
}
