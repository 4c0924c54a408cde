package processor

import _ "embed"

// canonicalSource is the fixed redfish package copied into every output
// tree: the four canonical base types plus the DataManager client.
//
//go:embed assets/redfish.go.txt
var canonicalSource string

// generatedHeader marks every emitted file as tool-owned.
const generatedHeader = "// Code generated by sebastes. DO NOT EDIT.\n\n"

// DefaultModulePath names the emitted library when no module path is
// configured.
const DefaultModulePath = "redfishlib"

// canonicalNames is the fixed manifest entry for the canonical package.
var canonicalNames = []string{"DataManager", "Link", "Action", "Resource", "Collection"}
