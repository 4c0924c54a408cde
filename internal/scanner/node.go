// Package scanner walks a Redfish resource graph and collects one sampled
// node per distinct resource type it can reach.
package scanner

import (
	"fmt"
	"strings"

	utilstrings "github.com/YADRO-KNS/sebastes/internal/util/strings"
)

// Category classifies a scanned node by its name, parent and marker fields.
type Category int

const (
	CategoryResource Category = iota
	CategoryCollection
	CategoryElement
	CategoryUnknown
)

// String returns the category label used in scan reports.
func (c Category) String() string {
	switch c {
	case CategoryResource:
		return "Resource"
	case CategoryCollection:
		return "Collection"
	case CategoryElement:
		return "Element"
	default:
		return "???"
	}
}

// Problem records a localized, non-fatal failure. Problems are aggregated and
// reported at the end of a run; they never abort the run itself.
type Problem struct {
	URI         string
	Description string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s - %s", p.URI, p.Description)
}

// Node is one observed API resource: its sampled payload plus naming state
// derived from it. The parent reference is reporting-only: it feeds naming
// and categorization and is never used for traversal or ownership. Nodes are
// owned exclusively by the scanner's discovered collection.
type Node struct {
	Name   string
	Sample map[string]any
	URI    string
	Parent *Node

	// Derived at construction.
	FullName    string
	FileName    string
	Description string
}

// NewNode builds a node and computes its derived naming fields.
func NewNode(name string, sample map[string]any, uri string, parent *Node) *Node {
	n := &Node{
		Name:   name,
		Sample: sample,
		URI:    uri,
		Parent: parent,
	}
	n.FullName = n.fullName()
	n.FileName = utilstrings.ToSnakeCase(n.FullName)
	n.Description = describeSample(sample)
	return n
}

// fullName concatenates the immediate parent's name with this node's name.
// Only one level is used; full_name is the node's identity and dedup key.
func (n *Node) fullName() string {
	if n.Parent != nil {
		return n.Parent.Name + n.Name
	}
	return n.Name
}

// Category computes the node's classification:
//
//   - Collection: the name contains the word "collection"
//   - Element: the parent is a Collection and this name is a substring of its name
//   - Resource: the sample carries the identity and type marker fields
//   - Unknown: none of the above
func (n *Node) Category() Category {
	if strings.Contains(strings.ToLower(n.Name), "collection") {
		return CategoryCollection
	}
	if n.Parent != nil && n.Parent.Category() == CategoryCollection && strings.Contains(n.Parent.Name, n.Name) {
		return CategoryElement
	}
	if _, ok := n.Sample["@odata.id"]; ok {
		if _, ok := n.Sample["@odata.type"]; ok {
			return CategoryResource
		}
	}
	return CategoryUnknown
}

func (n *Node) String() string {
	return fmt.Sprintf("%s - %s", n.Category(), n.FullName)
}

// describeSample assembles human-readable text from the payload's Name and
// Description fields, if present.
func describeSample(sample map[string]any) string {
	name, _ := sample["Name"].(string)
	desc, _ := sample["Description"].(string)

	switch {
	case name != "" && desc != "":
		return fmt.Sprintf("%s: %s", name, desc)
	case name != "":
		return name
	default:
		return desc
	}
}
