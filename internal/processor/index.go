package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// indexDocWidth caps the name rows in the package doc.
const indexDocWidth = 120

// writeIndex emits models/models.go: the package doc listing every exported
// model and the registry grouping them by unit in emission order.
func (p *Processor) writeIndex() error {
	var all []string
	for _, entry := range p.manifest {
		all = append(all, entry.Names...)
	}
	sort.Strings(all)

	var b strings.Builder
	b.WriteString(generatedHeader)
	b.WriteString("// Package models holds the generated types for the scanned service.\n")
	b.WriteString("//\n")
	b.WriteString("// Exported models:\n")
	for _, line := range wrapNames(all, indexDocWidth) {
		fmt.Fprintf(&b, "//\t%s\n", line)
	}
	b.WriteString("package models\n\n")
	fmt.Fprintf(&b, "import %q\n\n", strings.TrimSuffix(p.modulePath, "/")+"/redfish")
	b.WriteString("// Registry indexes every generated model by output unit.\n")
	b.WriteString("var Registry = map[string][]any{\n")
	for _, entry := range p.manifest {
		fmt.Fprintf(&b, "\t%q: {\n", entry.Unit)
		for _, name := range entry.Names {
			if entry.Unit == "redfish" {
				fmt.Fprintf(&b, "\t\tredfish.%s{},\n", name)
			} else {
				fmt.Fprintf(&b, "\t\t%s{},\n", name)
			}
		}
		b.WriteString("\t},\n")
	}
	b.WriteString("}\n")

	path := filepath.Join(p.outputDir, "models", "models.go")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write models index: %w", err)
	}
	return nil
}

// wrapNames joins names with ", " and breaks into lines no wider than width.
// Every line but the last keeps its trailing comma.
func wrapNames(names []string, width int) []string {
	var lines []string
	var line string
	for _, name := range names {
		if line == "" {
			line = name
			continue
		}
		if len(line)+len(", ")+len(name) > width {
			lines = append(lines, line+",")
			line = name
			continue
		}
		line += ", " + name
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
