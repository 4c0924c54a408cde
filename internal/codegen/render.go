package codegen

import (
	"fmt"
	"strings"
)

// initialisms keeps the usual abbreviations upper-cased in generated field
// names.
var initialisms = map[string]string{
	"id":   "ID",
	"url":  "URL",
	"uri":  "URI",
	"api":  "API",
	"ip":   "IP",
	"http": "HTTP",
	"json": "JSON",
	"uuid": "UUID",
	"mac":  "MAC",
}

type renderer struct {
	buf    strings.Builder
	indent int
}

func (r *renderer) writeLine(format string, args ...any) {
	r.buf.WriteString(strings.Repeat("\t", r.indent))
	fmt.Fprintf(&r.buf, format, args...)
	r.buf.WriteByte('\n')
}

func (r *renderer) blank() {
	r.buf.WriteByte('\n')
}

// render serializes the definitions in order, dependencies before the root,
// and returns the unit body plus the exported names it declares.
func render(defs []*Definition) (string, []string) {
	r := &renderer{}
	names := make([]string, 0, len(defs))
	for i, def := range defs {
		if i > 0 {
			r.blank()
		}
		r.writeDefinition(def)
		names = append(names, def.Name)
	}
	return r.buf.String(), names
}

func (r *renderer) writeDefinition(def *Definition) {
	if def.Description != "" {
		r.writeLine("// %s - %s", def.Name, def.Description)
	}
	r.writeLine("type %s struct {", def.Name)
	r.indent++
	if def.Base != "" {
		if def.BaseQual != "" {
			r.writeLine("%s.%s", def.BaseQual, def.Base)
		} else {
			r.writeLine("%s", def.Base)
		}
	}
	for _, f := range def.Fields {
		r.writeField(f)
	}
	r.indent--
	r.writeLine("}")

	if def.URI != "" {
		recv := receiverName(def.Name)
		r.blank()
		r.writeLine("// URL returns the path the resource was sampled from.")
		r.writeLine("func (%s %s) URL() string {", recv, def.Name)
		r.indent++
		r.writeLine("return %q", def.URI)
		r.indent--
		r.writeLine("}")
	}

	if def.ElementType != "" {
		recv := receiverName(def.Name)
		r.blank()
		r.writeLine("// Element returns the zero value of the collection's member type.")
		r.writeLine("func (%s %s) Element() %s {", recv, def.Name, def.ElementType)
		r.indent++
		r.writeLine("return %s{}", def.ElementType)
		r.indent--
		r.writeLine("}")
	}
}

func (r *renderer) writeField(f Field) {
	tag := f.JSONName
	if tag == "" {
		tag = "-"
	}
	if f.Optional {
		tag += ",omitempty"
	}
	r.writeLine("%s %s `json:%q`", goFieldName(f.Name), typeExpr(f), tag)
}

// typeExpr builds the Go type expression for a field: the wrap container
// around the resolved target, with optional scalar fields as pointers.
func typeExpr(f Field) string {
	target := f.Type.Target()
	if f.Type.Qualifier != "" {
		target = f.Type.Qualifier + "." + target
	}
	switch f.Type.Wrap {
	case WrapList:
		return "[]" + target
	case WrapMap:
		return "map[string]" + target
	}
	if f.Optional && target != "any" {
		return "*" + target
	}
	return target
}

// goFieldName maps a canonical snake name onto an exported Go field name.
func goFieldName(snake string) string {
	var b strings.Builder
	for _, part := range strings.Split(snake, "_") {
		if part == "" {
			continue
		}
		if upper, ok := initialisms[strings.ToLower(part)]; ok {
			b.WriteString(upper)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}

	name := b.String()
	if name == "" {
		return "Field"
	}
	if name[0] >= '0' && name[0] <= '9' {
		return "Field" + name
	}
	return name
}

func receiverName(typeName string) string {
	return strings.ToLower(typeName[:1])
}
