package schema

import (
	"strings"
)

const indentUnit = "  "

// MarshalCedar renders the fragment in the human readable Cedar schema
// syntax. Output is deterministic: namespaces, declarations and attributes
// are sorted by name.
func (f *Fragment) MarshalCedar() []byte {
	w := &writer{}
	first := true
	for _, name := range f.NamespaceNames() {
		ns := f.Namespaces[name]
		if !first {
			w.line(0, "")
		}
		first = false
		if name == "" {
			w.declarations(0, ns)
			continue
		}
		w.annotations(0, ns.Annotations)
		w.line(0, "namespace "+name+" {")
		w.declarations(1, ns)
		w.line(0, "}")
	}
	return []byte(w.String())
}

type writer struct {
	strings.Builder
}

func (w *writer) line(depth int, text string) {
	if text != "" {
		w.WriteString(strings.Repeat(indentUnit, depth))
		w.WriteString(text)
	}
	w.WriteByte('\n')
}

func (w *writer) declarations(depth int, ns *Namespace) {
	separate := false
	blank := func() {
		if separate {
			w.line(0, "")
		}
		separate = true
	}
	for _, name := range sortedKeys(ns.CommonTypes) {
		blank()
		t := ns.CommonTypes[name]
		w.annotations(depth, t.Annotations)
		w.line(depth, "type "+name+" = "+w.typeText(depth, t.Type)+";")
	}
	for _, name := range sortedKeys(ns.EntityTypes) {
		blank()
		w.entity(depth, name, ns.EntityTypes[name])
	}
	for _, name := range sortedKeys(ns.Actions) {
		blank()
		w.action(depth, name, ns.Actions[name])
	}
}

func (w *writer) annotations(depth int, annotations Annotations) {
	for _, name := range sortedKeys(annotations) {
		value := annotations[name]
		if value == "" {
			w.line(depth, "@"+name)
			continue
		}
		w.line(depth, "@"+name+"("+Quote(value)+")")
	}
}

func (w *writer) entity(depth int, name string, e *EntityType) {
	w.annotations(depth, e.Annotations)
	text := "entity " + name
	if e.IsEnum() {
		quoted := make([]string, len(e.Enum))
		for i, choice := range e.Enum {
			quoted[i] = Quote(choice)
		}
		w.line(depth, text+" enum ["+strings.Join(quoted, ", ")+"];")
		return
	}
	if len(e.MemberOfTypes) > 0 {
		text += " in [" + strings.Join(e.MemberOfTypes, ", ") + "]"
	}
	if !e.Shape.IsEmptyRecord() {
		text += " = " + w.typeText(depth, e.Shape)
	}
	if e.Tags != nil {
		text += " tags " + w.typeText(depth, e.Tags)
	}
	w.line(depth, text+";")
}

func (w *writer) action(depth int, name string, a *Action) {
	w.annotations(depth, a.Annotations)
	text := "action " + Quote(name)
	if len(a.MemberOf) > 0 {
		refs := make([]string, len(a.MemberOf))
		for i, ref := range a.MemberOf {
			refs[i] = Quote(ref.ID)
			if ref.Type != "" {
				refs[i] = ref.Type + Separator + refs[i]
			}
		}
		text += " in [" + strings.Join(refs, ", ") + "]"
	}
	if a.AppliesTo == nil {
		w.line(depth, text+";")
		return
	}
	w.line(depth, text+" appliesTo {")
	inner := indentUnit
	var parts []string
	parts = append(parts, inner+"principal: ["+strings.Join(a.AppliesTo.PrincipalTypes, ", ")+"]")
	parts = append(parts, inner+"resource: ["+strings.Join(a.AppliesTo.ResourceTypes, ", ")+"]")
	if a.AppliesTo.Context != nil {
		parts = append(parts, inner+"context: "+w.typeText(depth+1, a.AppliesTo.Context))
	}
	for i, part := range parts {
		if i < len(parts)-1 {
			part += ","
		}
		w.line(depth, part)
	}
	w.line(depth, "};")
}

// typeText renders t; records span several lines indented one level below depth.
func (w *writer) typeText(depth int, t *Type) string {
	switch t.Kind {
	case TypeBoolean:
		return "Bool"
	case TypeLong:
		return "Long"
	case TypeString:
		return "String"
	case TypeSet:
		return "Set<" + w.typeText(depth, t.Element) + ">"
	case TypeRecord:
		if len(t.Attributes) == 0 {
			return "{}"
		}
		var sb strings.Builder
		sb.WriteString("{\n")
		names := sortedKeys(t.Attributes)
		for i, name := range names {
			attr := t.Attributes[name]
			for _, annotation := range sortedKeys(attr.Annotations) {
				sb.WriteString(strings.Repeat(indentUnit, depth+1))
				sb.WriteString("@" + annotation)
				if value := attr.Annotations[annotation]; value != "" {
					sb.WriteString("(" + Quote(value) + ")")
				}
				sb.WriteByte('\n')
			}
			sb.WriteString(strings.Repeat(indentUnit, depth+1))
			sb.WriteString(Quote(name))
			if !attr.Required {
				sb.WriteByte('?')
			}
			sb.WriteString(": ")
			sb.WriteString(w.typeText(depth+1, attr.Type))
			if i < len(names)-1 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Repeat(indentUnit, depth))
		sb.WriteByte('}')
		return sb.String()
	}
	return t.Name
}

// Quote renders s as a Cedar string literal.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
