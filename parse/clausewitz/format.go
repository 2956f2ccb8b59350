package clausewitz

import (
	"strings"
)

// =========================
// Formatting
// =========================

// Format renders cfg back to script text. Comments are not preserved;
// re-parsing the output yields an equivalent Config.
func Format(cfg *Config) string {
	var b strings.Builder
	for _, a := range cfg.Assignments {
		writeAssignment(&b, a, 0)
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatValue renders a single value on one line.
func FormatValue(v Value) string {
	var b strings.Builder
	writeInline(&b, v)
	return b.String()
}

func writeAssignment(b *strings.Builder, a Assignment, depth int) {
	b.WriteString(strings.Repeat("\t", depth))
	if a.Field != nil {
		writeScalarText(b, a.Field.Name, false)
		b.WriteByte(' ')
		b.WriteString(a.Op.String())
		b.WriteByte(' ')
	}
	if m, ok := a.Value.(*Map); ok {
		writeMap(b, m, depth)
		return
	}
	writeInline(b, a.Value)
}

func writeMap(b *strings.Builder, m *Map, depth int) {
	if len(m.Items) == 0 {
		b.WriteString("{ }")
		return
	}
	b.WriteString("{\n")
	for _, item := range m.Items {
		writeAssignment(b, item, depth+1)
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat("\t", depth))
	b.WriteByte('}')
}

func writeInline(b *strings.Builder, v Value) {
	switch v := v.(type) {
	case String:
		writeScalarText(b, v.V, v.Quoted)
	case *Array:
		if len(v.Elems) == 0 {
			b.WriteString("{ }")
			return
		}
		b.WriteString("{ ")
		for _, e := range v.Elems {
			writeInline(b, e)
			b.WriteByte(' ')
		}
		b.WriteByte('}')
	case *Map:
		b.WriteString("{ ")
		for _, item := range v.Items {
			if item.Field != nil {
				writeScalarText(b, item.Field.Name, false)
				b.WriteByte(' ')
				b.WriteString(item.Op.String())
				b.WriteByte(' ')
			}
			writeInline(b, item.Value)
			b.WriteByte(' ')
		}
		b.WriteByte('}')
	case nil:
	default:
		b.WriteString(v.Text())
	}
}

// writeScalarText quotes text that would not lex back as a single symbol.
func writeScalarText(b *strings.Builder, s string, quoted bool) {
	if !quoted && s != "" {
		for i := 0; i < len(s); i++ {
			if !isWordByte(s[i]) {
				quoted = true
				break
			}
		}
		if !quoted && (strings.Contains(s, "//") || strings.Contains(s, "/*")) {
			quoted = true
		}
	}
	if quoted || s == "" {
		b.WriteByte('"')
		b.WriteString(s)
		b.WriteByte('"')
		return
	}
	b.WriteString(s)
}
