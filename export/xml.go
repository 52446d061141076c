package export

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"

	"github.com/use-agent/sift/models"
)

// ToXML renders each record as <item id="N"> (1-based) with one child per
// key. Values are wrapped in CDATA; keys are turned into valid element names.
func ToXML(records []models.Record) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString("<data>\n")
	for i, r := range records {
		buf.WriteString(`  <item id="` + strconv.Itoa(i+1) + `">` + "\n")
		for _, k := range r.Keys() {
			name := elementName(k)
			buf.WriteString("    <" + name + ">")
			buf.WriteString(cdata(cell(r, k)))
			buf.WriteString("</" + name + ">\n")
		}
		buf.WriteString("  </item>\n")
	}
	buf.WriteString("</data>\n")
	return buf.Bytes()
}

// cdata wraps s, splitting any "]]>" across two sections.
func cdata(s string) string {
	return "<![CDATA[" + strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>") + "]]>"
}

// elementName maps a record key to an XML element name: runs of disallowed
// characters become "_" and names that cannot start an element get a "_"
// prefix. "Country Name" becomes "Country_Name".
func elementName(key string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(key) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.' || r == '_' {
			b.WriteRune(r)
			lastUnderscore = r == '_'
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	name := b.String()
	if name == "" {
		return "field"
	}
	first := []rune(name)[0]
	if !unicode.IsLetter(first) && first != '_' {
		name = "_" + name
	}
	if strings.HasPrefix(strings.ToLower(name), "xml") {
		name = "_" + name
	}
	return name
}
