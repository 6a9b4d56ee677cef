package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// BuildStableSymbolID creates a deterministic symbol ID.
// The ID is derived from the qualified name and a canonical hash of the
// declared shape (supertypes and member signatures), so edits to method
// bodies keep the ID stable.
func BuildStableSymbolID(unit *TypeUnit) string {
	if unit == nil {
		return ""
	}

	lang := strings.TrimSpace(unit.Language)
	if lang == "" {
		lang = "unknown"
	}

	pkg := strings.TrimSpace(unit.Package)
	if pkg == "" {
		pkg = "_"
	}

	kind := strings.TrimSpace(unit.UnitType)
	if kind == "" {
		kind = "type"
	}

	name := strings.TrimSpace(unit.QualifiedName)
	if name == "" {
		name = strings.TrimSpace(unit.Name)
	}
	if name == "" {
		name = "_"
	}

	fingerprint := strings.Join([]string{
		lang,
		pkg,
		kind,
		name,
		canonicalize(shapeSignature(unit)),
	}, "|")

	sum := sha256.Sum256([]byte(fingerprint))
	short := hex.EncodeToString(sum[:8])
	return fmt.Sprintf("%s/%s:%s:%s:%s", lang, pkg, kind, name, short)
}

func shapeSignature(unit *TypeUnit) string {
	var b strings.Builder
	b.WriteString(strings.Join(unit.TypeParameters, ","))
	b.WriteString(" extends ")
	b.WriteString(unit.Superclass)
	b.WriteString(" implements ")
	b.WriteString(strings.Join(unit.Interfaces, ","))
	for _, m := range unit.Methods {
		b.WriteString(" ")
		b.WriteString(m.ReturnType)
		b.WriteString(" ")
		b.WriteString(m.Name)
		b.WriteString("(")
		for i, p := range m.Params {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(p.Type)
			if p.Varargs {
				b.WriteString("...")
			}
		}
		b.WriteString(")")
	}
	return b.String()
}

func canonicalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return whitespaceRe.ReplaceAllString(s, " ")
}
