package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// JavaExtractor implements LanguageExtractor for Java.
type JavaExtractor struct{}

var javaTypeDeclarations = map[string]string{
	"class_declaration":           "class",
	"interface_declaration":       "interface",
	"enum_declaration":            "enum",
	"record_declaration":          "record",
	"annotation_type_declaration": "annotation",
}

// TypeDeclarationKind maps a tree-sitter node type to a unit type, or "" when
// the node does not declare a type.
func TypeDeclarationKind(nodeType string) string {
	return javaTypeDeclarations[nodeType]
}

func (j *JavaExtractor) GetLanguage() *sitter.Language {
	return java.GetLanguage()
}

func (j *JavaExtractor) GetHeaderQuery() string {
	return `
		(package_declaration) @package
		(import_declaration) @import
	`
}

func (j *JavaExtractor) ExtractHeader(captureName string, node *sitter.Node, sourceCode []byte, header *FileHeader) {
	text := strings.TrimSpace(node.Content(sourceCode))
	text = strings.TrimSuffix(text, ";")
	switch captureName {
	case "package":
		header.Package = compactName(lastWord(strings.TrimPrefix(text, "package")))
	case "import":
		text = strings.TrimSpace(strings.TrimPrefix(text, "import"))
		imp := Import{}
		if rest, ok := strings.CutPrefix(text, "static "); ok {
			imp.Static = true
			text = rest
		}
		text = compactName(text)
		if name, ok := strings.CutSuffix(text, ".*"); ok {
			imp.OnDemand = true
			text = name
		}
		imp.Name = text
		if imp.Name != "" {
			header.Imports = append(header.Imports, imp)
		}
	}
}

func (j *JavaExtractor) IsTypeDeclaration(node *sitter.Node) bool {
	return TypeDeclarationKind(node.Type()) != ""
}

func (j *JavaExtractor) ExtractUnit(node *sitter.Node, sourceCode []byte, filepath string, header FileHeader) *TypeUnit {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(sourceCode)
	outer := j.enclosingTypeName(node, sourceCode, header.Package)
	qualified := name
	switch {
	case outer != "":
		qualified = outer + "." + name
	case header.Package != "":
		qualified = header.Package + "." + name
	}

	content := node.Content(sourceCode)
	sum := sha256.Sum256([]byte(content))
	unit := &TypeUnit{
		Filepath:       filepath,
		Package:        header.Package,
		Language:       "java",
		Name:           name,
		QualifiedName:  qualified,
		Outer:          outer,
		UnitType:       TypeDeclarationKind(node.Type()),
		Modifiers:      Modifiers(node, sourceCode),
		TypeParameters: TypeParameters(node.ChildByFieldName("type_parameters"), sourceCode),
		Imports:        header.Imports,
		StartLine:      int(node.StartPoint().Row + 1),
		EndLine:        int(node.EndPoint().Row + 1),
		ContentHash:    hex.EncodeToString(sum[:]),
		Description:    j.extractDocComment(node, sourceCode),
	}

	if sc := node.ChildByFieldName("superclass"); sc != nil && sc.NamedChildCount() > 0 {
		unit.Superclass = sc.NamedChild(0).Content(sourceCode)
	}
	if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
		unit.Interfaces = append(unit.Interfaces, typeList(ifaces, sourceCode)...)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child != nil && child.Type() == "extends_interfaces" {
			unit.Interfaces = append(unit.Interfaces, typeList(child, sourceCode)...)
		}
	}

	if unit.UnitType == "record" {
		j.extractRecordComponents(node, sourceCode, unit)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		j.extractMembers(body, sourceCode, unit)
	}

	unit.ID = BuildStableSymbolID(unit)
	return unit
}

// enclosingTypeName returns the qualified name of the type that declares
// node, or "" for top-level types.
func (j *JavaExtractor) enclosingTypeName(node *sitter.Node, sourceCode []byte, pkg string) string {
	var names []string
	for p := node.Parent(); p != nil; p = p.Parent() {
		if TypeDeclarationKind(p.Type()) == "" {
			continue
		}
		if n := p.ChildByFieldName("name"); n != nil {
			names = append([]string{n.Content(sourceCode)}, names...)
		}
	}
	if len(names) == 0 {
		return ""
	}
	if pkg != "" {
		names = append([]string{pkg}, names...)
	}
	return strings.Join(names, ".")
}

func (j *JavaExtractor) extractMembers(body *sitter.Node, sourceCode []byte, unit *TypeUnit) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member == nil {
			continue
		}
		switch member.Type() {
		case "enum_body_declarations":
			j.extractMembers(member, sourceCode, unit)
		case "method_declaration", "annotation_type_element_declaration":
			unit.Methods = append(unit.Methods, j.extractMethod(member, sourceCode, unit))
		case "constructor_declaration":
			m :=j.extractMethod(member, sourceCode, unit)
			m.Constructor = true
			m.Name = unit.Name
			m.ReturnType = ""
			unit.Methods = append(unit.Methods, m)
		case "field_declaration", "constant_declaration":
			j.extractFields(member, sourceCode, unit)
		}
	}
}

func (j *JavaExtractor) extractMethod(node *sitter.Node, sourceCode []byte, unit *TypeUnit) MethodUnit {
	m := MethodUnit{
		Params:         []ParamUnit{},
		Modifiers:      Modifiers(node, sourceCode),
		TypeParameters: TypeParameters(node.ChildByFieldName("type_parameters"), sourceCode),
		StartLine:      int(node.StartPoint().Row + 1),
	}
	if n := node.ChildByFieldName("name"); n != nil {
		m.Name = n.Content(sourceCode)
	}
	if t := node.ChildByFieldName("type"); t != nil {
		m.ReturnType = t.Content(sourceCode)
		if dims := node.ChildByFieldName("dimensions"); dims != nil {
			m.ReturnType += dims.Content(sourceCode)
		}
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		m.Params = FormalParameters(params, sourceCode)
	}

	if unit.UnitType == "interface" || unit.UnitType == "annotation" {
		if !hasWord(m.Modifiers, "private") && !hasWord(m.Modifiers, "public") {
			m.Modifiers = append(m.Modifiers, "public")
		}
		body := node.ChildByFieldName("body")
		if body == nil && !hasWord(m.Modifiers, "static") && !hasWord(m.Modifiers, "default") && !hasWord(m.Modifiers, "abstract") {
			m.Modifiers = append(m.Modifiers, "abstract")
		}
	}
	return m
}

func (j *JavaExtractor) extractRecordComponents(node *sitter.Node, sourceCode []byte, unit *TypeUnit) {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	components := FormalParameters(params, sourceCode)
	unit.Methods = append(unit.Methods, MethodUnit{
		Name:        unit.Name,
		Params:      components,
		Modifiers:   []string{"public"},
		Constructor: true,
		StartLine:   int(params.StartPoint().Row + 1),
	})
	for _, c := range components {
		unit.Methods = append(unit.Methods, MethodUnit{
			Name:       c.Name,
			Params:     []ParamUnit{},
			ReturnType: c.Type,
			Modifiers:  []string{"public"},
			StartLine:  int(params.StartPoint().Row + 1),
		})
		unit.Fields = append(unit.Fields, FieldUnit{Name: c.Name, Type: c.Type, Modifiers: []string{"private", "final"}})
	}
}

func (j *JavaExtractor) extractFields(node *sitter.Node, sourceCode []byte, unit *TypeUnit) {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	fieldType := typeNode.Content(sourceCode)
	modifiers := Modifiers(node, sourceCode)
	if unit.UnitType == "interface" {
		modifiers = appendMissing(modifiers, "public", "static", "final")
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl == nil || decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		t := fieldType
		if dims := decl.ChildByFieldName("dimensions"); dims != nil {
			t += dims.Content(sourceCode)
		}
		unit.Fields = append(unit.Fields, FieldUnit{Name: nameNode.Content(sourceCode), Type: t, Modifiers: modifiers})
	}
}

func (j *JavaExtractor) extractDocComment(node *sitter.Node, sourceCode []byte) string {
	prev := node.PrevSibling()
	if prev == nil || !strings.HasSuffix(prev.Type(), "comment") {
		return ""
	}
	text := prev.Content(sourceCode)
	if !strings.HasPrefix(text, "/**") {
		return ""
	}
	return cleanDocComment(text)
}

// FormalParameters extracts the parameters of a formal_parameters node.
func FormalParameters(node *sitter.Node, sourceCode []byte) []ParamUnit {
	params := []ParamUnit{}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		p := node.NamedChild(i)
		if p == nil {
			continue
		}
		switch p.Type() {
		case "formal_parameter":
			param := ParamUnit{}
			if t := p.ChildByFieldName("type"); t != nil {
				param.Type = t.Content(sourceCode)
			}
			if n := p.ChildByFieldName("name"); n != nil {
				param.Name = n.Content(sourceCode)
			}
			if dims := p.ChildByFieldName("dimensions"); dims != nil {
				param.Type += dims.Content(sourceCode)
			}
			params = append(params, param)
		case "spread_parameter":
			param := ParamUnit{Varargs: true}
			for k := 0; k < int(p.NamedChildCount()); k++ {
				c := p.NamedChild(k)
				if c == nil {
					continue
				}
				switch c.Type() {
				case "modifiers", "marker_annotation", "annotation":
				case "variable_declarator":
					if n := c.ChildByFieldName("name"); n != nil {
						param.Name = n.Content(sourceCode)
					}
				case "identifier":
					param.Name = c.Content(sourceCode)
				default:
					if param.Type == "" {
						param.Type = c.Content(sourceCode)
					}
				}
			}
			params = append(params, param)
		}
	}
	return params
}

// Modifiers returns the modifier keywords of a declaration, without annotations.
func Modifiers(node *sitter.Node, sourceCode []byte) []string {
	var mods []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Type() != "modifiers" {
			continue
		}
		for k := 0; k < int(child.ChildCount()); k++ {
			kw := child.Child(k)
			if kw == nil || kw.IsNamed() {
				continue
			}
			mods = append(mods, kw.Content(sourceCode))
		}
	}
	return mods
}

// TypeParameters returns the declared type variable names of a
// type_parameters node (nil node yields nil).
func TypeParameters(node *sitter.Node, sourceCode []byte) []string {
	if node == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		tp := node.NamedChild(i)
		if tp == nil || tp.Type() != "type_parameter" {
			continue
		}
		for k := 0; k < int(tp.NamedChildCount()); k++ {
			c := tp.NamedChild(k)
			if c != nil && (c.Type() == "type_identifier" || c.Type() == "identifier") {
				names = append(names, c.Content(sourceCode))
				break
			}
		}
	}
	return names
}

func typeList(node *sitter.Node, sourceCode []byte) []string {
	var out []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Type() == "type_list" {
			out = append(out, typeList(child, sourceCode)...)
			continue
		}
		out = append(out, child.Content(sourceCode))
	}
	return out
}

func cleanDocComment(rawComment string) string {
	if rawComment == "" {
		return ""
	}
	lines := strings.Split(rawComment, "\n")
	var cleaned []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "/**")
		l = strings.TrimSuffix(l, "*/")
		l = strings.TrimPrefix(l, "*")
		if l = strings.TrimSpace(l); l != "" {
			cleaned = append(cleaned, l)
		}
	}
	return strings.Join(cleaned, "\n")
}

func compactName(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func lastWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	// annotations may precede the package keyword; the name is always last.
	return fields[len(fields)-1]
}

func hasWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

func appendMissing(words []string, add ...string) []string {
	for _, w := range add {
		if !hasWord(words, w) {
			words = append(words, w)
		}
	}
	return words
}
