package graph

import (
	"smartassist/internal/extractor"
	"smartassist/internal/signature"
)

// TypeResolver turns a type reference as written in source into a signature.
// typeParams are extra type variables in scope (method type parameters).
type TypeResolver interface {
	ResolveType(raw string, typeParams ...string) string
}

// FromTypeUnit converts extractor output into a graph-domain TypeSymbol,
// resolving every type reference through res.
func FromTypeUnit(unit *extractor.TypeUnit, res TypeResolver) *TypeSymbol {
	if unit == nil {
		return nil
	}

	s := &TypeSymbol{
		ID:             unit.ID,
		QualifiedName:  unit.QualifiedName,
		Package:        unit.Package,
		Name:           unit.Name,
		Outer:          unit.Outer,
		Kind:           TypeKind(unit.UnitType),
		Modifiers:      ParseModifiers(unit.Modifiers),
		TypeParameters: unit.TypeParameters,
		Filepath:       unit.Filepath,
		StartLine:      unit.StartLine,
		EndLine:        unit.EndLine,
		ContentHash:    unit.ContentHash,
		Description:    unit.Description,
	}
	if s.Kind == KindInterface || s.Kind == KindAnnotation {
		s.Modifiers |= ModAbstract
	}

	switch {
	case unit.Superclass != "":
		s.Supertypes = append(s.Supertypes, Relation{Target: res.ResolveType(unit.Superclass), Kind: RelationExtends})
	case s.Kind == KindEnum:
		s.Supertypes = append(s.Supertypes, Relation{Target: "Ljava.lang.Enum<" + s.Signature() + ">;", Kind: RelationExtends})
	case s.Kind == KindRecord:
		s.Supertypes = append(s.Supertypes, Relation{Target: "Ljava.lang.Record;", Kind: RelationExtends})
	case s.Kind == KindClass && s.QualifiedName != "java.lang.Object":
		s.Supertypes = append(s.Supertypes, Relation{Target: "Ljava.lang.Object;", Kind: RelationExtends})
	}
	ifaceKind := RelationImplements
	if s.Kind == KindInterface {
		ifaceKind = RelationExtends
	}
	for _, iface := range unit.Interfaces {
		s.Supertypes = append(s.Supertypes, Relation{Target: res.ResolveType(iface), Kind: ifaceKind})
	}

	for _, m := range unit.Methods {
		ms := MethodSymbol{
			Name:           m.Name,
			Parameters:     make([]ParamSymbol, 0, len(m.Params)),
			Modifiers:      ParseModifiers(m.Modifiers),
			Constructor:    m.Constructor,
			TypeParameters: m.TypeParameters,
		}
		if m.ReturnType != "" {
			ms.ReturnType = res.ResolveType(m.ReturnType, m.TypeParameters...)
		}
		for _, p := range m.Params {
			typ := res.ResolveType(p.Type, m.TypeParameters...)
			if p.Varargs {
				typ = string(signature.Array) + typ
				ms.Varargs = true
			}
			ms.Parameters = append(ms.Parameters, ParamSymbol{Name: p.Name, Type: typ})
		}
		s.Methods = append(s.Methods, ms)
	}

	for _, f := range unit.Fields {
		s.Fields = append(s.Fields, FieldSymbol{Name: f.Name, Type: res.ResolveType(f.Type), Modifiers: ParseModifiers(f.Modifiers)})
	}
	return s
}
