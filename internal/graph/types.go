package graph

import (
	"strings"

	"smartassist/internal/signature"
)

type RelationKind string

const (
	RelationExtends    RelationKind = "extends"
	RelationImplements RelationKind = "implements"
)

type UnresolvedReason string

const (
	ReasonNoCandidate    UnresolvedReason = "no_candidate"
	ReasonUnresolvedName UnresolvedReason = "unresolved_name"
)

type TypeKind string

const (
	KindClass      TypeKind = "class"
	KindInterface  TypeKind = "interface"
	KindEnum       TypeKind = "enum"
	KindRecord     TypeKind = "record"
	KindAnnotation TypeKind = "annotation"
)

// Modifiers is a bit set of Java declaration modifiers.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModAbstract
	ModFinal
	ModDefault
)

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModPublic, "public"},
	{ModProtected, "protected"},
	{ModPrivate, "private"},
	{ModStatic, "static"},
	{ModAbstract, "abstract"},
	{ModFinal, "final"},
	{ModDefault, "default"},
}

// ParseModifiers converts modifier keywords into a bit set. Unknown keywords
// are ignored.
func ParseModifiers(words []string) Modifiers {
	var m Modifiers
	for _, w := range words {
		for _, mn := range modifierNames {
			if mn.name == w {
				m |= mn.mod
			}
		}
	}
	return m
}

func (m Modifiers) Has(flag Modifiers) bool { return m&flag != 0 }

func (m Modifiers) Strings() []string {
	var out []string
	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			out = append(out, mn.name)
		}
	}
	return out
}

// Visibility returns the access level keyword, "package" when none is set.
func (m Modifiers) Visibility() string {
	switch {
	case m.Has(ModPublic):
		return "public"
	case m.Has(ModProtected):
		return "protected"
	case m.Has(ModPrivate):
		return "private"
	}
	return "package"
}

// Relation is a supertype reference as written in the declaration, resolved
// to a signature.
type Relation struct {
	Target string       `json:"target"`
	Kind   RelationKind `json:"kind"`
}

type ParamSymbol struct {
	Name string `json:"name"`
	Type string `json:"type"` // signature
}

type MethodSymbol struct {
	Name           string        `json:"name"`
	Parameters     []ParamSymbol `json:"parameters"`
	ReturnType     string        `json:"return_type,omitempty"` // signature, empty for constructors
	Modifiers      Modifiers     `json:"modifiers,omitempty"`
	Varargs        bool          `json:"varargs,omitempty"`
	Constructor    bool          `json:"constructor,omitempty"`
	TypeParameters []string      `json:"type_parameters,omitempty"`
}

// ParameterTypes returns the parameter signatures in declaration order.
func (m MethodSymbol) ParameterTypes() []string {
	out := make([]string, len(m.Parameters))
	for i, p := range m.Parameters {
		out[i] = p.Type
	}
	return out
}

func (m MethodSymbol) IsAbstract() bool { return m.Modifiers.Has(ModAbstract) }

type FieldSymbol struct {
	Name      string    `json:"name"`
	Type      string    `json:"type"` // signature
	Modifiers Modifiers `json:"modifiers,omitempty"`
}

// TypeSymbol is the graph-domain node payload: a resolved Java type
// declaration. It is decoupled from extractor.TypeUnit.
type TypeSymbol struct {
	ID             string         `json:"id"`
	QualifiedName  string         `json:"qualified_name"`
	Package        string         `json:"package"`
	Name           string         `json:"name"`
	Outer          string         `json:"outer,omitempty"`
	Kind           TypeKind       `json:"kind"`
	Modifiers      Modifiers      `json:"modifiers,omitempty"`
	TypeParameters []string       `json:"type_parameters,omitempty"`
	Supertypes     []Relation     `json:"supertypes,omitempty"`
	Methods        []MethodSymbol `json:"methods,omitempty"`
	Fields         []FieldSymbol  `json:"fields,omitempty"`
	Filepath       string         `json:"filepath"`
	StartLine      int            `json:"start_line"`
	EndLine        int            `json:"end_line"`
	ContentHash    string         `json:"content_hash"`
	Description    string         `json:"description,omitempty"`
}

// Signature returns the resolved class signature of the symbol.
func (s *TypeSymbol) Signature() string {
	return signature.CreateTypeSignature(s.QualifiedName, true)
}

// Constructors returns the declared constructors. A class without any gets
// the implicit public no-arg constructor.
func (s *TypeSymbol) Constructors() []MethodSymbol {
	var out []MethodSymbol
	for _, m := range s.Methods {
		if m.Constructor {
			out = append(out, m)
		}
	}
	if len(out) == 0 && s.Kind == KindClass {
		out = append(out, MethodSymbol{Name: s.Name, Parameters: []ParamSymbol{}, Modifiers: ModPublic, Constructor: true})
	}
	return out
}

// IsInstantiable reports whether `new S(...)` can compile for some
// constructor: concrete classes and records with a non-private constructor.
func (s *TypeSymbol) IsInstantiable() bool {
	switch s.Kind {
	case KindClass, KindRecord:
	default:
		return false
	}
	if s.Modifiers.Has(ModAbstract) {
		return false
	}
	for _, c := range s.Constructors() {
		if !c.Modifiers.Has(ModPrivate) {
			return true
		}
	}
	return false
}

// IsMemberType reports whether the symbol is nested inside another type.
func (s *TypeSymbol) IsMemberType() bool {
	return s.Outer != ""
}

// Hint returns "Simple - package", the way completion lists show types.
func (s *TypeSymbol) Hint() string {
	simple := strings.TrimPrefix(s.QualifiedName, s.Package+".")
	if s.Package == "" {
		return simple
	}
	return simple + " - " + s.Package
}
