package resolver

import (
	"regexp"
	"slices"
	"strings"

	"smartassist/internal/extractor"
	"smartassist/internal/signature"
)

var annotationRe = regexp.MustCompile(`@[\w.]+(\([^)]*\))?`)

// Scope is the name-resolution context of one compilation unit position:
// the package, the imports, the enclosing types (innermost first) and the
// type variables in scope.
type Scope struct {
	Package        string
	Imports        []extractor.Import
	Enclosing      []string
	TypeParameters []string

	universe Universe
	chain    *ResolverChain
}

// NewScope creates a scope resolving names against universe.
func NewScope(pkg string, imports []extractor.Import, universe Universe, chain *ResolverChain) *Scope {
	if chain == nil {
		chain = NewDefaultChain()
	}
	return &Scope{Package: pkg, Imports: imports, universe: universe, chain: chain}
}

// ForUnit returns the scope seen from inside the body of unit.
func ForUnit(unit *extractor.TypeUnit, universe Universe, chain *ResolverChain) *Scope {
	sc := NewScope(unit.Package, unit.Imports, universe, chain)
	sc.Enclosing = []string{unit.QualifiedName}
	for outer := unit.Outer; outer != "" && outer != unit.Package; {
		sc.Enclosing = append(sc.Enclosing, outer)
		dot := strings.LastIndexByte(outer, '.')
		if dot < 0 {
			break
		}
		outer = outer[:dot]
		if !sc.exists(outer) {
			break
		}
	}
	sc.TypeParameters = unit.TypeParameters
	return sc
}

// With returns a copy of sc with extra type variables in scope.
func (s *Scope) With(typeParams ...string) *Scope {
	out := *s
	out.TypeParameters = append(slices.Clone(s.TypeParameters), typeParams...)
	return &out
}

func (s *Scope) exists(qualifiedName string) bool {
	return s.universe != nil && s.universe.HasType(qualifiedName)
}

// ResolveName maps a (possibly partially qualified) type name to the
// qualified name of an existing type.
func (s *Scope) ResolveName(name string) (string, bool) {
	return s.chain.Run(name, s)
}

// ResolveType turns a type as written in source into a signature. Names
// that cannot be resolved become unresolved (Q) signatures.
func (s *Scope) ResolveType(raw string, typeParams ...string) string {
	name := strings.TrimSpace(annotationRe.ReplaceAllString(raw, ""))
	name = strings.TrimSpace(strings.TrimPrefix(name, "final "))
	if name == "" {
		return ""
	}

	if elem, ok := strings.CutSuffix(name, "..."); ok {
		return string(signature.Array) + s.ResolveType(elem, typeParams...)
	}
	if strings.HasSuffix(name, "]") {
		if open := strings.LastIndexByte(name, '['); open > 0 {
			return string(signature.Array) + s.ResolveType(name[:open], typeParams...)
		}
	}
	if name == "?" {
		return string(signature.Star)
	}
	if rest, ok := strings.CutPrefix(name, "?"); ok {
		rest = strings.TrimSpace(rest)
		if bound, ok := strings.CutPrefix(rest, "extends "); ok {
			return string(signature.Extends) + s.ResolveType(bound, typeParams...)
		}
		if bound, ok := strings.CutPrefix(rest, "super "); ok {
			return string(signature.Super) + s.ResolveType(bound, typeParams...)
		}
		return string(signature.Star)
	}
	if signature.IsPrimitiveName(name) {
		return signature.CreateTypeSignature(name, true)
	}

	base, args := name, ""
	if open := strings.IndexByte(name, '<'); open > 0 && strings.HasSuffix(name, ">") {
		base = strings.TrimSpace(name[:open])
		var b strings.Builder
		b.WriteByte(signature.GenericStart)
		for _, a := range signature.SplitTopLevel(name[open+1 : len(name)-1]) {
			b.WriteString(s.ResolveType(a, typeParams...))
		}
		b.WriteByte(signature.GenericEnd)
		args = b.String()
		if args == "<>" {
			args = ""
		}
	}
	base = strings.ReplaceAll(signature.Erasure(base), " ", "")

	if args == "" && (slices.Contains(typeParams, base) || slices.Contains(s.TypeParameters, base)) {
		return signature.TypeVariableSignature(base)
	}
	if qualified, ok := s.ResolveName(base); ok {
		return string(signature.Resolved) + qualified + args + string(signature.NameEnd)
	}
	return string(signature.Unresolved) + base + args + string(signature.NameEnd)
}
