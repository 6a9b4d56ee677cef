package project

import (
	"strings"

	"smartassist/internal/graph"
	"smartassist/internal/signature"
)

// Method is a method seen through a possibly parameterized receiver: the
// declaring type's type variables are replaced by the receiver's type
// arguments.
type Method struct {
	graph.MethodSymbol
	Declaring *graph.TypeSymbol
}

// Field is a field seen through a possibly parameterized receiver.
type Field struct {
	graph.FieldSymbol
	Declaring *graph.TypeSymbol
}

type member struct {
	sym      *graph.TypeSymbol
	bindings map[string]string
}

// hierarchy returns the type of sig followed by its transitive supertypes,
// each with the type-variable bindings implied by sig.
func (p *Project) hierarchy(sig string) []member {
	qname := signature.QualifiedName(signature.ElementType(sig))
	if signature.ArrayCount(sig) > 0 {
		qname = "java.lang.Object"
	}
	sym := p.graph.Lookup(qname)
	if sym == nil {
		return nil
	}

	byID := map[string]map[string]string{
		sym.ID: bind(sym.TypeParameters, signature.TypeArguments(sig)),
	}
	out := []member{{sym: sym, bindings: byID[sym.ID]}}
	for _, e := range p.graph.Supertypes(qname) {
		to := p.graph.Nodes[e.To].Symbol
		written := signature.Substitute(e.Signature, byID[e.From])
		byID[e.To] = bind(to.TypeParameters, signature.TypeArguments(written))
		out = append(out, member{sym: to, bindings: byID[e.To]})
	}
	return out
}

func bind(params, args []string) map[string]string {
	if len(params) == 0 || len(args) == 0 {
		return nil
	}
	m := make(map[string]string, len(params))
	for i, name := range params {
		if i >= len(args) {
			break
		}
		m[name] = args[i]
	}
	return m
}

func substituteMethod(m graph.MethodSymbol, bindings map[string]string) graph.MethodSymbol {
	if len(bindings) == 0 {
		return m
	}
	// method type parameters shadow the declaring type's
	if len(m.TypeParameters) > 0 {
		shadowed := make(map[string]string, len(bindings))
		for k, v := range bindings {
			shadowed[k] = v
		}
		for _, tp := range m.TypeParameters {
			delete(shadowed, tp)
		}
		bindings = shadowed
	}
	out := m
	out.Parameters = make([]graph.ParamSymbol, len(m.Parameters))
	for i, p := range m.Parameters {
		out.Parameters[i] = graph.ParamSymbol{Name: p.Name, Type: signature.Substitute(p.Type, bindings)}
	}
	out.ReturnType = signature.Substitute(m.ReturnType, bindings)
	return out
}

func methodKey(m graph.MethodSymbol) string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, p := range m.Parameters {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(signature.Erasure(p.Type))
	}
	b.WriteByte(')')
	return b.String()
}

// MethodsOf returns the methods callable on a receiver of type sig,
// including inherited ones. Overridden methods appear once, nearest first.
// Constructors are not included.
func (p *Project) MethodsOf(sig string) []Method {
	var out []Method
	seen := map[string]bool{}
	for _, m := range p.hierarchy(sig) {
		for _, ms := range m.sym.Methods {
			if ms.Constructor {
				continue
			}
			sub := substituteMethod(ms, m.bindings)
			key := methodKey(sub)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Method{MethodSymbol: sub, Declaring: m.sym})
		}
	}
	return out
}

// ConstructorsOf returns the constructors of the type of sig, with the
// class type arguments substituted.
func (p *Project) ConstructorsOf(sig string) []Method {
	h := p.hierarchy(sig)
	if len(h) == 0 {
		return nil
	}
	var out []Method
	for _, c := range h[0].sym.Constructors() {
		out = append(out, Method{MethodSymbol: substituteMethod(c, h[0].bindings), Declaring: h[0].sym})
	}
	return out
}

// FieldOf looks up a field visible on a receiver of type sig.
func (p *Project) FieldOf(sig, name string) (Field, bool) {
	for _, m := range p.hierarchy(sig) {
		for _, f := range m.sym.Fields {
			if f.Name == name {
				f.Type = signature.Substitute(f.Type, m.bindings)
				return Field{FieldSymbol: f, Declaring: m.sym}, true
			}
		}
	}
	return Field{}, false
}

var objectMethods = map[string]bool{
	"equals(Ljava.lang.Object;)": true,
	"hashCode()":                 true,
	"toString()":                 true,
}

// FunctionalMethod returns the single abstract method of a functional
// interface type, ignoring redeclared public Object methods.
func (p *Project) FunctionalMethod(sig string) (Method, bool) {
	h := p.hierarchy(sig)
	if len(h) == 0 || h[0].sym.Kind != graph.KindInterface {
		return Method{}, false
	}
	var found []Method
	for _, m := range p.MethodsOf(sig) {
		if !m.IsAbstract() || m.Modifiers.Has(graph.ModStatic) || objectMethods[methodKey(m.MethodSymbol)] {
			continue
		}
		found = append(found, m)
	}
	if len(found) != 1 {
		return Method{}, false
	}
	return found[0], true
}
