package javaparse

import (
	"strings"

	"github.com/sirupsen/logrus"
	sitter "github.com/smacker/go-tree-sitter"

	"smartassist/internal/extractor"
	"smartassist/internal/graph"
	"smartassist/internal/project"
	"smartassist/internal/resolver"
	"smartassist/internal/syntax"
	"smartassist/internal/textrange"
)

// frame is a type body being converted. sym is nil for local classes.
type frame struct {
	qname string
	sym   *graph.TypeSymbol
	scope *resolver.Scope
}

type nodeKey struct {
	start, end uint32
	typ        string
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte(), typ: n.Type()}
}

// converter turns a tree-sitter tree into a syntax tree, resolving call
// bindings against proj as it goes. Locals are tracked in source order, so
// a variable is only visible after its declaration.
type converter struct {
	src   []byte
	sp    splice
	proj  *project.Project
	file  *resolver.Scope
	units map[string]*extractor.TypeUnit
	log   logrus.FieldLogger

	frames     []frame
	typeParams [][]string
	vars       []map[string]string
	bindings   map[nodeKey]*syntax.MethodBinding
}

func newConverter(src []byte, sp splice, proj *project.Project, header extractor.FileHeader, units []*extractor.TypeUnit, log logrus.FieldLogger) *converter {
	byName := make(map[string]*extractor.TypeUnit, len(units))
	for _, u := range units {
		byName[u.QualifiedName] = u
	}
	return &converter{
		src:      src,
		sp:       sp,
		proj:     proj,
		file:     proj.Scope(header.Package, header.Imports),
		units:    byName,
		log:      log,
		bindings: map[nodeKey]*syntax.MethodBinding{},
	}
}

func (c *converter) span(n *sitter.Node) textrange.Range {
	return textrange.New(c.sp.original(int(n.StartByte())), c.sp.original(int(n.EndByte())))
}

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(c.src)
}

func (c *converter) convert(n *sitter.Node) *syntax.Node {
	out := &syntax.Node{Type: n.Type(), Span: c.span(n)}

	if extractor.TypeDeclarationKind(n.Type()) != "" {
		out.Kind = syntax.KindTypeDeclaration
		out.TypeName = c.pushType(n)
		defer c.popType()
	}

	switch n.Type() {
	case "method_declaration", "constructor_declaration":
		c.typeParams = append(c.typeParams, extractor.TypeParameters(n.ChildByFieldName("type_parameters"), c.src))
		defer func() { c.typeParams = c.typeParams[:len(c.typeParams)-1] }()
		c.pushVars()
		defer c.popVars()
		c.declareParams(n.ChildByFieldName("parameters"))
	case "lambda_expression":
		c.pushVars()
		defer c.popVars()
		c.declareLambdaParams(n.ChildByFieldName("parameters"))
	case "block", "constructor_body", "switch_block", "for_statement", "try_with_resources_statement":
		c.pushVars()
		defer c.popVars()
	case "enhanced_for_statement":
		c.pushVars()
		defer c.popVars()
		c.declareLoopVariable(n)
	case "catch_clause":
		c.pushVars()
		defer c.popVars()
		c.declareCatchParameter(n)
	case "class_body":
		if p := n.Parent(); p != nil && p.Type() == "object_creation_expression" {
			c.pushAnonymous(p)
			defer c.popType()
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || isComment(child) {
			continue
		}
		out.Children = append(out.Children, c.convert(child))
	}

	switch n.Type() {
	case "local_variable_declaration":
		c.declareLocals(n)
	case "resource":
		if name := n.ChildByFieldName("name"); name != nil {
			c.declare(c.text(name), c.resolveType(c.text(n.ChildByFieldName("type"))))
		}
	case "method_invocation":
		out.Kind = syntax.KindMethodInvocation
		out.Arguments = argumentsOf(out)
		out.Binding = c.invocationBinding(n)
	case "object_creation_expression":
		if c.isPlaceholder(n) {
			break
		}
		out.Kind = syntax.KindClassInstanceCreation
		out.Arguments = argumentsOf(out)
		out.Binding = c.creationBinding(n)
	}
	return out
}

func isComment(n *sitter.Node) bool {
	switch n.Type() {
	case "line_comment", "block_comment", "comment":
		return true
	}
	return false
}

func argumentsOf(n *syntax.Node) []*syntax.Node {
	for _, child := range n.Children {
		if child.Type == "argument_list" {
			return child.Children
		}
	}
	return nil
}

func (c *converter) isPlaceholder(n *sitter.Node) bool {
	return c.sp.length > 0 && strings.TrimSpace(c.text(n.ChildByFieldName("type"))) == placeholderType
}

// pushType enters a named type declaration and returns its qualified name.
func (c *converter) pushType(n *sitter.Node) string {
	name := c.text(n.ChildByFieldName("name"))
	var qname string
	switch {
	case len(c.frames) > 0 && c.frames[len(c.frames)-1].qname != "":
		qname = c.frames[len(c.frames)-1].qname + "." + name
	case c.file.Package != "":
		qname = c.file.Package + "." + name
	default:
		qname = name
	}

	f := frame{qname: qname, scope: c.scope()}
	if unit, ok := c.units[qname]; ok {
		f.scope = resolver.ForUnit(unit, c.proj.Graph(), c.proj.Chain())
	}
	if sym, err := c.proj.FindType(qname); err == nil {
		f.sym = sym
	}
	c.frames = append(c.frames, f)
	return qname
}

// pushAnonymous enters the body of an anonymous class. Its members are
// looked up on the instantiated type.
func (c *converter) pushAnonymous(creation *sitter.Node) {
	f := frame{qname: c.currentQualifiedName(), scope: c.scope()}
	sig := c.resolveType(c.text(creation.ChildByFieldName("type")))
	if sym, err := c.proj.FindType(qualifiedName(sig)); err == nil {
		f.sym = sym
	}
	c.frames = append(c.frames, f)
}

func (c *converter) popType() {
	c.frames = c.frames[:len(c.frames)-1]
}

func (c *converter) currentQualifiedName() string {
	if len(c.frames) == 0 {
		return ""
	}
	return c.frames[len(c.frames)-1].qname
}

// scope returns the name-resolution scope at the current position,
// including method type parameters.
func (c *converter) scope() *resolver.Scope {
	sc := c.file
	if len(c.frames) > 0 {
		sc = c.frames[len(c.frames)-1].scope
	}
	var params []string
	for _, tp := range c.typeParams {
		params = append(params, tp...)
	}
	if len(params) == 0 {
		return sc
	}
	return sc.With(params...)
}

func (c *converter) resolveType(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return c.scope().ResolveType(raw)
}

func (c *converter) pushVars() {
	c.vars = append(c.vars, map[string]string{})
}

func (c *converter) popVars() {
	c.vars = c.vars[:len(c.vars)-1]
}

func (c *converter) declare(name, sig string) {
	if name == "" || len(c.vars) == 0 {
		return
	}
	c.vars[len(c.vars)-1][name] = sig
}

func (c *converter) lookupVar(name string) (string, bool) {
	for i := len(c.vars) - 1; i >= 0; i-- {
		if sig, ok := c.vars[i][name]; ok {
			return sig, true
		}
	}
	return "", false
}

func (c *converter) declareParams(params *sitter.Node) {
	if params == nil {
		return
	}
	for _, p := range extractor.FormalParameters(params, c.src) {
		t := p.Type
		if p.Varargs {
			t += "..."
		}
		c.declare(p.Name, c.resolveType(t))
	}
}

func (c *converter) declareLambdaParams(params *sitter.Node) {
	if params == nil {
		return
	}
	switch params.Type() {
	case "identifier":
		c.declare(c.text(params), "")
	case "formal_parameters":
		c.declareParams(params)
	default:
		for i := 0; i < int(params.NamedChildCount()); i++ {
			if id := params.NamedChild(i); id != nil && id.Type() == "identifier" {
				c.declare(c.text(id), "")
			}
		}
	}
}

func (c *converter) declareLocals(n *sitter.Node) {
	written := c.text(n.ChildByFieldName("type"))
	for i := 0; i < int(n.NamedChildCount()); i++ {
		d := n.NamedChild(i)
		if d == nil || d.Type() != "variable_declarator" {
			continue
		}
		var sig string
		if written == "var" {
			sig = c.typeOf(d.ChildByFieldName("value"))
		} else {
			sig = c.resolveType(written + c.text(d.ChildByFieldName("dimensions")))
		}
		c.declare(c.text(d.ChildByFieldName("name")), sig)
	}
}

func (c *converter) declareLoopVariable(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	written := c.text(n.ChildByFieldName("type"))
	if written != "var" {
		c.declare(c.text(name), c.resolveType(written))
		return
	}
	c.declare(c.text(name), c.elementTypeOf(c.typeOf(n.ChildByFieldName("value"))))
}

func (c *converter) declareCatchParameter(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		p := n.NamedChild(i)
		if p == nil || p.Type() != "catch_formal_parameter" {
			continue
		}
		var first string
		for k := 0; k < int(p.NamedChildCount()); k++ {
			if t := p.NamedChild(k); t != nil && t.Type() == "catch_type" {
				first, _, _ = strings.Cut(c.text(t), "|")
			}
		}
		c.declare(c.text(p.ChildByFieldName("name")), c.resolveType(first))
	}
}
