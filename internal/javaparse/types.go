package javaparse

import (
	"strings"

	"github.com/sirupsen/logrus"
	sitter "github.com/smacker/go-tree-sitter"

	"smartassist/internal/graph"
	"smartassist/internal/project"
	"smartassist/internal/signature"
	"smartassist/internal/syntax"
)

const (
	stringSignature = "Ljava.lang.String;"
	objectName      = "java.lang.Object"
)

func qualifiedName(sig string) string {
	if sig == "" {
		return ""
	}
	return signature.QualifiedName(sig)
}

func isResolved(sig string) bool {
	return sig != "" && signature.ElementType(sig)[0] == signature.Resolved
}

// typeOf returns the static type of an expression as a signature, or ""
// when it cannot be determined.
func (c *converter) typeOf(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier":
		name := c.text(n)
		if sig, ok := c.lookupVar(name); ok {
			return sig
		}
		if f, ok := c.fieldInScope(name); ok {
			return f.Type
		}
	case "this":
		return c.thisType()
	case "field_access":
		recv := c.receiverType(n.ChildByFieldName("object"))
		name := c.text(n.ChildByFieldName("field"))
		if recv == "" || name == "" {
			return ""
		}
		if name == "length" && signature.ArrayCount(recv) > 0 {
			return "I"
		}
		if f, ok := c.proj.FieldOf(recv, name); ok {
			return f.Type
		}
	case "method_invocation":
		if b := c.invocationBinding(n); b != nil && b.ReturnType != nil {
			return b.ReturnType.Signature
		}
	case "object_creation_expression":
		return c.resolveType(c.text(n.ChildByFieldName("type")))
	case "array_creation_expression":
		return c.arrayCreationType(n)
	case "cast_expression":
		return c.resolveType(c.text(n.ChildByFieldName("type")))
	case "parenthesized_expression":
		if n.NamedChildCount() > 0 {
			return c.typeOf(n.NamedChild(0))
		}
	case "array_access":
		if arr := c.typeOf(n.ChildByFieldName("array")); signature.ArrayCount(arr) > 0 {
			return arr[1:]
		}
	case "ternary_expression":
		if t := c.typeOf(n.ChildByFieldName("consequence")); t != "" {
			return t
		}
		return c.typeOf(n.ChildByFieldName("alternative"))
	case "assignment_expression":
		return c.typeOf(n.ChildByFieldName("left"))
	case "binary_expression":
		return c.binaryType(n)
	case "unary_expression":
		if c.text(n.ChildByFieldName("operator")) == "!" {
			return "Z"
		}
		return c.typeOf(n.ChildByFieldName("operand"))
	case "update_expression":
		if n.NamedChildCount() > 0 {
			return c.typeOf(n.NamedChild(0))
		}
	case "string_literal", "text_block":
		return stringSignature
	case "character_literal":
		return "C"
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		if strings.HasSuffix(strings.ToLower(c.text(n)), "l") {
			return "J"
		}
		return "I"
	case "decimal_floating_point_literal", "hex_floating_point_literal":
		if strings.HasSuffix(strings.ToLower(c.text(n)), "f") {
			return "F"
		}
		return "D"
	case "true", "false", "instanceof_expression":
		return "Z"
	case "class_literal":
		return "Ljava.lang.Class;"
	}
	return ""
}

func (c *converter) binaryType(n *sitter.Node) string {
	switch c.text(n.ChildByFieldName("operator")) {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		return "Z"
	case "+":
		left, right := c.typeOf(n.ChildByFieldName("left")), c.typeOf(n.ChildByFieldName("right"))
		if left == stringSignature || right == stringSignature {
			return stringSignature
		}
		return left
	}
	return c.typeOf(n.ChildByFieldName("left"))
}

func (c *converter) arrayCreationType(n *sitter.Node) string {
	elem := c.resolveType(c.text(n.ChildByFieldName("type")))
	if elem == "" {
		return ""
	}
	dims := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		d := n.NamedChild(i)
		if d == nil {
			continue
		}
		switch d.Type() {
		case "dimensions_expr":
			dims++
		case "dimensions":
			dims += strings.Count(c.text(d), "[")
		}
	}
	return strings.Repeat(string(signature.Array), dims) + elem
}

// elementTypeOf returns what an enhanced for loop over a value of type sig
// yields.
func (c *converter) elementTypeOf(sig string) string {
	if sig == "" {
		return ""
	}
	if signature.ArrayCount(sig) > 0 {
		return sig[1:]
	}
	for _, m := range c.proj.MethodsOf(sig) {
		if m.Name == "iterator" && len(m.Parameters) == 0 {
			if args := signature.TypeArguments(m.ReturnType); len(args) == 1 {
				return args[0]
			}
		}
	}
	return ""
}

func (c *converter) thisType() string {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if sym := c.frames[i].sym; sym != nil {
			return sym.Signature()
		}
	}
	return ""
}

func (c *converter) superType() string {
	for i := len(c.frames) - 1; i >= 0; i-- {
		sym := c.frames[i].sym
		if sym == nil {
			continue
		}
		for _, rel := range sym.Supertypes {
			if rel.Kind == graph.RelationExtends && sym.Kind != graph.KindInterface {
				return rel.Target
			}
		}
		break
	}
	return "L" + objectName + ";"
}

// fieldInScope looks a simple name up in the fields of the enclosing types,
// innermost first.
func (c *converter) fieldInScope(name string) (project.Field, bool) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if sym := c.frames[i].sym; sym != nil {
			if f, ok := c.proj.FieldOf(sym.Signature(), name); ok {
				return f, true
			}
		}
	}
	return project.Field{}, false
}

// receiverType types the object of a member access. Names that are not
// variables are tried as type names, for static access.
func (c *converter) receiverType(obj *sitter.Node) string {
	if obj == nil {
		return ""
	}
	if obj.Type() == "super" {
		return c.superType()
	}
	if t := c.typeOf(obj); t != "" {
		return t
	}
	switch obj.Type() {
	case "identifier":
		if _, ok := c.lookupVar(c.text(obj)); ok {
			return ""
		}
	case "field_access", "scoped_identifier", "type_identifier", "scoped_type_identifier":
	default:
		return ""
	}
	name := strings.Join(strings.Fields(c.text(obj)), "")
	if q, ok := c.scope().ResolveName(name); ok {
		return "L" + q + ";"
	}
	return ""
}

func (c *converter) invocationBinding(n *sitter.Node) *syntax.MethodBinding {
	key := keyOf(n)
	if b, ok := c.bindings[key]; ok {
		return b
	}
	b := c.bindInvocation(n)
	c.bindings[key] = b
	if b == nil {
		c.log.WithFields(logrus.Fields{
			"call":   c.text(n.ChildByFieldName("name")),
			"offset": c.sp.original(int(n.StartByte())),
		}).Debug("call not resolved")
	}
	return b
}

func (c *converter) bindInvocation(n *sitter.Node) *syntax.MethodBinding {
	name := c.text(n.ChildByFieldName("name"))
	if name == "" {
		return nil
	}
	args := argumentNodes(n.ChildByFieldName("arguments"))

	var candidates []project.Method
	if obj := n.ChildByFieldName("object"); obj != nil {
		recv := c.receiverType(obj)
		if recv == "" {
			return nil
		}
		candidates = named(c.proj.MethodsOf(recv), name)
	} else {
		for i := len(c.frames) - 1; i >= 0 && len(candidates) == 0; i-- {
			if sym := c.frames[i].sym; sym != nil {
				candidates = named(c.proj.MethodsOf(sym.Signature()), name)
			}
		}
		if len(candidates) == 0 {
			candidates = c.staticImports(name)
		}
	}

	m := c.choose(candidates, args)
	if m == nil {
		return nil
	}
	return methodBinding(*m, m.Name)
}

// staticImports returns the statically imported methods called name.
func (c *converter) staticImports(name string) []project.Method {
	var out []project.Method
	for _, imp := range c.file.Imports {
		if !imp.Static {
			continue
		}
		owner := imp.Name
		if !imp.OnDemand {
			var member string
			owner, member = splitLast(imp.Name)
			if member != name {
				continue
			}
		}
		for _, m := range named(c.proj.MethodsOf("L"+owner+";"), name) {
			if m.Modifiers.Has(graph.ModStatic) {
				out = append(out, m)
			}
		}
	}
	return out
}

func (c *converter) creationBinding(n *sitter.Node) *syntax.MethodBinding {
	key := keyOf(n)
	if b, ok := c.bindings[key]; ok {
		return b
	}
	b := c.bindCreation(n)
	c.bindings[key] = b
	return b
}

func (c *converter) bindCreation(n *sitter.Node) *syntax.MethodBinding {
	sig := c.resolveType(c.text(n.ChildByFieldName("type")))
	if !isResolved(sig) {
		return nil
	}
	sym, err := c.proj.FindType(qualifiedName(sig))
	if err != nil {
		return nil
	}
	if sym.Kind == graph.KindInterface {
		// anonymous implementation, Object()
		return &syntax.MethodBinding{Name: sym.Name, DeclaringType: sym.QualifiedName, Parameters: []*syntax.TypeBinding{}, Constructor: true}
	}
	m := c.choose(c.proj.ConstructorsOf(sig), argumentNodes(n.ChildByFieldName("arguments")))
	if m == nil {
		return nil
	}
	return methodBinding(*m, sym.Name)
}

// choose picks the overload that best matches args. While a call is being
// typed it may have fewer arguments than any overload takes; the overload
// with the fewest parameters that can still accept them is chosen then.
func (c *converter) choose(candidates []project.Method, args []*sitter.Node) *project.Method {
	if len(candidates) == 0 {
		return nil
	}
	var best *project.Method
	bestScore := 0
	for i := range candidates {
		m := &candidates[i]
		if !arityMatches(m, len(args)) {
			continue
		}
		if s := c.score(m, args); best == nil || s > bestScore {
			best, bestScore = m, s
		}
	}
	if best != nil {
		return best
	}
	for i := range candidates {
		m := &candidates[i]
		if len(m.Parameters) >= len(args) && (best == nil || len(m.Parameters) < len(best.Parameters)) {
			best = m
		}
	}
	if best != nil {
		return best
	}
	return &candidates[0]
}

func arityMatches(m *project.Method, n int) bool {
	if m.Varargs {
		return n >= len(m.Parameters)-1
	}
	return n == len(m.Parameters)
}

func (c *converter) score(m *project.Method, args []*sitter.Node) int {
	score := 0
	for i, arg := range args {
		param := parameterType(m, i)
		switch arg.Type() {
		case "lambda_expression", "method_reference":
			if c.isFunctional(param) {
				score++
			} else {
				score -= 10
			}
			continue
		}
		got := c.typeOf(arg)
		switch {
		case got != "" && signature.Erasure(got) == signature.Erasure(param):
			score += 2
		case c.compatible(got, param):
			score++
		default:
			score -= 10
		}
	}
	return score
}

// parameterType returns the type the i-th argument is matched against,
// unwrapping a trailing varargs array.
func parameterType(m *project.Method, i int) string {
	last := len(m.Parameters) - 1
	if last < 0 {
		return ""
	}
	if i >= last && m.Varargs {
		return signature.ElementType(m.Parameters[last].Type)
	}
	if i > last {
		return ""
	}
	return m.Parameters[i].Type
}

func (c *converter) isFunctional(sig string) bool {
	if sig == "" || signature.IsTypeVariable(sig) {
		return true
	}
	sym, err := c.proj.FindType(qualifiedName(sig))
	return err == nil && sym.Kind == graph.KindInterface
}

// compatible is a loose assignment check used to rank overloads.
func (c *converter) compatible(arg, param string) bool {
	switch {
	case arg == "" || param == "":
		return true
	case signature.IsTypeVariable(param) || signature.IsTypeVariable(arg):
		return true
	case len(arg) == 1 || len(param) == 1:
		// primitives, with boxing
		return true
	case signature.ArrayCount(arg) != signature.ArrayCount(param):
		return qualifiedName(param) == objectName
	}
	target := qualifiedName(signature.ElementType(param))
	if target == objectName || qualifiedName(signature.ElementType(arg)) == target {
		return true
	}
	for _, e := range c.proj.Graph().Supertypes(qualifiedName(signature.ElementType(arg))) {
		if node, ok := c.proj.Graph().Nodes[e.To]; ok && node.Symbol.QualifiedName == target {
			return true
		}
	}
	return false
}

func methodBinding(m project.Method, name string) *syntax.MethodBinding {
	b := &syntax.MethodBinding{
		Name:        name,
		Parameters:  make([]*syntax.TypeBinding, len(m.Parameters)),
		Varargs:     m.Varargs,
		Constructor: m.Constructor,
	}
	if m.Declaring != nil {
		b.DeclaringType = m.Declaring.QualifiedName
	}
	for i, p := range m.Parameters {
		b.Parameters[i] = &syntax.TypeBinding{Signature: p.Type}
	}
	if !m.Constructor && m.ReturnType != "" {
		b.ReturnType = &syntax.TypeBinding{Signature: m.ReturnType}
	}
	return b
}

func named(methods []project.Method, name string) []project.Method {
	var out []project.Method
	for _, m := range methods {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

func argumentNodes(list *sitter.Node) []*sitter.Node {
	if list == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(list.NamedChildCount()); i++ {
		if a := list.NamedChild(i); a != nil && !isComment(a) {
			out = append(out, a)
		}
	}
	return out
}

func splitLast(name string) (string, string) {
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return "", name
	}
	return name[:dot], name[dot+1:]
}
