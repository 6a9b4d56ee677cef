// Package syntax is the resolved syntax tree the completion core walks.
//
// Nodes form a small closed variant: call-like nodes (method invocations
// and class instance creations) carry their arguments and the resolved
// callable binding; every other node only has a span and children.
package syntax

import (
	"smartassist/internal/extractor"
	"smartassist/internal/graph"
	"smartassist/internal/signature"
	"smartassist/internal/textrange"
)

type Kind int

const (
	KindOther Kind = iota
	KindMethodInvocation
	KindClassInstanceCreation
	KindTypeDeclaration
)

func (k Kind) String() string {
	switch k {
	case KindMethodInvocation:
		return "method_invocation"
	case KindClassInstanceCreation:
		return "class_instance_creation"
	case KindTypeDeclaration:
		return "type_declaration"
	}
	return "other"
}

// IsCall reports whether the kind is a method invocation or a class
// instance creation.
func (k Kind) IsCall() bool {
	return k == KindMethodInvocation || k == KindClassInstanceCreation
}

// TypeBinding is a resolved type reference.
type TypeBinding struct {
	Signature string
}

// QualifiedName returns the erased dotted name of the type.
func (t *TypeBinding) QualifiedName() string {
	return signature.QualifiedName(t.Signature)
}

// ElementType returns the component type of an array type, or t itself.
func (t *TypeBinding) ElementType() *TypeBinding {
	if signature.ArrayCount(t.Signature) == 0 {
		return t
	}
	return &TypeBinding{Signature: signature.ElementType(t.Signature)}
}

func (t *TypeBinding) IsArray() bool {
	return signature.ArrayCount(t.Signature) > 0
}

// MethodBinding is a resolved method or constructor. It is read only.
type MethodBinding struct {
	Name          string
	DeclaringType string // qualified name
	Parameters    []*TypeBinding
	ReturnType    *TypeBinding // nil for constructors
	Varargs       bool
	Constructor   bool
}

// Node is one syntax tree node. Spans are byte offsets into the source.
type Node struct {
	Kind     Kind
	Type     string // grammar node type, for diagnostics
	Span     textrange.Range
	Children []*Node

	// Call-like nodes only.
	Arguments []*Node
	Binding   *MethodBinding // nil when the call could not be resolved

	// Type declarations only.
	TypeName string
}

// Inspect traverses the tree depth first, calling visit for each node. If
// visit returns false the children of that node are skipped.
func Inspect(n *Node, visit func(*Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, c := range n.Children {
		Inspect(c, visit)
	}
}

// Source is a compilation unit to parse.
type Source struct {
	Path   string
	Text   []byte
	Cursor int // -1 when there is no completion cursor
}

// File is a parsed compilation unit.
type File struct {
	Path    string
	Root    *Node
	Package string
	Imports []extractor.Import
	Types   []*graph.TypeSymbol // declarations of this file, resolved
}

// EnclosingType returns the innermost type declared in the file whose span
// contains offset, or nil.
func (f *File) EnclosingType(offset int) *graph.TypeSymbol {
	var name string
	Inspect(f.Root, func(n *Node) bool {
		if !n.Span.Contains(offset) {
			return false
		}
		if n.Kind == KindTypeDeclaration {
			name = n.TypeName
		}
		return true
	})
	if name == "" {
		return nil
	}
	for _, t := range f.Types {
		if t.QualifiedName == name {
			return t
		}
	}
	return nil
}
