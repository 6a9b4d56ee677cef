// Package infer finds the type expected at a cursor inside the argument
// list of a method invocation or class instance creation.
package infer

import (
	"io"

	"github.com/sirupsen/logrus"

	"smartassist/internal/graph"
	"smartassist/internal/signature"
	"smartassist/internal/syntax"
	"smartassist/internal/textrange"
)

// TypeFinder resolves a qualified, erased type name.
type TypeFinder interface {
	FindType(qualifiedName string) (*graph.TypeSymbol, error)
}

// Document gives access to the text being edited.
type Document interface {
	Get(offset, length int) (string, error)
}

// Expected is the resolved type of the parameter under the cursor.
// Signature keeps the parameter type with its type arguments.
type Expected struct {
	Type      *graph.TypeSymbol
	Signature string
}

// QualifiedName returns the qualified name of the expected type.
func (e *Expected) QualifiedName() string {
	if e.Type != nil {
		return e.Type.QualifiedName
	}
	return signature.QualifiedName(e.Signature)
}

// Request describes the cursor of one inference.
type Request struct {
	Offset         int
	PrecedingSpace bool
}

type Inferer struct {
	finder TypeFinder
	log    logrus.FieldLogger
}

// New returns an Inferer resolving parameter types through finder. A nil
// log discards diagnostics.
func New(finder TypeFinder, log logrus.FieldLogger) *Inferer {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Inferer{finder: finder, log: log}
}

// PrecedingSpace reports whether the character before offset is a space.
// Read failures are logged and yield false.
func PrecedingSpace(doc Document, offset int, log logrus.FieldLogger) bool {
	text, err := doc.Get(offset-1, 1)
	if err != nil {
		if log != nil {
			log.WithError(err).WithField("offset", offset).Warn("cannot read preceding character")
		}
		return false
	}
	return text == " "
}

// state is the per-request traversal accumulator. It never outlives Infer.
type state struct {
	lastMatched *textrange.Range
	expected    *Expected
}

// Infer walks root once and returns the expected type of the innermost
// call argument enclosing the cursor, or nil.
func (in *Inferer) Infer(root *syntax.Node, req Request) *Expected {
	if root == nil {
		return nil
	}
	return in.walk(root, req, state{}).expected
}

func (in *Inferer) walk(n *syntax.Node, req Request, st state) state {
	if n.Kind.IsCall() {
		var descend bool
		st, descend = in.visitCall(n, req, st)
		if !descend {
			return st
		}
	}
	for _, c := range n.Children {
		st = in.walk(c, req, st)
	}
	return st
}

// visitCall applies one call node to the state. The boolean reports whether
// the walk continues into the node's children.
func (in *Inferer) visitCall(n *syntax.Node, req Request, st state) (state, bool) {
	binding := n.Binding
	if binding == nil {
		in.log.WithFields(logrus.Fields{"node": n.Type, "span": n.Span.String()}).Debug("unresolved call binding")
		return st, true
	}

	offset := req.Offset
	if binding.Varargs {
		// variadic calls count the trailing array slot as extra width
		if req.PrecedingSpace {
			offset -= 2
		} else {
			offset--
		}
	}

	current := n.Span
	if !current.Contains(offset) || (st.lastMatched != nil && !st.lastMatched.Encloses(current)) {
		return st, false
	}

	st.expected = in.expectedAt(n, binding, req)
	st.lastMatched = &current
	return st, true
}

func (in *Inferer) expectedAt(n *syntax.Node, binding *syntax.MethodBinding, req Request) *Expected {
	param := parameterAtOffset(n, binding, req)
	if param == nil {
		return nil
	}
	name := signature.Erasure(param.QualifiedName())
	sym, err := in.finder.FindType(name)
	if err != nil {
		in.log.WithError(err).WithField("type", name).Debug("expected type lookup failed")
		return nil
	}
	return &Expected{Type: sym, Signature: param.Signature}
}

// parameterAtOffset selects the formal parameter the cursor corresponds to.
func parameterAtOffset(n *syntax.Node, binding *syntax.MethodBinding, req Request) *syntax.TypeBinding {
	params := binding.Parameters
	if len(params) == 0 {
		return nil
	}
	if len(n.Arguments) == 0 || len(params) == 1 {
		return parameterAt(binding, 0)
	}

	checkOffset := req.Offset
	if req.PrecedingSpace {
		checkOffset--
	}
	for i, arg := range n.Arguments {
		if !arg.Span.Contains(checkOffset) {
			continue
		}
		if arg.Kind.IsCall() {
			return nil
		}
		return parameterAt(binding, i)
	}
	return nil
}

// parameterAt maps an argument position to its parameter type. Positions at
// or past a variadic parameter map to its element type.
func parameterAt(binding *syntax.MethodBinding, index int) *syntax.TypeBinding {
	params := binding.Parameters
	last := len(params) - 1
	if binding.Varargs && index >= last {
		return params[last].ElementType()
	}
	if index > last {
		return nil
	}
	return params[index]
}
