package infer

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartassist/internal/graph"
	"smartassist/internal/syntax"
	"smartassist/internal/textrange"
)

type fakeFinder map[string]*graph.TypeSymbol

func (f fakeFinder) FindType(name string) (*graph.TypeSymbol, error) {
	if s, ok := f[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("no type %s", name)
}

func finder(names ...string) fakeFinder {
	f := fakeFinder{}
	for _, n := range names {
		f[n] = &graph.TypeSymbol{QualifiedName: n}
	}
	return f
}

func tb(sig string) *syntax.TypeBinding { return &syntax.TypeBinding{Signature: sig} }

func method(name string, varargs bool, params ...string) *syntax.MethodBinding {
	m := &syntax.MethodBinding{Name: name, Varargs: varargs}
	for _, p := range params {
		m.Parameters = append(m.Parameters, tb(p))
	}
	return m
}

func call(start, end int, binding *syntax.MethodBinding, args ...*syntax.Node) *syntax.Node {
	return &syntax.Node{
		Kind:      syntax.KindMethodInvocation,
		Span:      textrange.New(start, end),
		Binding:   binding,
		Arguments: args,
		Children:  args,
	}
}

func leaf(start, end int) *syntax.Node {
	return &syntax.Node{Span: textrange.New(start, end)}
}

func root(children ...*syntax.Node) *syntax.Node {
	return &syntax.Node{Span: textrange.New(0, 1000), Children: children}
}

func TestInfer_InnermostCallWins(t *testing.T) {
	// outer(inner($))
	// 0    5     11
	inner := call(6, 13, method("inner", false, "Ljava.util.Comparator<Ljava.lang.String;>;"))
	outer := call(0, 14, method("outer", false, "Ljava.lang.Runnable;"), inner)

	in := New(finder("java.lang.Runnable", "java.util.Comparator"), nil)
	got := in.Infer(root(outer), Request{Offset: 12})

	require.NotNil(t, got)
	assert.Equal(t, "java.util.Comparator", got.Type.QualifiedName)
	assert.Equal(t, "Ljava.util.Comparator<Ljava.lang.String;>;", got.Signature)
	assert.Equal(t, "java.util.Comparator", got.QualifiedName())
}

func TestInfer_VarargsShift(t *testing.T) {
	// list.addAll( ) : span ends at the opening parenthesis plus one
	binding := method("addAll", true, "[Ljava.lang.Runnable;")
	in := New(finder("java.lang.Runnable"), nil)

	tests := []struct {
		name           string
		offset         int
		precedingSpace bool
	}{
		{"cursor right after paren", 11, false},
		{"cursor after paren and space", 12, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := call(0, 10, binding)
			got := in.Infer(root(n), Request{Offset: tt.offset, PrecedingSpace: tt.precedingSpace})
			require.NotNil(t, got)
			assert.Equal(t, "java.lang.Runnable", got.Type.QualifiedName)
			assert.Equal(t, "Ljava.lang.Runnable;", got.Signature, "element type of the variadic parameter")
		})
	}

	t.Run("shift only applies to variadic bindings", func(t *testing.T) {
		n := call(0, 10, method("run", false, "Ljava.lang.Runnable;"))
		assert.Nil(t, in.Infer(root(n), Request{Offset: 11}))
	})
}

func TestInfer_ArgumentPosition(t *testing.T) {
	// m(a, b, c) with the cursor in b
	a, b, c := leaf(2, 3), leaf(5, 6), leaf(8, 9)
	binding := method("m", false, "Ljava.lang.Integer;", "Ljava.lang.Long;", "Ljava.lang.Double;")
	in := New(finder("java.lang.Integer", "java.lang.Long", "java.lang.Double"), nil)

	got := in.Infer(root(call(0, 10, binding, a, b, c)), Request{Offset: 6})
	require.NotNil(t, got)
	assert.Equal(t, "java.lang.Long", got.Type.QualifiedName)

	got = in.Infer(root(call(0, 10, binding, a, b, c)), Request{Offset: 9, PrecedingSpace: true})
	require.NotNil(t, got)
	assert.Equal(t, "java.lang.Double", got.Type.QualifiedName, "a preceding space moves the check offset left")

	t.Run("trailing variadic arguments", func(t *testing.T) {
		vb := method("format", true, "Ljava.lang.String;", "[Ljava.lang.Integer;")
		got := in.Infer(root(call(0, 10, vb, a, b, c)), Request{Offset: 9})
		require.NotNil(t, got)
		assert.Equal(t, "java.lang.Integer", got.Type.QualifiedName)
	})

	t.Run("position past the parameters", func(t *testing.T) {
		two := method("pair", false, "Ljava.lang.Integer;", "Ljava.lang.Long;")
		assert.Nil(t, in.Infer(root(call(0, 10, two, a, b, c)), Request{Offset: 8}))
	})
}

func TestInfer_SingleParameterBias(t *testing.T) {
	// m(x, $) against a single-parameter binding still reports parameter 0
	binding := method("m", false, "Ljava.lang.Integer;")
	in := New(finder("java.lang.Integer"), nil)

	got := in.Infer(root(call(0, 10, binding, leaf(2, 3), leaf(5, 6))), Request{Offset: 6})
	require.NotNil(t, got)
	assert.Equal(t, "java.lang.Integer", got.Type.QualifiedName)
}

func TestInfer_EmptyArguments(t *testing.T) {
	binding := method("m", false, "Ljava.lang.Integer;", "Ljava.lang.Long;")
	in := New(finder("java.lang.Integer", "java.lang.Long"), nil)

	got := in.Infer(root(call(0, 3, binding)), Request{Offset: 2})
	require.NotNil(t, got)
	assert.Equal(t, "java.lang.Integer", got.Type.QualifiedName)

	assert.Nil(t, in.Infer(root(call(0, 3, method("none", false))), Request{Offset: 2}))
}

func TestInfer_NestedCallArgument(t *testing.T) {
	// outer(a, inner()) with the cursor on "inner": the outer call selects
	// nothing and the inner call has no parameters.
	inner := call(5, 12, method("inner", false))
	outer := call(0, 13, method("outer", false, "Ljava.lang.Integer;", "Ljava.lang.Long;"), leaf(2, 3), inner)
	in := New(finder("java.lang.Integer", "java.lang.Long"), nil)

	assert.Nil(t, in.Infer(root(outer), Request{Offset: 8}))
}

func TestInfer_UnresolvedBindingKeepsDescending(t *testing.T) {
	hook := new(logtest.Hook)
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)
	log.AddHook(hook)
	log.SetOutput(io.Discard)

	inner := call(6, 13, method("inner", false, "Ljava.lang.Integer;"))
	outer := call(0, 14, nil, inner)
	in := New(finder("java.lang.Integer"), log)

	got := in.Infer(root(outer), Request{Offset: 12})
	require.NotNil(t, got)
	assert.Equal(t, "java.lang.Integer", got.Type.QualifiedName)
	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, "unresolved call binding", hook.AllEntries()[0].Message)
}

func TestInfer_SiblingDoesNotOverwrite(t *testing.T) {
	nested := call(5, 10, method("nested", false, "Ljava.lang.Integer;"))
	first := call(0, 20, method("first", false, "Ljava.lang.Long;"), nested)
	sibling := call(8, 30, method("sibling", false, "Ljava.lang.Double;"))
	in := New(finder("java.lang.Integer", "java.lang.Long", "java.lang.Double"), nil)

	got := in.Infer(root(first, sibling), Request{Offset: 9})
	require.NotNil(t, got)
	assert.Equal(t, "java.lang.Integer", got.Type.QualifiedName)
}

func TestInfer_LookupFailure(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	in := New(finder(), log)
	assert.Nil(t, in.Infer(root(call(0, 10, method("m", false, "Lcom.acme.Missing;"))), Request{Offset: 5}))
	assert.Nil(t, in.Infer(root(call(0, 10, method("m", false, "TT;"))), Request{Offset: 5}))

	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, "com.acme.Missing", hook.AllEntries()[0].Data["type"])
	assert.Equal(t, "T", hook.AllEntries()[1].Data["type"])
}

func TestInfer_MatchedNodeWithoutTypeResetsExpected(t *testing.T) {
	inner := call(6, 13, method("inner", false, "I"))
	outer := call(0, 14, method("outer", false, "Ljava.lang.Integer;"), inner)
	in := New(finder("java.lang.Integer"), nil)

	assert.Nil(t, in.Infer(root(outer), Request{Offset: 12}), "the innermost match decides, even without a type")
}

type errDoc struct{}

func (errDoc) Get(int, int) (string, error) { return "", errors.New("bad location") }

type textDoc string

func (d textDoc) Get(offset, length int) (string, error) {
	if offset < 0 || offset+length > len(d) {
		return "", errors.New("bad location")
	}
	return string(d[offset : offset+length]), nil
}

func TestPrecedingSpace(t *testing.T) {
	log, hook := logtest.NewNullLogger()

	assert.True(t, PrecedingSpace(textDoc("foo( "), 5, log))
	assert.False(t, PrecedingSpace(textDoc("foo("), 4, log))
	assert.False(t, PrecedingSpace(textDoc("foo"), 0, log))
	assert.False(t, PrecedingSpace(errDoc{}, 3, nil))

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
