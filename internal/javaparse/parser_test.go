package javaparse

import (
	"context"
	"strings"
	"testing"

	"smartassist/internal/document"
	"smartassist/internal/infer"
	"smartassist/internal/project"
	"smartassist/internal/syntax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopSource = `package demo;

import java.util.List;
import java.util.ArrayList;
import java.util.Map;
import java.util.function.Predicate;

public class Shop {
    private List<String> names = new ArrayList<>();
    private Map<String, Integer> stock;

    public Shop(String owner) {}

    public void take(Predicate<String> p) {}
    public void take(String a, Predicate<Integer> p) {}
    public void log(String fmt, Object... args) {}

    public void run(List<Integer> ids) {
        String s = "x";
        var copy = names;
        names.add(s);
        ids.add(1);
        copy.get(0).trim();
        stock.put("a", 1);
        take(x -> true);
        take("a", x -> true);
        log("fmt", 1, 2);
        new Shop("me");
        java.util.Objects.requireNonNull(s);
        for (String n : names) {
            n.isEmpty();
        }
        unknown.call(1);
    }
}
`

func jdkProject(t *testing.T) *project.Project {
	t.Helper()
	p, err := project.Build(context.Background(), nil)
	require.NoError(t, err)
	return p
}

func parse(t *testing.T, p *Parser, proj *project.Project, text string, cursor int) (*syntax.File, *project.Project) {
	t.Helper()
	file, overlay, err := p.Parse(context.Background(), syntax.Source{Path: "demo/Shop.java", Text: []byte(text), Cursor: cursor}, proj)
	require.NoError(t, err)
	return file, overlay
}

// callAt returns the call starting where needle starts whose binding is
// named name, or any call there when name is empty.
func callAt(t *testing.T, f *syntax.File, text, needle, name string) *syntax.Node {
	t.Helper()
	off := strings.Index(text, needle)
	require.GreaterOrEqual(t, off, 0, needle)
	var found *syntax.Node
	syntax.Inspect(f.Root, func(n *syntax.Node) bool {
		if found != nil || !n.Kind.IsCall() || n.Span.Start != off {
			return found == nil
		}
		if name == "" || n.Binding != nil && n.Binding.Name == name {
			found = n
		}
		return found == nil
	})
	require.NotNil(t, found, needle)
	return found
}

func params(b *syntax.MethodBinding) []string {
	out := make([]string, len(b.Parameters))
	for i, p := range b.Parameters {
		out[i] = p.Signature
	}
	return out
}

func TestSpliceCompletion(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		cursor int
		want   string
	}{
		{"after new", "f(new )", 6, "f(new $Completion())"},
		{"type already typed", "f(new Foo())", 6, "f(new Foo())"},
		{"not after new", "f(x)", 2, "f(x)"},
		{"no cursor", "f(new )", -1, "f(new )"},
		{"cursor out of range", "new ", 10, "new "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := spliceCompletion([]byte(tt.text), tt.cursor)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestSplice_Original(t *testing.T) {
	_, sp := spliceCompletion([]byte("f(new )"), 6)
	assert.Equal(t, 2, sp.original(2))
	assert.Equal(t, 6, sp.original(6))
	assert.Equal(t, 6, sp.original(10), "offsets inside the placeholder collapse to the cursor")
	assert.Equal(t, 6, sp.original(6+len(placeholder)))
	assert.Equal(t, 7, sp.original(7+len(placeholder)))

	assert.Equal(t, 42, splice{}.original(42))
}

func TestParser_Bindings(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	file, _ := parse(t, p, jdkProject(t), shopSource, -1)

	tests := []struct {
		needle    string
		name      string
		declaring string
		params    []string
	}{
		{"names.add(s)", "add", "java.util.Collection", []string{"Ljava.lang.String;"}},
		{"ids.add(1)", "add", "java.util.Collection", []string{"Ljava.lang.Integer;"}},
		{"copy.get(0)", "get", "java.util.List", []string{"I"}},
		{"copy.get(0).trim()", "trim", "java.lang.String", []string{}},
		{"stock.put", "put", "java.util.Map", []string{"Ljava.lang.String;", "Ljava.lang.Integer;"}},
		{"take(x -> true)", "take", "demo.Shop", []string{"Ljava.util.function.Predicate<Ljava.lang.String;>;"}},
		{`take("a", x -> true)`, "take", "demo.Shop", []string{"Ljava.lang.String;", "Ljava.util.function.Predicate<Ljava.lang.Integer;>;"}},
		{`log("fmt"`, "log", "demo.Shop", []string{"Ljava.lang.String;", "[Ljava.lang.Object;"}},
		{"java.util.Objects", "requireNonNull", "java.util.Objects", []string{"TT;"}},
		{"n.isEmpty()", "isEmpty", "java.lang.String", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.needle, func(t *testing.T) {
			call := callAt(t, file, shopSource, tt.needle, tt.name)
			assert.Equal(t, syntax.KindMethodInvocation, call.Kind)
			assert.Equal(t, tt.declaring, call.Binding.DeclaringType)
			assert.Equal(t, tt.params, params(call.Binding))
		})
	}

	log := callAt(t, file, shopSource, `log("fmt"`, "log")
	assert.True(t, log.Binding.Varargs)
	assert.Len(t, log.Arguments, 3)

	creation := callAt(t, file, shopSource, `new Shop("me")`, "Shop")
	assert.Equal(t, syntax.KindClassInstanceCreation, creation.Kind)
	assert.True(t, creation.Binding.Constructor)
	assert.Nil(t, creation.Binding.ReturnType)
	assert.Equal(t, []string{"Ljava.lang.String;"}, params(creation.Binding))

	unresolved := callAt(t, file, shopSource, "unknown.call(1)", "")
	assert.Nil(t, unresolved.Binding)
	assert.Len(t, unresolved.Arguments, 1)
}

func TestParser_FileTypesAndOverlay(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	base := jdkProject(t)
	file, overlay := parse(t, p, base, shopSource, -1)

	assert.Equal(t, "demo", file.Package)
	assert.Len(t, file.Imports, 4)
	require.Len(t, file.Types, 1)
	assert.Equal(t, "demo.Shop", file.Types[0].QualifiedName)

	assert.True(t, overlay.HasType("demo.Shop"))
	assert.False(t, base.HasType("demo.Shop"), "the base project is not modified")

	enclosing := file.EnclosingType(strings.Index(shopSource, "names.add"))
	require.NotNil(t, enclosing)
	assert.Equal(t, "demo.Shop", enclosing.QualifiedName)
	assert.Nil(t, file.EnclosingType(0))
}

const java8Source = `package completion.test;
public class Java8 {
  public void test(java.util.function.Predicate<String> p) {
  }
  public void foo() {
    test($)
  }
}
`

func TestParser_RecoveredCallInfersExpectedType(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	proj := jdkProject(t)

	tests := []struct {
		name   string
		source string
	}{
		{"empty argument list", java8Source},
		{"dangling new", strings.Replace(java8Source, "test($)", "test(new $)", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, offset := document.ExtractMarker(tt.source, "$")
			file, overlay := parse(t, p, proj, text, offset)

			req := infer.Request{Offset: offset, PrecedingSpace: infer.PrecedingSpace(document.FromString(text), offset, nil)}
			expected := infer.New(overlay, nil).Infer(file.Root, req)
			require.NotNil(t, expected)
			assert.Equal(t, "java.util.function.Predicate", expected.QualifiedName())
			assert.Equal(t, "Ljava.util.function.Predicate<Ljava.lang.String;>;", expected.Signature)
		})
	}
}

func TestParser_PlaceholderIsNotACall(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	source := strings.Replace(java8Source, "test($)", "test(new $)", 1)
	text, offset := document.ExtractMarker(source, "$")
	file, _ := parse(t, p, jdkProject(t), text, offset)

	call := callAt(t, file, text, "test(new", "test")
	require.Len(t, call.Arguments, 1)
	arg := call.Arguments[0]
	assert.Equal(t, syntax.KindOther, arg.Kind)
	assert.Equal(t, offset-len("new "), arg.Span.Start)
	assert.Equal(t, offset, arg.Span.End)
	assert.Equal(t, strings.Index(text, "test(new")+len("test(new )"), call.Span.End, "spans map back to the edited text")
}

func TestParser_NestedAndAnonymous(t *testing.T) {
	source := `package demo;
import java.util.function.Function;
public class Outer {
    static class Inner {
        void inner(String s) {}
        void go() { inner("x"); }
    }
    void outer(Integer i) {}
    void go() {
        Runnable r = new Runnable() {
            public void run() { outer(1); }
        };
    }
}
`
	p, err := New()
	require.NoError(t, err)
	file, _ := parse(t, p, jdkProject(t), source, -1)

	names := map[string]bool{}
	for _, ty := range file.Types {
		names[ty.QualifiedName] = true
	}
	assert.Equal(t, map[string]bool{"demo.Outer": true, "demo.Outer.Inner": true}, names)

	inner := callAt(t, file, source, `inner("x")`, "inner")
	assert.Equal(t, "demo.Outer.Inner", inner.Binding.DeclaringType)

	outer := callAt(t, file, source, "outer(1)", "outer")
	assert.Equal(t, "demo.Outer", outer.Binding.DeclaringType, "anonymous bodies still see enclosing members")

	anon := callAt(t, file, source, "new Runnable()", "Runnable")
	assert.Empty(t, anon.Binding.Parameters)
}

func TestParser_Cache(t *testing.T) {
	p, err := New(WithCacheSize(2))
	require.NoError(t, err)
	proj := jdkProject(t)

	parse(t, p, proj, java8Source, -1)
	parse(t, p, proj, java8Source, -1)
	assert.Equal(t, 1, p.cache.Len())

	parse(t, p, proj, strings.Replace(java8Source, "test($)", "test(new )", 1), strings.Index(java8Source, "$")+len("new "))
	assert.Equal(t, 2, p.cache.Len())
}

func TestParser_NoProject(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	_, _, err = p.Parse(context.Background(), syntax.Source{Text: []byte(java8Source), Cursor: -1}, nil)
	assert.ErrorIs(t, err, ErrNoProject)
}
