package subtype

import (
	"context"
	"slices"
	"testing"
	"time"

	"smartassist/internal/completion"
	"smartassist/internal/extractor"
	"smartassist/internal/infer"
	"smartassist/internal/project"
	"smartassist/internal/syntax"
	"smartassist/internal/textrange"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoSource = `package demo;

import java.util.Comparator;

public class ByLength implements Comparator<String> {
    public int compare(String a, String b) { return 0; }
}

public class ByValue implements Comparator<Integer> {
    public int compare(Integer a, Integer b) { return 0; }
}

class Hidden implements Runnable {
    public void run() {}
}

public class Outer {
    public class Inner implements Runnable {
        public void run() {}
    }
    public static class Nested implements Runnable {
        public void run() {}
    }
}

public abstract class Task implements Runnable {
}

public class Sealed implements Runnable {
    private Sealed() {}
    public void run() {}
}
`

func demoProject(t *testing.T) *project.Project {
	t.Helper()
	ext, err := extractor.NewExtractor("java")
	require.NoError(t, err)
	units, err := ext.ExtractFromSource(context.Background(), "demo/Demo.java", []byte(demoSource))
	require.NoError(t, err)
	p, err := project.Build(context.Background(), units)
	require.NoError(t, err)
	return p
}

func invocation(t *testing.T, p *project.Project, qname, sig string, file *syntax.File) *completion.Invocation {
	t.Helper()
	sym, err := p.FindType(qname)
	require.NoError(t, err)
	return &completion.Invocation{
		Context:  &completion.Context{Offset: 42, Project: p},
		Expected: &infer.Expected{Type: sym, Signature: sig},
		File:     file,
		Project:  p,
	}
}

func labels(props []completion.Proposal) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.Label
	}
	return out
}

func byLabel(props []completion.Proposal, label string) (completion.Proposal, bool) {
	for _, p := range props {
		if p.Label == label {
			return p, true
		}
	}
	return completion.Proposal{}, false
}

func TestFinder_GenericList(t *testing.T) {
	p := demoProject(t)
	inv := invocation(t, p, "java.util.List", "Ljava.util.List<Ljava.lang.String;>;", nil)

	props := slices.Collect(New(nil).Find(context.Background(), inv, time.Second))

	got := labels(props)
	assert.Contains(t, got, "ArrayList - java.util")
	assert.Contains(t, got, "LinkedList - java.util")
	assert.Contains(t, got, "Stack - java.util")
	assert.NotContains(t, got, "List - java.util", "interfaces are not proposed")
	assert.NotContains(t, got, "AbstractList - java.util", "abstract classes are not proposed")

	arrayList, ok := byLabel(props, "ArrayList - java.util")
	require.True(t, ok)
	assert.Equal(t, "ArrayList<>()", arrayList.Completion)
	assert.Equal(t, completion.KindConstructor, arrayList.Kind)
	assert.Equal(t, []string{"java.util.ArrayList"}, arrayList.Imports)
	assert.Equal(t, textrange.New(42, 42), arrayList.Replace)
	assert.Equal(t, 90, arrayList.Relevance)

	stack, ok := byLabel(props, "Stack - java.util")
	require.True(t, ok)
	assert.Less(t, stack.Relevance, arrayList.Relevance, "deeper subtypes rank lower")
}

func TestFinder_TypeArgumentsMustMatch(t *testing.T) {
	p := demoProject(t)
	inv := invocation(t, p, "java.util.Comparator", "Ljava.util.Comparator<Ljava.lang.String;>;", nil)

	got := labels(slices.Collect(New(nil).Find(context.Background(), inv, time.Second)))
	assert.Contains(t, got, "ByLength - demo")
	assert.NotContains(t, got, "ByValue - demo")

	raw := invocation(t, p, "java.util.Comparator", "Ljava.util.Comparator;", nil)
	got = labels(slices.Collect(New(nil).Find(context.Background(), raw, time.Second)))
	assert.Contains(t, got, "ByLength - demo")
	assert.Contains(t, got, "ByValue - demo", "a raw expected type accepts any arguments")
}

func TestFinder_Visibility(t *testing.T) {
	p := demoProject(t)

	outside := invocation(t, p, "java.lang.Runnable", "Ljava.lang.Runnable;", &syntax.File{Package: "other"})
	props := slices.Collect(New(nil).Find(context.Background(), outside, time.Second))
	got := labels(props)
	assert.Contains(t, got, "Thread - java.lang")
	assert.Contains(t, got, "Outer.Nested - demo")
	assert.NotContains(t, got, "Hidden - demo", "package-private outside its package")
	assert.NotContains(t, got, "Outer.Inner - demo", "inner classes need an enclosing instance")
	assert.NotContains(t, got, "Task - demo")
	assert.NotContains(t, got, "Sealed - demo", "no accessible constructor")

	nested, ok := byLabel(props, "Outer.Nested - demo")
	require.True(t, ok)
	assert.Equal(t, "Outer.Nested()", nested.Completion)
	assert.Equal(t, []string{"demo.Outer"}, nested.Imports)

	thread, ok := byLabel(props, "Thread - java.lang")
	require.True(t, ok)
	assert.Empty(t, thread.Imports, "java.lang is implicitly imported")

	inside := invocation(t, p, "java.lang.Runnable", "Ljava.lang.Runnable;", &syntax.File{Package: "demo"})
	props = slices.Collect(New(nil).Find(context.Background(), inside, time.Second))
	hidden, ok := byLabel(props, "Hidden - demo")
	require.True(t, ok)
	assert.Equal(t, "Hidden()", hidden.Completion)
	assert.Empty(t, hidden.Imports)
	assert.Equal(t, 95, hidden.Relevance)
}

func TestFinder_ExistingImports(t *testing.T) {
	p := demoProject(t)
	file := &syntax.File{Package: "app", Imports: []extractor.Import{{Name: "java.util", OnDemand: true}}}
	inv := invocation(t, p, "java.util.List", "Ljava.util.List;", file)

	props := slices.Collect(New(nil).Find(context.Background(), inv, time.Second))
	arrayList, ok := byLabel(props, "ArrayList - java.util")
	require.True(t, ok)
	assert.Empty(t, arrayList.Imports)
}

func TestFinder_Stops(t *testing.T) {
	p := demoProject(t)
	inv := invocation(t, p, "java.util.List", "Ljava.util.List;", nil)
	f := New(nil)

	t.Run("budget", func(t *testing.T) {
		assert.Empty(t, slices.Collect(f.Find(context.Background(), inv, 0)))
	})

	t.Run("context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Empty(t, slices.Collect(f.Find(ctx, inv, time.Second)))
	})

	t.Run("consumer", func(t *testing.T) {
		var n int
		for range f.Find(context.Background(), inv, time.Second) {
			n++
			break
		}
		assert.Equal(t, 1, n)
	})

	t.Run("no expected type", func(t *testing.T) {
		assert.Empty(t, slices.Collect(f.Find(context.Background(), &completion.Invocation{}, time.Second)))
	})
}
