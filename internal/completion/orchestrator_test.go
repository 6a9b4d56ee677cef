package completion

import (
	"context"
	"errors"
	"iter"
	"slices"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartassist/internal/document"
	"smartassist/internal/graph"
	"smartassist/internal/project"
	"smartassist/internal/syntax"
	"smartassist/internal/textrange"
)

type fakeTrees struct {
	file   *syntax.File
	proj   *project.Project
	err    error
	calls  int
	cursor int
}

func (f *fakeTrees) Parse(_ context.Context, src syntax.Source, _ *project.Project) (*syntax.File, *project.Project, error) {
	f.calls++
	f.cursor = src.Cursor
	return f.file, f.proj, f.err
}

type fakeSearch struct {
	proposals   []Proposal
	calls       int
	budget      time.Duration
	hasDeadline bool
	inv         *Invocation
}

func (f *fakeSearch) Find(ctx context.Context, inv *Invocation, budget time.Duration) iter.Seq[Proposal] {
	f.calls++
	f.budget = budget
	f.inv = inv
	_, f.hasDeadline = ctx.Deadline()
	return slices.Values(f.proposals)
}

func testProject(names ...string) *project.Project {
	g := graph.NewGraph()
	for _, n := range names {
		g.AddSymbol(&graph.TypeSymbol{ID: n, QualifiedName: n, Kind: graph.KindClass})
	}
	g.LinkRelations()
	return project.New(g)
}

// callTree is a file with a single call spanning text whose only parameter
// has type param.
func callTree(text, param string) *syntax.File {
	call := &syntax.Node{
		Kind: syntax.KindMethodInvocation,
		Span: textrange.New(0, len(text)),
		Binding: &syntax.MethodBinding{
			Name:       "f",
			Parameters: []*syntax.TypeBinding{{Signature: param}},
		},
	}
	return &syntax.File{Package: "demo", Root: &syntax.Node{Span: textrange.New(0, len(text)), Children: []*syntax.Node{call}}}
}

func request(text string, offset int, p *project.Project) *Context {
	return &Context{
		Source:   syntax.Source{Path: "demo/A.java", Text: []byte(text)},
		Document: document.FromString(text),
		Offset:   offset,
		Project:  p,
	}
}

var shapeProposal = Proposal{Label: "Circle - demo", Completion: "Circle()", Relevance: 90, Kind: KindConstructor}

func TestOrchestrator_Budget(t *testing.T) {
	assert.Equal(t, 3*time.Second, NewOrchestrator(nil, nil).Budget())
	assert.Equal(t, 500*time.Millisecond, NewOrchestrator(nil, nil, WithTimeout(2500*time.Millisecond)).Budget())
	assert.Equal(t, time.Duration(0), NewOrchestrator(nil, nil, WithTimeout(time.Second)).Budget(), "never negative")
}

func TestOrchestrator_ComputeProposals(t *testing.T) {
	const text = "f(new )"
	p := testProject("demo.Shape")
	trees := &fakeTrees{file: callTree(text, "Ldemo.Shape;"), proj: p}
	search := &fakeSearch{proposals: []Proposal{shapeProposal}}
	o := NewOrchestrator(trees, search)

	got := o.ComputeProposals(context.Background(), request(text, 6, p))

	assert.Equal(t, []Proposal{shapeProposal}, got)
	assert.Equal(t, 6, trees.cursor, "the cursor is passed to the parser")
	assert.Equal(t, 3*time.Second, search.budget)
	assert.True(t, search.hasDeadline)
	require.NotNil(t, search.inv)
	assert.Equal(t, "demo.Shape", search.inv.Expected.QualifiedName())
	assert.Equal(t, "demo", search.inv.Package())
}

func TestOrchestrator_RequiresNew(t *testing.T) {
	const text = "f(x)"
	p := testProject("demo.Shape")
	search := &fakeSearch{proposals: []Proposal{shapeProposal}}
	o := NewOrchestrator(&fakeTrees{file: callTree(text, "Ldemo.Shape;"), proj: p}, search)

	got := o.ComputeProposals(context.Background(), request(text, 2, p))
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, search.calls)

	assert.NotNil(t, o.ExpectedType(context.Background(), request(text, 2, p)), "the expected type is still resolved")
}

func TestOrchestrator_ExcludedTypes(t *testing.T) {
	const text = "f(new )"
	p := testProject("java.lang.Object", "demo.Shape")
	search := &fakeSearch{proposals: []Proposal{shapeProposal}}

	o := NewOrchestrator(&fakeTrees{file: callTree(text, "Ljava.lang.Object;"), proj: p}, search)
	assert.Empty(t, o.ComputeProposals(context.Background(), request(text, 6, p)))
	assert.Zero(t, search.calls)

	custom := NewOrchestrator(&fakeTrees{file: callTree(text, "Ldemo.Shape;"), proj: p}, search, WithExcludedTypes("demo.Shape"))
	assert.Empty(t, custom.ComputeProposals(context.Background(), request(text, 6, p)))
	assert.True(t, custom.IsExcluded("demo.Shape"))
	assert.False(t, custom.IsExcluded("java.lang.Object"), "options replace the default set")
}

func TestOrchestrator_FastPath(t *testing.T) {
	const text = "f(new )"
	p := testProject("demo.Shape", "java.lang.String")
	shape, err := p.FindType("demo.Shape")
	require.NoError(t, err)

	trees := &fakeTrees{err: errors.New("must not parse")}
	search := &fakeSearch{proposals: []Proposal{shapeProposal}}
	o := NewOrchestrator(trees, search)

	c := request(text, 6, p)
	c.ExpectedType = shape
	assert.Equal(t, []Proposal{shapeProposal}, o.ComputeProposals(context.Background(), c))
	assert.Zero(t, trees.calls)
	require.NotNil(t, search.inv)
	assert.Equal(t, "Ldemo.Shape;", search.inv.Expected.Signature)
	assert.Nil(t, search.inv.File)

	c.ExpectedSignature = "Ldemo.Shape<Ljava.lang.String;>;"
	o.ComputeProposals(context.Background(), c)
	assert.Equal(t, "Ldemo.Shape<Ljava.lang.String;>;", search.inv.Expected.Signature)

	str, err := p.FindType("java.lang.String")
	require.NoError(t, err)
	c.ExpectedType = str
	assert.Nil(t, o.ExpectedType(context.Background(), c), "excluded on the fast path too")
}

func TestOrchestrator_ParseFailure(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	search := &fakeSearch{}
	o := NewOrchestrator(&fakeTrees{err: errors.New("boom")}, search, WithLogger(log))

	got := o.ComputeProposals(context.Background(), request("f(new )", 6, testProject()))
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, search.calls)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "demo/A.java", hook.LastEntry().Data["path"])
}

func TestOrchestrator_NoExpectedType(t *testing.T) {
	const text = "f(new )"
	p := testProject()
	search := &fakeSearch{}
	o := NewOrchestrator(&fakeTrees{file: callTree(text, "Ldemo.Missing;"), proj: p}, search)

	assert.Empty(t, o.ComputeProposals(context.Background(), request(text, 6, p)))
	assert.Nil(t, o.ExpectedType(context.Background(), request(text, 6, p)))
	assert.Zero(t, search.calls)
}

type staticComputer []Proposal

func (s staticComputer) Compute(context.Context, *Context) []Proposal { return s }

func TestEngine_Complete(t *testing.T) {
	e := NewEngine(
		staticComputer{{Label: "a", Relevance: 90}, {Label: "b", Relevance: 110}},
		staticComputer{{Label: "c", Relevance: 90}},
		staticComputer(nil),
	)
	got := e.Complete(context.Background(), &Context{})

	var order []string
	for _, p := range got {
		order = append(order, p.Label)
	}
	assert.Equal(t, []string{"b", "a", "c"}, order)

	assert.Equal(t, []Proposal{}, NewEngine().Complete(context.Background(), &Context{}))
}

func TestIdentifierPrefix(t *testing.T) {
	tests := []struct {
		text   string
		offset int
		want   string
	}{
		{"test(isEmp)", 10, "isEmp"},
		{"test()", 5, ""},
		{"test(a.b)", 8, "b"},
		{"f(12)", 4, ""},
		{"isEmp", 5, "isEmp"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, identifierPrefix(document.FromString(tt.text), tt.offset), tt.text)
	}
}
