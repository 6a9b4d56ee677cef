package completion

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"smartassist/internal/infer"
)

const (
	// DefaultTimeout mirrors the host's code assist timeout.
	DefaultTimeout = 5000 * time.Millisecond
	// safetyMargin is kept free so the search ends before the host aborts.
	safetyMargin = 2 * time.Second

	newKeyword = "new "
)

// DefaultExcludedTypes are too broad for useful subtype suggestions.
var DefaultExcludedTypes = []string{
	"java.lang.String",
	"java.lang.Object",
	"java.lang.Cloneable",
	"java.lang.Throwable",
	"java.lang.Exception",
}

// Orchestrator proposes constructors of subtypes of the expected type
// after `new `.
type Orchestrator struct {
	trees    TreeProvider
	search   SubtypeSearcher
	timeout  time.Duration
	excluded map[string]bool
	log      logrus.FieldLogger
}

type Option func(*Orchestrator)

func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

func WithExcludedTypes(names ...string) Option {
	return func(o *Orchestrator) {
		o.excluded = make(map[string]bool, len(names))
		for _, n := range names {
			o.excluded[n] = true
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

func NewOrchestrator(trees TreeProvider, search SubtypeSearcher, opts ...Option) *Orchestrator {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	o := &Orchestrator{
		trees:   trees,
		search:  search,
		timeout: DefaultTimeout,
		log:     discard,
	}
	WithExcludedTypes(DefaultExcludedTypes...)(o)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Budget is the time granted to the subtype search.
func (o *Orchestrator) Budget() time.Duration {
	return max(o.timeout-safetyMargin, 0)
}

// IsExcluded reports whether qualifiedName is in the excluded set.
func (o *Orchestrator) IsExcluded(qualifiedName string) bool {
	return o.excluded[qualifiedName]
}

// Parse parses the request's compilation unit with the cursor at c.Offset.
// The returned invocation has no expected type yet.
func (o *Orchestrator) Parse(ctx context.Context, c *Context) (*Invocation, error) {
	src := c.Source
	src.Cursor = c.Offset
	file, proj, err := o.trees.Parse(ctx, src, c.Project)
	if err != nil {
		return nil, err
	}
	return &Invocation{Context: c, File: file, Project: proj}, nil
}

// Resolve determines the expected type at the cursor. It returns nil when
// no expected type is found or when it is excluded.
func (o *Orchestrator) Resolve(ctx context.Context, c *Context) *Invocation {
	if c.ExpectedType != nil {
		if o.IsExcluded(c.ExpectedType.QualifiedName) {
			return nil
		}
		sig := c.ExpectedSignature
		if sig == "" {
			sig = c.ExpectedType.Signature()
		}
		return &Invocation{
			Context:  c,
			Expected: &infer.Expected{Type: c.ExpectedType, Signature: sig},
			Project:  c.Project,
		}
	}

	inv, err := o.Parse(ctx, c)
	if err != nil {
		o.log.WithError(err).WithField("path", c.Source.Path).Warn("failed to parse compilation unit")
		return nil
	}
	req := infer.Request{
		Offset:         c.Offset,
		PrecedingSpace: infer.PrecedingSpace(c.Document, c.Offset, o.log),
	}
	expected := infer.New(inv.Project, o.log).Infer(inv.File.Root, req)
	if expected == nil || o.IsExcluded(expected.QualifiedName()) {
		return nil
	}
	inv.Expected = expected
	return inv
}

// ExpectedType returns the expected type at the cursor, or nil.
func (o *Orchestrator) ExpectedType(ctx context.Context, c *Context) *infer.Expected {
	inv := o.Resolve(ctx, c)
	if inv == nil {
		return nil
	}
	return inv.Expected
}

// ComputeProposals returns subtype constructor proposals, or an empty list
// when there is no usable expected type or the cursor does not follow `new `.
func (o *Orchestrator) ComputeProposals(ctx context.Context, c *Context) []Proposal {
	inv := o.Resolve(ctx, c)
	if inv == nil {
		return []Proposal{}
	}
	if !o.precededByNew(c) {
		return []Proposal{}
	}

	budget := o.Budget()
	searchCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	proposals := slices.Collect(o.search.Find(searchCtx, inv, budget))
	if proposals == nil {
		proposals = []Proposal{}
	}
	return proposals
}

// Compute implements Computer.
func (o *Orchestrator) Compute(ctx context.Context, c *Context) []Proposal {
	return o.ComputeProposals(ctx, c)
}

func (o *Orchestrator) precededByNew(c *Context) bool {
	if c.Offset < len(newKeyword) {
		return false
	}
	text, err := c.Document.Get(c.Offset-len(newKeyword), len(newKeyword))
	if err != nil {
		o.log.WithError(err).WithField("offset", c.Offset).Warn("cannot read text before cursor")
		return false
	}
	return text == newKeyword
}
