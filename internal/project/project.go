// Package project is the type resolution service: it owns the resolved type
// graph of a source tree plus the bundled JDK stubs.
package project

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"smartassist/internal/extractor"
	"smartassist/internal/graph"
	"smartassist/internal/resolver"
)

// ErrTypeNotFound is returned by FindType when no type has the given
// qualified name.
var ErrTypeNotFound = errors.New("type not found")

type Project struct {
	graph *graph.Graph
	chain *resolver.ResolverChain
	log   logrus.FieldLogger
}

type Option func(*Project)

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Project) {
		if log != nil {
			p.log = log
		}
	}
}

// WithChain sets the name resolution chain. Its stage stats accumulate over
// every unit the project resolves.
func WithChain(chain *resolver.ResolverChain) Option {
	return func(p *Project) {
		if chain != nil {
			p.chain = chain
		}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// New wraps an already linked graph, e.g. one loaded from storage.
func New(g *graph.Graph, opts ...Option) *Project {
	p := &Project{graph: g, chain: resolver.NewDefaultChain(), log: discardLogger()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Build resolves units together with the JDK stubs into a new project.
func Build(ctx context.Context, units []*extractor.TypeUnit, opts ...Option) (*Project, error) {
	jdk, err := JDKUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load jdk stubs: %w", err)
	}
	p := New(graph.NewGraph(), opts...)

	all := make([]*extractor.TypeUnit, 0, len(jdk)+len(units))
	all = append(all, jdk...)
	all = append(all, units...)

	names := nameSet{}
	for _, u := range all {
		names[u.QualifiedName] = true
	}
	for _, sym := range p.resolve(all, names) {
		p.graph.AddSymbol(sym)
	}
	p.graph.LinkRelations()

	p.log.WithFields(logrus.Fields{
		"types":      len(p.graph.Nodes),
		"edges":      len(p.graph.Edges),
		"unresolved": len(p.graph.Unresolved),
	}).Debug("project built")
	return p, nil
}

func (p *Project) resolve(units []*extractor.TypeUnit, universe resolver.Universe) []*graph.TypeSymbol {
	out := make([]*graph.TypeSymbol, 0, len(units))
	for _, u := range units {
		out = append(out, graph.FromTypeUnit(u, resolver.ForUnit(u, universe, p.chain)))
	}
	return out
}

// WithOverlay returns a project where units (typically the declarations of
// the file being edited) replace their indexed versions. p is unchanged.
func (p *Project) WithOverlay(units []*extractor.TypeUnit) *Project {
	if len(units) == 0 {
		return p
	}
	names := nameSet{}
	for _, u := range units {
		names[u.QualifiedName] = true
	}
	universe := overlayUniverse{base: p.graph, extra: names}
	return &Project{
		graph: p.graph.Overlay(p.resolve(units, universe)),
		chain: p.chain,
		log:   p.log,
	}
}

func (p *Project) Graph() *graph.Graph { return p.graph }

func (p *Project) Chain() *resolver.ResolverChain { return p.chain }

func (p *Project) Logger() logrus.FieldLogger { return p.log }

// FindType returns the type with the exact qualified name.
func (p *Project) FindType(qualifiedName string) (*graph.TypeSymbol, error) {
	if sym := p.graph.Lookup(qualifiedName); sym != nil {
		return sym, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, qualifiedName)
}

func (p *Project) HasType(qualifiedName string) bool {
	return p.graph.HasType(qualifiedName)
}

// Scope returns a name-resolution scope for code in pkg with imports.
func (p *Project) Scope(pkg string, imports []extractor.Import) *resolver.Scope {
	return resolver.NewScope(pkg, imports, p.graph, p.chain)
}

type nameSet map[string]bool

func (n nameSet) HasType(q string) bool { return n[q] }

type overlayUniverse struct {
	base  resolver.Universe
	extra nameSet
}

func (u overlayUniverse) HasType(q string) bool {
	return u.extra[q] || u.base.HasType(q)
}
