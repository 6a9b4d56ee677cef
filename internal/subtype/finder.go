// Package subtype enumerates instantiable subtypes of an expected type as
// constructor proposals.
package subtype

import (
	"context"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"smartassist/internal/completion"
	"smartassist/internal/extractor"
	"smartassist/internal/graph"
	"smartassist/internal/signature"
	"smartassist/internal/textrange"
)

const (
	baseRelevance   = 100
	depthPenalty    = 10
	samePackageBump = 5
)

// Finder implements completion.SubtypeSearcher over the project type graph.
type Finder struct {
	log logrus.FieldLogger
}

func New(log logrus.FieldLogger) *Finder {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Finder{log: log}
}

// Find walks the subtypes of the expected type breadth first, the type
// itself included. It stops when ctx is done, budget elapses or the
// consumer stops.
func (f *Finder) Find(ctx context.Context, inv *completion.Invocation, budget time.Duration) iter.Seq[completion.Proposal] {
	return func(yield func(completion.Proposal) bool) {
		if inv == nil || inv.Expected == nil || inv.Project == nil {
			return
		}
		deadline := time.Now().Add(budget)
		expected := inv.Expected
		generic := len(signature.TypeArguments(expected.Signature)) > 0
		g := inv.Project.Graph()

		var visited, proposed int
		var timedOut bool
		g.WalkSubtypes(expected.QualifiedName(), func(s graph.Subtype) bool {
			if ctx.Err() != nil || !time.Now().Before(deadline) {
				timedOut = true
				return false
			}
			visited++
			if !f.candidate(g, s, inv.Package()) {
				return true
			}
			if generic && s.Depth > 0 && !signature.IsAssignable(s.RootEdge.Signature, expected.Signature) {
				return true
			}
			proposed++
			return yield(proposal(s, inv))
		})

		f.log.WithFields(logrus.Fields{
			"expected":  expected.QualifiedName(),
			"visited":   visited,
			"proposed":  proposed,
			"timed_out": timedOut,
		}).Debug("subtype search done")
	}
}

// candidate reports whether `new T()` can be written for s from pkg.
func (f *Finder) candidate(g *graph.Graph, s graph.Subtype, pkg string) bool {
	sym := s.Symbol
	if !sym.IsInstantiable() {
		return false
	}
	if !visibleFrom(sym, pkg) {
		return false
	}
	if sym.IsMemberType() && !sym.Modifiers.Has(graph.ModStatic) {
		outer := g.Lookup(sym.Outer)
		if outer == nil || outer.Kind != graph.KindInterface {
			return false
		}
	}
	return true
}

func visibleFrom(sym *graph.TypeSymbol, pkg string) bool {
	switch {
	case sym.Modifiers.Has(graph.ModPublic):
		return true
	case sym.Modifiers.Has(graph.ModPrivate):
		return false
	}
	return sym.Package == pkg
}

func proposal(s graph.Subtype, inv *completion.Invocation) completion.Proposal {
	sym := s.Symbol
	name := sourceName(sym)
	completionText := name + "()"
	if len(sym.TypeParameters) > 0 {
		completionText = name + "<>()"
	}

	relevance := baseRelevance - depthPenalty*s.Depth
	if sym.Package == inv.Package() {
		relevance += samePackageBump
	}

	p := completion.Proposal{
		Label:      sym.Hint(),
		Completion: completionText,
		Relevance:  relevance,
		Kind:       completion.KindConstructor,
		Replace:    textrange.New(inv.Offset, inv.Offset),
	}
	if imp := importFor(sym, inv); imp != "" {
		p.Imports = []string{imp}
	}
	return p
}

// sourceName is the name that refers to sym once its top-level type is
// imported, e.g. "Map.Entry".
func sourceName(sym *graph.TypeSymbol) string {
	if sym.Package == "" {
		return sym.QualifiedName
	}
	return strings.TrimPrefix(sym.QualifiedName, sym.Package+".")
}

// importFor returns the import needed to use sym in the edited file, or "".
func importFor(sym *graph.TypeSymbol, inv *completion.Invocation) string {
	if sym.Package == "" || sym.Package == "java.lang" {
		return ""
	}
	var imports []extractor.Import
	if inv.File != nil {
		if sym.Package == inv.File.Package {
			return ""
		}
		imports = inv.File.Imports
	}
	top, _, _ := strings.Cut(sourceName(sym), ".")
	qname := sym.Package + "." + top
	for _, imp := range imports {
		if imp.Static {
			continue
		}
		if imp.OnDemand && imp.Name == sym.Package || !imp.OnDemand && imp.Name == qname {
			return ""
		}
	}
	return qname
}
