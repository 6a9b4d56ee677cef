// Package completion computes smart completion proposals for a cursor
// inside a method or constructor argument list.
package completion

import (
	"context"
	"iter"
	"time"

	"smartassist/internal/graph"
	"smartassist/internal/infer"
	"smartassist/internal/project"
	"smartassist/internal/syntax"
	"smartassist/internal/textrange"
)

type Kind string

const (
	KindConstructor Kind = "constructor"
	KindLambda      Kind = "lambda"
	KindMethodRef   Kind = "method_ref"
)

// Proposal is one completion suggestion. Applying it replaces Replace with
// Completion and adds Imports to the compilation unit.
type Proposal struct {
	Label      string          `json:"label"`
	Completion string          `json:"completion"`
	Relevance  int             `json:"relevance"`
	Kind       Kind            `json:"kind"`
	Replace    textrange.Range `json:"replace"`
	Imports    []string        `json:"imports,omitempty"`
}

// Context is one completion request.
type Context struct {
	Source   syntax.Source
	Document infer.Document
	Offset   int
	Project  *project.Project

	// ExpectedType is set when the host already knows the expected type.
	// ExpectedSignature optionally carries its type arguments.
	ExpectedType      *graph.TypeSymbol
	ExpectedSignature string
}

// Invocation is a request together with its resolved expected type.
type Invocation struct {
	*Context
	Expected *infer.Expected
	// File is nil on the fast path.
	File *syntax.File
	// Project includes the declarations of the edited file once parsed.
	Project *project.Project
}

// Package returns the package of the edited file, "" when unknown.
func (inv *Invocation) Package() string {
	if inv.File == nil {
		return ""
	}
	return inv.File.Package
}

// TreeProvider parses a compilation unit into a resolved syntax tree. The
// returned project includes the unit's own declarations.
type TreeProvider interface {
	Parse(ctx context.Context, src syntax.Source, p *project.Project) (*syntax.File, *project.Project, error)
}

// SubtypeSearcher lazily enumerates proposals for subtypes of the expected
// type. It stops when ctx is done, the budget elapses or the consumer stops.
type SubtypeSearcher interface {
	Find(ctx context.Context, inv *Invocation, budget time.Duration) iter.Seq[Proposal]
}

// Computer produces proposals for one request.
type Computer interface {
	Compute(ctx context.Context, c *Context) []Proposal
}
