package completion

import (
	"context"
	"fmt"
	"strings"

	"smartassist/internal/graph"
	"smartassist/internal/infer"
	"smartassist/internal/project"
	"smartassist/internal/signature"
	"smartassist/internal/textrange"
)

const (
	relevanceLambda      = 110
	relevanceBlockLambda = 105
)

var methodRefRelevance = map[string]int{
	"public":    90,
	"protected": 80,
	"package":   70,
	"private":   60,
}

// LambdaComputer proposes lambdas and method references when the expected
// type is a functional interface.
type LambdaComputer struct {
	orch *Orchestrator
}

func NewLambdaComputer(orch *Orchestrator) *LambdaComputer {
	return &LambdaComputer{orch: orch}
}

func (l *LambdaComputer) Compute(ctx context.Context, c *Context) []Proposal {
	if !l.shouldCompute(c) {
		return nil
	}
	inv := l.orch.Resolve(ctx, c)
	if inv == nil {
		return nil
	}
	fn, ok := inv.Project.FunctionalMethod(inv.Expected.Signature)
	if !ok {
		return nil
	}

	prefix := identifierPrefix(c.Document, c.Offset)
	replace := textrange.New(c.Offset-len(prefix), c.Offset)

	var out []Proposal
	if prefix == "" {
		out = append(out, lambdaProposals(fn, replace)...)
	}

	if inv.File == nil {
		parsed, err := l.orch.Parse(ctx, c)
		if err != nil {
			l.orch.log.WithError(err).Debug("method references skipped")
			return out
		}
		inv.File, inv.Project = parsed.File, parsed.Project
	}
	enclosing := inv.File.EnclosingType(c.Offset)
	if enclosing == nil {
		return out
	}
	return append(out, methodRefProposals(inv.Project, enclosing, fn, prefix, replace)...)
}

// shouldCompute is false right after a member access dot.
func (l *LambdaComputer) shouldCompute(c *Context) bool {
	text, err := c.Document.Get(c.Offset-1, 1)
	if err != nil {
		l.orch.log.WithError(err).WithField("offset", c.Offset).Warn("cannot read preceding character")
		return false
	}
	return text != "."
}

func lambdaProposals(fn project.Method, replace textrange.Range) []Proposal {
	n := len(fn.Parameters)
	dots := strings.TrimSuffix(strings.Repeat(".,", n), ",")

	args := make([]string, n)
	for i := range args {
		args[i] = fmt.Sprintf("arg%d", i)
	}
	head := "(" + strings.Join(args, ", ") + ")"
	if n == 1 {
		head = args[0]
	}

	return []Proposal{
		{
			Label:      "(" + dots + ") ->",
			Completion: head + " -> ",
			Relevance:  relevanceLambda,
			Kind:       KindLambda,
			Replace:    replace,
		},
		{
			Label:      "(" + dots + ") -> {}",
			Completion: head + " -> {}",
			Relevance:  relevanceBlockLambda,
			Kind:       KindLambda,
			Replace:    replace,
		},
	}
}

func methodRefProposals(p *project.Project, enclosing *graph.TypeSymbol, fn project.Method, prefix string, replace textrange.Range) []Proposal {
	var out []Proposal
	for _, m := range p.MethodsOf(enclosing.Signature()) {
		if !strings.HasPrefix(m.Name, prefix) {
			continue
		}
		if m.Modifiers.Has(graph.ModPrivate) && m.Declaring.QualifiedName != enclosing.QualifiedName {
			continue
		}
		if !accepts(m, fn) {
			continue
		}
		target := "this"
		if m.Modifiers.Has(graph.ModStatic) {
			target = enclosing.Name
		}
		ref := target + "::" + m.Name
		out = append(out, Proposal{
			Label:      ref,
			Completion: ref,
			Relevance:  methodRefRelevance[m.Modifiers.Visibility()],
			Kind:       KindMethodRef,
			Replace:    replace,
		})
	}
	return out
}

// accepts reports whether m can implement the functional method fn.
func accepts(m, fn project.Method) bool {
	if len(m.Parameters) != len(fn.Parameters) {
		return false
	}
	for i, p := range fn.Parameters {
		if !signature.IsAssignable(bound(p.Type), bound(m.Parameters[i].Type)) {
			return false
		}
	}
	want := bound(fn.ReturnType)
	switch {
	case want == "V", signature.IsTypeVariable(want):
		return true
	case m.ReturnType == "V":
		return false
	}
	return signature.IsAssignable(bound(m.ReturnType), want)
}

// bound strips a wildcard marker from sig.
func bound(sig string) string {
	if sig != "" && (sig[0] == signature.Extends || sig[0] == signature.Super) {
		return sig[1:]
	}
	return sig
}

// identifierPrefix returns the Java identifier characters directly before
// offset.
func identifierPrefix(doc infer.Document, offset int) string {
	start := offset
	for start > 0 {
		ch, err := doc.Get(start-1, 1)
		if err != nil || !isIdentifierPart(ch[0]) {
			break
		}
		start--
	}
	if start == offset {
		return ""
	}
	text, err := doc.Get(start, offset-start)
	if err != nil {
		return ""
	}
	if text[0] >= '0' && text[0] <= '9' {
		return ""
	}
	return text
}

func isIdentifierPart(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
