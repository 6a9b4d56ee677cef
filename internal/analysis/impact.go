package analysis

import (
	"sort"

	"smartassist/internal/git"
	"smartassist/internal/graph"
)

// ImpactReport summarizes the types affected by changes.
type ImpactReport struct {
	// DirectlyAffected are declared in a changed range.
	DirectlyAffected []*graph.TypeSymbol
	// IndirectlyAffected are subtypes of a direct one; they inherit its
	// members and may now be proposed for different expected types.
	IndirectlyAffected []*graph.TypeSymbol
}

// Analyzer performs impact analysis on the type graph.
type Analyzer struct {
	g *graph.Graph
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(g *graph.Graph) *Analyzer {
	return &Analyzer{g: g}
}

// AnalyzeImpact identifies which types are affected by the given changes.
// Line numbers refer to the new version of each file, so g should be the
// updated graph.
func (a *Analyzer) AnalyzeImpact(changes []git.ChangedFile) *ImpactReport {
	report := &ImpactReport{
		DirectlyAffected:   []*graph.TypeSymbol{},
		IndirectlyAffected: []*graph.TypeSymbol{},
	}

	byFile := make(map[string][]*graph.TypeSymbol)
	for _, n := range a.g.Nodes {
		byFile[n.Symbol.Filepath] = append(byFile[n.Symbol.Filepath], n.Symbol)
	}

	seenDirect := make(map[string]bool)
	seenIndirect := make(map[string]bool)

	// 1. Find Direct Impacts
	for _, change := range changes {
		for _, sym := range byFile[change.Path] {
			if isAffected(sym, change.ChangedLines) && !seenDirect[sym.ID] {
				report.DirectlyAffected = append(report.DirectlyAffected, sym)
				seenDirect[sym.ID] = true
			}
		}
	}
	sortSymbols(report.DirectlyAffected)

	// 2. Find Indirect Impacts (subtypes)
	for _, sym := range report.DirectlyAffected {
		a.g.WalkSubtypes(sym.QualifiedName, func(s graph.Subtype) bool {
			id := s.Symbol.ID
			if !seenDirect[id] && !seenIndirect[id] {
				report.IndirectlyAffected = append(report.IndirectlyAffected, s.Symbol)
				seenIndirect[id] = true
			}
			return true
		})
	}
	sortSymbols(report.IndirectlyAffected)

	return report
}

// isAffected reports whether any changed line falls inside the declaration.
// nil lines mean the whole file is new.
func isAffected(sym *graph.TypeSymbol, lines []int) bool {
	if lines == nil {
		return true
	}
	for _, line := range lines {
		if line >= sym.StartLine && line <= sym.EndLine {
			return true
		}
	}
	return false
}

func sortSymbols(s []*graph.TypeSymbol) {
	sort.Slice(s, func(i, j int) bool { return s[i].QualifiedName < s[j].QualifiedName })
}
