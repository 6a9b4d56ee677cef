package graph

func (g *Graph) UnresolvedReasonCounts() map[UnresolvedReason]int {
	counts := make(map[UnresolvedReason]int)
	if g == nil {
		return counts
	}
	for _, u := range g.Unresolved {
		reason := u.Reason
		if reason == "" {
			reason = ReasonNoCandidate
		}
		counts[reason]++
	}
	return counts
}

// KindCounts returns the number of nodes per type kind.
func (g *Graph) KindCounts() map[TypeKind]int {
	counts := make(map[TypeKind]int)
	if g == nil {
		return counts
	}
	for _, n := range g.Nodes {
		counts[n.Symbol.Kind]++
	}
	return counts
}
