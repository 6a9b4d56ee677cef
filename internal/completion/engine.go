package completion

import (
	"context"
	"sort"
)

// Engine runs several computers and merges their proposals.
type Engine struct {
	computers []Computer
}

func NewEngine(computers ...Computer) *Engine {
	return &Engine{computers: computers}
}

// Complete returns every computer's proposals ordered by descending
// relevance. Ties keep computer order.
func (e *Engine) Complete(ctx context.Context, c *Context) []Proposal {
	out := []Proposal{}
	for _, comp := range e.computers {
		if ctx.Err() != nil {
			break
		}
		out = append(out, comp.Compute(ctx, c)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Relevance > out[j].Relevance
	})
	return out
}
