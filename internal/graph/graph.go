package graph

import (
	"sort"
	"strings"

	"smartassist/internal/signature"
)

// Node represents a vertex in the type graph.
type Node struct {
	Symbol *TypeSymbol
}

// Edge is a directed subtype -> supertype relationship. Signature keeps the
// supertype reference as written by the subtype, e.g. Ljava.util.List<TE;>;
// for `class ArrayList<E> implements List<E>`.
type Edge struct {
	From      string       // Subtype ID
	To        string       // Supertype ID
	Kind      RelationKind // extends or implements
	Signature string
}

// UnresolvedRelation is a supertype reference that did not match any node.
type UnresolvedRelation struct {
	From   string
	Target string
	Kind   RelationKind
	Reason UnresolvedReason
}

// Graph manages type symbols and their hierarchy. It is built once and then
// only read; Overlay returns a new graph instead of mutating.
type Graph struct {
	Nodes      map[string]*Node
	Edges      []Edge
	Unresolved []UnresolvedRelation

	// Qualified name -> ID
	qualifiedIndex map[string]string
	// Simple name -> []ID
	nameIndex map[string][]string
	// Supertype ID -> edges pointing at it
	subtypeIndex map[string][]Edge
	// Subtype ID -> its outgoing edges
	supertypeIndex map[string][]Edge
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:          make(map[string]*Node),
		Edges:          []Edge{},
		qualifiedIndex: make(map[string]string),
		nameIndex:      make(map[string][]string),
		subtypeIndex:   make(map[string][]Edge),
		supertypeIndex: make(map[string][]Edge),
	}
}

// AddSymbol adds a symbol as a node and indexes it. A symbol with the same
// qualified name as an existing node replaces it.
func (g *Graph) AddSymbol(sym *TypeSymbol) {
	if sym == nil {
		return
	}
	if oldID, ok := g.qualifiedIndex[sym.QualifiedName]; ok && oldID != sym.ID {
		delete(g.Nodes, oldID)
		g.nameIndex[sym.Name] = removeString(g.nameIndex[sym.Name], oldID)
	}
	if _, exists := g.Nodes[sym.ID]; !exists {
		g.nameIndex[sym.Name] = append(g.nameIndex[sym.Name], sym.ID)
	}
	g.Nodes[sym.ID] = &Node{Symbol: sym}
	g.qualifiedIndex[sym.QualifiedName] = sym.ID
}

// RebuildIndices recomputes the lookup indexes from Nodes and Edges. Needed
// after Nodes or Edges were assigned directly (e.g. when loading a snapshot).
func (g *Graph) RebuildIndices() {
	g.qualifiedIndex = make(map[string]string, len(g.Nodes))
	g.nameIndex = make(map[string][]string, len(g.Nodes))
	for id, n := range g.Nodes {
		g.qualifiedIndex[n.Symbol.QualifiedName] = id
		g.nameIndex[n.Symbol.Name] = append(g.nameIndex[n.Symbol.Name], id)
	}
	for name := range g.nameIndex {
		sort.Strings(g.nameIndex[name])
	}
	g.indexEdges()
}

func (g *Graph) indexEdges() {
	g.subtypeIndex = make(map[string][]Edge)
	g.supertypeIndex = make(map[string][]Edge)
	for _, e := range g.Edges {
		g.subtypeIndex[e.To] = append(g.subtypeIndex[e.To], e)
		g.supertypeIndex[e.From] = append(g.supertypeIndex[e.From], e)
	}
	for id := range g.subtypeIndex {
		edges := g.subtypeIndex[id]
		sort.SliceStable(edges, func(i, j int) bool {
			return g.qualifiedNameOf(edges[i].From) < g.qualifiedNameOf(edges[j].From)
		})
	}
}

// LinkRelations resolves every supertype reference to a node ID.
func (g *Graph) LinkRelations() {
	g.Edges = []Edge{}
	g.Unresolved = nil

	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, sourceID := range ids {
		sym := g.Nodes[sourceID].Symbol
		for _, rel := range sym.Supertypes {
			erased := signature.Erasure(rel.Target)
			if strings.HasPrefix(erased, string(signature.Unresolved)) {
				g.Unresolved = append(g.Unresolved, UnresolvedRelation{From: sourceID, Target: rel.Target, Kind: rel.Kind, Reason: ReasonUnresolvedName})
				continue
			}
			targetID, ok := g.qualifiedIndex[signature.QualifiedName(rel.Target)]
			if !ok {
				g.Unresolved = append(g.Unresolved, UnresolvedRelation{From: sourceID, Target: rel.Target, Kind: rel.Kind, Reason: ReasonNoCandidate})
				continue
			}
			g.Edges = append(g.Edges, Edge{From: sourceID, To: targetID, Kind: rel.Kind, Signature: rel.Target})
		}
	}
	g.indexEdges()
}

// Lookup returns the symbol with the given qualified name, or nil.
func (g *Graph) Lookup(qualifiedName string) *TypeSymbol {
	id, ok := g.qualifiedIndex[qualifiedName]
	if !ok {
		return nil
	}
	return g.Nodes[id].Symbol
}

// LookupSimple returns every symbol whose simple name matches.
func (g *Graph) LookupSimple(name string) []*TypeSymbol {
	var out []*TypeSymbol
	for _, id := range g.nameIndex[name] {
		if n, ok := g.Nodes[id]; ok {
			out = append(out, n.Symbol)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QualifiedName < out[j].QualifiedName })
	return out
}

// HasType reports whether a type with the qualified name exists.
func (g *Graph) HasType(qualifiedName string) bool {
	_, ok := g.qualifiedIndex[qualifiedName]
	return ok
}

// DirectSubtypes returns the edges of types that directly extend or
// implement qualifiedName.
func (g *Graph) DirectSubtypes(qualifiedName string) []Edge {
	id, ok := g.qualifiedIndex[qualifiedName]
	if !ok {
		return nil
	}
	return g.subtypeIndex[id]
}

// Subtype is one step of a hierarchy walk.
type Subtype struct {
	Symbol *TypeSymbol
	Depth  int
	// RootEdge is the edge of this branch that points at the walk root.
	// Zero for the root itself.
	RootEdge Edge
}

// WalkSubtypes visits the root and then its transitive subtypes breadth
// first. Each type is visited once. The walk stops when fn returns false.
func (g *Graph) WalkSubtypes(qualifiedName string, fn func(Subtype) bool) {
	rootID, ok := g.qualifiedIndex[qualifiedName]
	if !ok {
		return
	}
	seen := map[string]bool{rootID: true}
	queue := []Subtype{{Symbol: g.Nodes[rootID].Symbol}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !fn(cur) {
			return
		}
		curID := g.qualifiedIndex[cur.Symbol.QualifiedName]
		for _, e := range g.subtypeIndex[curID] {
			if seen[e.From] {
				continue
			}
			seen[e.From] = true
			rootEdge := cur.RootEdge
			if cur.Depth == 0 {
				rootEdge = e
			}
			queue = append(queue, Subtype{Symbol: g.Nodes[e.From].Symbol, Depth: cur.Depth + 1, RootEdge: rootEdge})
		}
	}
}

// Supertypes returns the transitive supertypes of qualifiedName, nearest
// first, together with the edge that reached each one.
func (g *Graph) Supertypes(qualifiedName string) []Edge {
	id, ok := g.qualifiedIndex[qualifiedName]
	if !ok {
		return nil
	}
	var out []Edge
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.supertypeIndex[cur] {
			if seen[e.To] {
				continue
			}
			seen[e.To] = true
			out = append(out, e)
			queue = append(queue, e.To)
		}
	}
	return out
}

// Overlay returns a copy of g where symbols replace the nodes with the same
// qualified name. g is left untouched.
func (g *Graph) Overlay(symbols []*TypeSymbol) *Graph {
	out := NewGraph()
	for _, n := range g.Nodes {
		out.AddSymbol(n.Symbol)
	}
	for _, s := range symbols {
		out.AddSymbol(s)
	}
	out.LinkRelations()
	return out
}

// Without returns a copy of g without the types declared in files. Edges
// of the remaining types are relinked; g is left untouched.
func (g *Graph) Without(files ...string) *Graph {
	drop := make(map[string]bool, len(files))
	for _, f := range files {
		drop[f] = true
	}
	out := NewGraph()
	for _, n := range g.Nodes {
		if !drop[n.Symbol.Filepath] {
			out.AddSymbol(n.Symbol)
		}
	}
	out.LinkRelations()
	return out
}

func (g *Graph) qualifiedNameOf(id string) string {
	if n, ok := g.Nodes[id]; ok {
		return n.Symbol.QualifiedName
	}
	return id
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, x := range list {
		if x != s {
			out = append(out, x)
		}
	}
	return out
}
