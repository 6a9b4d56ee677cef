package resolver

import (
	"strings"
	"sync"
)

// Universe answers whether a qualified type name exists.
type Universe interface {
	HasType(qualifiedName string) bool
}

type ResolveStats struct {
	Attempted int
	Resolved  int
	Skipped   int
}

// NameResolver is one stage of the chain: it maps a simple or partially
// qualified type name to a qualified name visible from the scope.
type NameResolver interface {
	Name() string
	Lookup(name string, sc *Scope) (string, bool)
}

type StageResult struct {
	Resolver string
	Stats    ResolveStats
}

// ResolverChain tries each stage in order. The first stage that finds an
// existing type wins. It is safe for concurrent use.
type ResolverChain struct {
	resolvers []NameResolver

	mu    sync.Mutex
	stats map[string]*ResolveStats
}

func NewResolverChain(resolvers ...NameResolver) *ResolverChain {
	return &ResolverChain{resolvers: resolvers, stats: make(map[string]*ResolveStats)}
}

// NewDefaultChain follows Java scoping: member types, single-type imports,
// the current package, java.lang, on-demand imports, then fully qualified
// names.
func NewDefaultChain() *ResolverChain {
	return NewResolverChain(
		memberTypeResolver{},
		singleImportResolver{},
		samePackageResolver{},
		javaLangResolver{},
		onDemandImportResolver{},
		qualifiedResolver{},
	)
}

func (c *ResolverChain) Run(name string, sc *Scope) (string, bool) {
	for _, r := range c.resolvers {
		qualified, ok := r.Lookup(name, sc)
		c.record(r.Name(), ok)
		if ok {
			c.skipRest(r.Name())
			return qualified, true
		}
	}
	return "", false
}

func (c *ResolverChain) record(stage string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.statsFor(stage)
	st.Attempted++
	if ok {
		st.Resolved++
	}
}

func (c *ResolverChain) skipRest(stage string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	after := false
	for _, r := range c.resolvers {
		if after {
			c.statsFor(r.Name()).Skipped++
		}
		if r.Name() == stage {
			after = true
		}
	}
}

func (c *ResolverChain) statsFor(stage string) *ResolveStats {
	st, ok := c.stats[stage]
	if !ok {
		st = &ResolveStats{}
		c.stats[stage] = st
	}
	return st
}

// Results returns per-stage counters in chain order.
func (c *ResolverChain) Results() []StageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]StageResult, 0, len(c.resolvers))
	for _, r := range c.resolvers {
		out = append(out, StageResult{Resolver: r.Name(), Stats: *c.statsFor(r.Name())})
	}
	return out
}

type memberTypeResolver struct{}

func (memberTypeResolver) Name() string { return "member" }

func (memberTypeResolver) Lookup(name string, sc *Scope) (string, bool) {
	for _, outer := range sc.Enclosing {
		if candidate := outer + "." + name; sc.exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

type singleImportResolver struct{}

func (singleImportResolver) Name() string { return "import" }

func (singleImportResolver) Lookup(name string, sc *Scope) (string, bool) {
	head, rest, _ := strings.Cut(name, ".")
	for _, imp := range sc.Imports {
		if imp.OnDemand {
			continue
		}
		if imp.Name == head || strings.HasSuffix(imp.Name, "."+head) {
			candidate := imp.Name
			if rest != "" {
				candidate += "." + rest
			}
			if sc.exists(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

type samePackageResolver struct{}

func (samePackageResolver) Name() string { return "package" }

func (samePackageResolver) Lookup(name string, sc *Scope) (string, bool) {
	candidate := name
	if sc.Package != "" {
		candidate = sc.Package + "." + name
	}
	if sc.exists(candidate) {
		return candidate, true
	}
	return "", false
}

type javaLangResolver struct{}

func (javaLangResolver) Name() string { return "java.lang" }

func (javaLangResolver) Lookup(name string, sc *Scope) (string, bool) {
	if candidate := "java.lang." + name; sc.exists(candidate) {
		return candidate, true
	}
	return "", false
}

type onDemandImportResolver struct{}

func (onDemandImportResolver) Name() string { return "on-demand" }

func (onDemandImportResolver) Lookup(name string, sc *Scope) (string, bool) {
	for _, imp := range sc.Imports {
		if !imp.OnDemand {
			continue
		}
		if candidate := imp.Name + "." + name; sc.exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

type qualifiedResolver struct{}

func (qualifiedResolver) Name() string { return "qualified" }

func (qualifiedResolver) Lookup(name string, sc *Scope) (string, bool) {
	if strings.Contains(name, ".") && sc.exists(name) {
		return name, true
	}
	return "", false
}
