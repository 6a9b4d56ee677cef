package storage

import (
	"context"
	"errors"

	"smartassist/internal/graph"
)

// ErrNotFound is returned when a requested type is not in the store.
var ErrNotFound = errors.New("storage: not found")

// Store persists resolved type graph snapshots.
type Store interface {
	TypeGraphStore
	Close() error
}

// TypeGraphStore defines operations for persisting the type graph.
type TypeGraphStore interface {
	// SaveGraph replaces the stored snapshot with g (types, edges and
	// unresolved references).
	SaveGraph(ctx context.Context, g *graph.Graph) error

	// LoadGraph returns the stored snapshot with its indexes rebuilt.
	LoadGraph(ctx context.Context) (*graph.Graph, error)

	// GetType retrieves a type by qualified name.
	GetType(ctx context.Context, qualifiedName string) (*graph.TypeSymbol, error)

	// FindTypesByFile retrieves all types declared in a specific file.
	FindTypesByFile(ctx context.Context, filepath string) ([]*graph.TypeSymbol, error)
}
