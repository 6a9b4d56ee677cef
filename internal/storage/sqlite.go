package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"smartassist/internal/graph"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS types (
			id TEXT PRIMARY KEY,
			qualified_name TEXT NOT NULL,
			name TEXT,
			package TEXT,
			kind TEXT,
			filepath TEXT,
			start_line INTEGER,
			end_line INTEGER,
			content_hash TEXT,
			description TEXT,
			details JSON
		);`,
		`CREATE TABLE IF NOT EXISTS edges (
			from_id TEXT,
			to_id TEXT,
			kind TEXT,
			signature TEXT,
			PRIMARY KEY (from_id, to_id, kind)
		);`,
		`CREATE TABLE IF NOT EXISTS unresolved (
			from_id TEXT,
			target TEXT,
			kind TEXT,
			reason TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_types_file ON types(filepath);`,
		`CREATE INDEX IF NOT EXISTS idx_types_qualified ON types(qualified_name);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// details is the part of a symbol stored as JSON.
type details struct {
	Outer          string               `json:"outer,omitempty"`
	Modifiers      graph.Modifiers      `json:"modifiers,omitempty"`
	TypeParameters []string             `json:"type_parameters,omitempty"`
	Supertypes     []graph.Relation     `json:"supertypes,omitempty"`
	Methods        []graph.MethodSymbol `json:"methods,omitempty"`
	Fields         []graph.FieldSymbol  `json:"fields,omitempty"`
}

const typeColumns = "id, qualified_name, name, package, kind, filepath, start_line, end_line, content_hash, description, details"

type scanner interface {
	Scan(dest ...any) error
}

func scanType(row scanner) (*graph.TypeSymbol, error) {
	var sym graph.TypeSymbol
	var raw []byte
	if err := row.Scan(&sym.ID, &sym.QualifiedName, &sym.Name, &sym.Package, &sym.Kind, &sym.Filepath, &sym.StartLine, &sym.EndLine, &sym.ContentHash, &sym.Description, &raw); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		var d details
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", sym.QualifiedName, err)
		}
		sym.Outer = d.Outer
		sym.Modifiers = d.Modifiers
		sym.TypeParameters = d.TypeParameters
		sym.Supertypes = d.Supertypes
		sym.Methods = d.Methods
		sym.Fields = d.Fields
	}
	return &sym, nil
}

// SaveGraph writes g as the new snapshot. Types, edges and unresolved
// references of the previous snapshot are removed.
func (s *SQLiteStore) SaveGraph(ctx context.Context, g *graph.Graph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"types", "edges", "unresolved"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// 1. Save types
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO types (`+typeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, node := range g.Nodes {
		sym := node.Symbol
		raw, err := json.Marshal(details{
			Outer:          sym.Outer,
			Modifiers:      sym.Modifiers,
			TypeParameters: sym.TypeParameters,
			Supertypes:     sym.Supertypes,
			Methods:        sym.Methods,
			Fields:         sym.Fields,
		})
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", sym.QualifiedName, err)
		}
		if _, err := stmt.ExecContext(ctx, sym.ID, sym.QualifiedName, sym.Name, sym.Package, sym.Kind, sym.Filepath, sym.StartLine, sym.EndLine, sym.ContentHash, sym.Description, raw); err != nil {
			return err
		}
	}

	// 2. Save edges
	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (from_id, to_id, kind, signature) VALUES (?, ?, ?, ?)
		ON CONFLICT(from_id, to_id, kind) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()

	for _, edge := range g.Edges {
		if _, err := edgeStmt.ExecContext(ctx, edge.From, edge.To, edge.Kind, edge.Signature); err != nil {
			return err
		}
	}

	// 3. Save unresolved references
	unresolvedStmt, err := tx.PrepareContext(ctx, `INSERT INTO unresolved (from_id, target, kind, reason) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer unresolvedStmt.Close()

	for _, u := range g.Unresolved {
		if _, err := unresolvedStmt.ExecContext(ctx, u.From, u.Target, u.Kind, u.Reason); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadGraph(ctx context.Context) (*graph.Graph, error) {
	g := graph.NewGraph()

	// 1. Load types
	rows, err := s.db.QueryContext(ctx, "SELECT "+typeColumns+" FROM types")
	if err != nil {
		return nil, fmt.Errorf("failed to query types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sym, err := scanType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan type: %w", err)
		}
		g.Nodes[sym.ID] = &graph.Node{Symbol: sym}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 2. Load edges
	edgeRows, err := s.db.QueryContext(ctx, "SELECT from_id, to_id, kind, signature FROM edges")
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var edge graph.Edge
		if err := edgeRows.Scan(&edge.From, &edge.To, &edge.Kind, &edge.Signature); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		g.Edges = append(g.Edges, edge)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, err
	}

	// 3. Load unresolved references
	unresolvedRows, err := s.db.QueryContext(ctx, "SELECT from_id, target, kind, reason FROM unresolved")
	if err != nil {
		return nil, fmt.Errorf("failed to query unresolved references: %w", err)
	}
	defer unresolvedRows.Close()

	for unresolvedRows.Next() {
		var u graph.UnresolvedRelation
		if err := unresolvedRows.Scan(&u.From, &u.Target, &u.Kind, &u.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan unresolved reference: %w", err)
		}
		g.Unresolved = append(g.Unresolved, u)
	}
	if err := unresolvedRows.Err(); err != nil {
		return nil, err
	}

	// Rebuild indexes for lookups and hierarchy walks
	g.RebuildIndices()
	return g, nil
}

func (s *SQLiteStore) GetType(ctx context.Context, qualifiedName string) (*graph.TypeSymbol, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+typeColumns+" FROM types WHERE qualified_name = ?", qualifiedName)
	sym, err := scanType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, qualifiedName)
	}
	return sym, err
}

func (s *SQLiteStore) FindTypesByFile(ctx context.Context, filepath string) ([]*graph.TypeSymbol, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+typeColumns+" FROM types WHERE filepath = ? ORDER BY start_line", filepath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*graph.TypeSymbol
	for rows.Next() {
		sym, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}
