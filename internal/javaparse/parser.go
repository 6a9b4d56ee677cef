// Package javaparse parses Java compilation units with tree-sitter into
// resolved syntax trees for the completion core.
package javaparse

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	sitter "github.com/smacker/go-tree-sitter"

	"smartassist/internal/extractor"
	"smartassist/internal/project"
	"smartassist/internal/syntax"
)

// DefaultCacheSize is the number of parsed units kept by default.
const DefaultCacheSize = 64

var ErrNoProject = errors.New("javaparse: no project")

// parsed is the project-independent part of a parse, shared between
// requests on the same text. mu guards walks over tree, whose node cache
// is not safe for concurrent use.
type parsed struct {
	mu     sync.Mutex
	tree   *sitter.Tree
	header extractor.FileHeader
	units  []*extractor.TypeUnit
}

// Parser implements completion.TreeProvider. It is safe for concurrent use.
type Parser struct {
	ext       *extractor.Extractor
	cache     *lru.Cache[[sha256.Size]byte, *parsed]
	cacheSize int
	log       logrus.FieldLogger
}

type Option func(*Parser)

func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}

// WithCacheSize sets how many parsed units are kept. Sizes below 1 use
// DefaultCacheSize.
func WithCacheSize(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.cacheSize = n
		}
	}
}

func New(opts ...Option) (*Parser, error) {
	ext, err := extractor.NewExtractor("java")
	if err != nil {
		return nil, err
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	p := &Parser{ext: ext, cacheSize: DefaultCacheSize, log: discard}
	for _, opt := range opts {
		opt(p)
	}
	p.cache, err = lru.New[[sha256.Size]byte, *parsed](p.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse cache: %w", err)
	}
	return p, nil
}

// Parse parses src and resolves it against proj. The returned project is
// proj with the declarations of src overlaid.
//
// When the cursor directly follows `new `, a placeholder creation is parsed
// in its place so the enclosing call keeps its shape. Spans in the result
// are offsets into src.Text.
func (p *Parser) Parse(ctx context.Context, src syntax.Source, proj *project.Project) (*syntax.File, *project.Project, error) {
	if proj == nil {
		return nil, nil, ErrNoProject
	}
	text, sp := spliceCompletion(src.Text, src.Cursor)

	pf, err := p.load(ctx, src.Path, text)
	if err != nil {
		return nil, nil, err
	}
	overlay := proj.WithOverlay(pf.units)

	c := newConverter(text, sp, overlay, pf.header, pf.units, p.log)
	pf.mu.Lock()
	root := c.convert(pf.tree.RootNode())
	pf.mu.Unlock()

	file := &syntax.File{
		Path:    src.Path,
		Root:    root,
		Package: pf.header.Package,
		Imports: pf.header.Imports,
	}
	for _, u := range pf.units {
		if sym, err := overlay.FindType(u.QualifiedName); err == nil {
			file.Types = append(file.Types, sym)
		}
	}
	return file, overlay, nil
}

func (p *Parser) load(ctx context.Context, path string, text []byte) (*parsed, error) {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(text)
	var key [sha256.Size]byte
	copy(key[:], h.Sum(nil))

	if pf, ok := p.cache.Get(key); ok {
		return pf, nil
	}

	tree, err := p.ext.Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	root := tree.RootNode()
	header, err := p.ext.ExtractHeader(root, text)
	if err != nil {
		return nil, err
	}
	units, err := p.ext.ExtractFromTree(root, text, path)
	if err != nil {
		return nil, err
	}
	if root.HasError() {
		p.log.WithField("path", path).Debug("syntax errors, tree recovered")
	}

	pf := &parsed{tree: tree, header: header, units: units}
	p.cache.Add(key, pf)
	return pf, nil
}
