package extractor

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
)

// Extractor orchestrates the extraction process using language-specific extractors.
type Extractor struct {
	langExtractor LanguageExtractor
	langName      string
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string) (*Extractor, error) {
	var langExt LanguageExtractor
	switch lang {
	case "java":
		langExt = &JavaExtractor{}
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	return &Extractor{langExtractor: langExt, langName: lang}, nil
}

// Language returns the tree-sitter grammar used by the extractor.
func (e *Extractor) Language() *sitter.Language {
	return e.langExtractor.GetLanguage()
}

// Parse parses sourceCode into a syntax tree. A fresh parser is used per call
// so Parse is safe for concurrent use.
func (e *Extractor) Parse(ctx context.Context, sourceCode []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(e.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, sourceCode)
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// ExtractFromFile parses a single source file and extracts all type declarations.
func (e *Extractor) ExtractFromFile(filepath string) ([]*TypeUnit, error) {
	sourceCode, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath, err)
	}
	return e.ExtractFromSource(context.Background(), filepath, sourceCode)
}

// ExtractFromSource parses sourceCode and extracts all type declarations.
func (e *Extractor) ExtractFromSource(ctx context.Context, filepath string, sourceCode []byte) ([]*TypeUnit, error) {
	tree, err := e.Parse(ctx, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filepath, err)
	}
	return e.ExtractFromTree(tree.RootNode(), sourceCode, filepath)
}

// ExtractFromTree extracts type declarations from an already parsed tree.
func (e *Extractor) ExtractFromTree(root *sitter.Node, sourceCode []byte, filepath string) ([]*TypeUnit, error) {
	header, err := e.ExtractHeader(root, sourceCode)
	if err != nil {
		return nil, err
	}

	var units []*TypeUnit
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child == nil {
				continue
			}
			switch child.Type() {
			case "block", "constructor_body", "lambda_expression", "object_creation_expression":
				// local and anonymous classes are not visible outside their body
				continue
			}
			if e.langExtractor.IsTypeDeclaration(child) {
				if unit := e.langExtractor.ExtractUnit(child, sourceCode, filepath, header); unit != nil {
					units = append(units, unit)
				}
			}
			walk(child)
		}
	}
	walk(root)
	return units, nil
}

// ExtractHeader runs the language header query over root.
func (e *Extractor) ExtractHeader(root *sitter.Node, sourceCode []byte) (FileHeader, error) {
	var header FileHeader
	query, err := sitter.NewQuery([]byte(e.langExtractor.GetHeaderQuery()), e.langExtractor.GetLanguage())
	if err != nil {
		return header, fmt.Errorf("failed to create query: %w", err)
	}

	qc := sitter.NewQueryCursor()
	qc.Exec(query, root)
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			e.langExtractor.ExtractHeader(query.CaptureNameForId(c.Index), c.Node, sourceCode, &header)
		}
	}
	return header, nil
}
