package extractor

import sitter "github.com/smacker/go-tree-sitter"

// LanguageExtractor defines the interface that each language parser must implement.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	// GetHeaderQuery captures the package and import declarations of a file.
	GetHeaderQuery() string
	ExtractHeader(captureName string, node *sitter.Node, sourceCode []byte, header *FileHeader)
	// IsTypeDeclaration reports whether node declares a type.
	IsTypeDeclaration(node *sitter.Node) bool
	ExtractUnit(node *sitter.Node, sourceCode []byte, filepath string, header FileHeader) *TypeUnit
}
