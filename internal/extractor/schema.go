package extractor

// TypeUnit represents a single Java type declaration extracted from source,
// before any name resolution. Type references are kept as written.
type TypeUnit struct {
	ID             string       `json:"id"`              // Stable symbol ID (see BuildStableSymbolID)
	Filepath       string       `json:"filepath"`        // Path to the source file
	Package        string       `json:"package"`         // Declared package, empty for the default package
	Language       string       `json:"language"`        // Always "java" for now
	Name           string       `json:"name"`            // Simple name
	QualifiedName  string       `json:"qualified_name"`  // Package + enclosing types + name, dot separated
	Outer          string       `json:"outer,omitempty"` // Qualified name of the enclosing type for member types
	UnitType       string       `json:"unit_type"`       // "class", "interface", "enum", "record" or "annotation"
	Modifiers      []string     `json:"modifiers,omitempty"`
	TypeParameters []string     `json:"type_parameters,omitempty"`
	Superclass     string       `json:"superclass,omitempty"`
	Interfaces     []string     `json:"interfaces,omitempty"`
	Methods        []MethodUnit `json:"methods,omitempty"`
	Fields         []FieldUnit  `json:"fields,omitempty"`
	Imports        []Import     `json:"imports,omitempty"`
	StartLine      int          `json:"start_line"`
	EndLine        int          `json:"end_line"`
	ContentHash    string       `json:"content_hash"`
	Description    string       `json:"description,omitempty"` // Javadoc text
}

// MethodUnit is a method or constructor declared directly in a type body.
type MethodUnit struct {
	Name           string      `json:"name"`
	Params         []ParamUnit `json:"params"`
	ReturnType     string      `json:"return_type,omitempty"` // Empty for constructors
	Modifiers      []string    `json:"modifiers,omitempty"`
	TypeParameters []string    `json:"type_parameters,omitempty"`
	Constructor    bool        `json:"constructor,omitempty"`
	StartLine      int         `json:"start_line"`
}

// ParamUnit is a formal parameter. Varargs parameters keep their element
// type in Type.
type ParamUnit struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Varargs bool   `json:"varargs,omitempty"`
}

// FieldUnit is a field or interface constant.
type FieldUnit struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// Import is a single import declaration of a compilation unit.
type Import struct {
	Name     string `json:"name"`                // Imported name without ".*"
	Static   bool   `json:"static,omitempty"`    // import static …
	OnDemand bool   `json:"on_demand,omitempty"` // import ….*
}

// FileHeader holds the package and imports of a compilation unit.
type FileHeader struct {
	Package string
	Imports []Import
}
