package models

import "fmt"

// SourceLocation is a position in a scanned source file
type SourceLocation struct {
	File   string // file path
	Line   int    // line number (1-based)
	Column int    // column number (1-based)
}

// String returns file:line:column, dropping parts that are unknown
func (s SourceLocation) String() string {
	switch {
	case s.File == "":
		return ""
	case s.Line == 0:
		return s.File
	case s.Column == 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
}

// Import is an import spec of the file that holds a declaration
type Import struct {
	Name string // explicit alias, empty when the package name is used
	Path string
}

// Declaration is an interface type carrying a datasource annotation
type Declaration struct {
	Name        string // interface name
	PackageName string
	PackagePath string

	Prefix     string // prepended to every exposed operation name
	UniqueCode string // registry key and accessor stem
	Impl       string // concrete type as written in the annotation
	CallPath   string // literal Go expression evaluated by forwarders

	// ImplType is Impl resolved against the declaring file. Discovery sets
	// it; when nil the synthesizer resolves Impl itself.
	ImplType *TypeRef

	Imports    []Import    // imports of the declaring file
	Operations []Operation // declared methods in source order
	Location   SourceLocation
}

// QualifiedName returns importpath.Name
func (d *Declaration) QualifiedName() string {
	if d.PackagePath == "" {
		return d.Name
	}
	return d.PackagePath + "." + d.Name
}

// Type returns a reference to the annotated interface itself
func (d *Declaration) Type() *TypeRef {
	return Named(d.PackagePath, d.PackageName, d.Name)
}

// UsesRegistry reports whether calls are routed through the registry
func (d *Declaration) UsesRegistry() bool {
	return d.CallPath == ""
}

// Operation is one method of an annotated interface
type Operation struct {
	Name     string
	Params   []Parameter
	Results  []*TypeRef
	Variadic bool // last parameter is variadic; its Type is the element type
}

// IsVoid reports whether the operation returns no value
func (o Operation) IsVoid() bool {
	return len(o.Results) == 0
}

// Parameter is a named operation parameter
type Parameter struct {
	Name string
	Type *TypeRef
}
