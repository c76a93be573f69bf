package models

// ArtifactKind identifies one of the three generated files
type ArtifactKind int

const (
	ArtifactInterface ArtifactKind = iota
	ArtifactRegistry
	ArtifactImplementation
)

// String returns the string representation of the artifact kind
func (k ArtifactKind) String() string {
	switch k {
	case ArtifactInterface:
		return "interface"
	case ArtifactRegistry:
		return "registry"
	case ArtifactImplementation:
		return "implementation"
	default:
		return "unknown"
	}
}

// Artifact is a synthesized Go type ready to be rendered into one file
type Artifact struct {
	Kind        ArtifactKind
	PackageName string
	PackagePath string
	SimpleName  string
	FileName    string

	Sources []string // qualified names of the contributing declarations

	// Interface and Implementation
	Members []Member

	// Registry
	Accessors  []Accessor
	Serialized bool // construct instances under the registry lock

	// Names of sibling artifacts referenced from this one
	InterfaceName  string // Implementation: asserted interface
	Constructor    string // Implementation: constructor function
	SharedAccessor string // Registry: shared instance accessor

	// Imports offered to the file so literal call path expressions can
	// resolve. Unused ones are pruned when the file is formatted.
	ExtraImports []Import
}

// Member is a method on the generated interface or implementation
type Member struct {
	Name     string
	Params   []Parameter
	Results  []*TypeRef
	Variadic bool
	Body     *Statement // nil for abstract members
	Source   string     // qualified name of the originating declaration
}

// Signature returns the member's operation shape
func (m Member) Signature() Operation {
	return Operation{Name: m.Name, Params: m.Params, Results: m.Results, Variadic: m.Variadic}
}

// Statement is a forwarding call, optionally returned
type Statement struct {
	Return   bool
	Target   string // expression the method is invoked on
	Method   string
	Args     []string
	Variadic bool // spread the last argument
}

// Accessor is a registry method resolving one implementation instance
type Accessor struct {
	Name          string   // <uniqueCode>DataSource
	Key           string   // uniqueCode
	InterfaceType *TypeRef // annotated interface
	ImplType      *TypeRef // constructed with new()
	Source        string
}
