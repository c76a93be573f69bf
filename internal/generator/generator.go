package generator

import (
	"fmt"
	"go/ast"
	goparser "go/parser"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	dserrors "github.com/toyz/dsgen/internal/errors"
	"github.com/toyz/dsgen/internal/models"
	"github.com/toyz/dsgen/internal/naming"
	"github.com/toyz/dsgen/internal/utils"
)

// Generator synthesizes the aggregate interface, the instance registry and
// the forwarding implementation from accepted declarations
type Generator struct {
	config Config
}

// NewGenerator creates a new artifact synthesizer
func NewGenerator(config Config) *Generator {
	return &Generator{config: config}
}

// Artifacts are the three generated types of one run
type Artifacts struct {
	Interface      *models.Artifact
	Registry       *models.Artifact
	Implementation *models.Artifact
}

// All returns the artifacts in emission order
func (a *Artifacts) All() []*models.Artifact {
	return []*models.Artifact{a.Interface, a.Registry, a.Implementation}
}

// Generate builds the artifacts. Declarations are used in the given order,
// which must be the validator's acceptance order.
func (g *Generator) Generate(accepted []*models.Declaration) (*Artifacts, error) {
	members, err := g.signatures(accepted)
	if err != nil {
		return nil, err
	}

	accessors, err := g.accessors(accepted)
	if err != nil {
		return nil, err
	}

	sources := make([]string, len(accepted))
	for i, decl := range accepted {
		sources[i] = decl.QualifiedName()
	}

	iface := g.artifact(models.ArtifactInterface, g.config.InterfaceName, sources)
	iface.Members = members

	registry := g.artifact(models.ArtifactRegistry, g.config.RegistryName, sources)
	registry.Accessors = accessors
	registry.Serialized = g.config.Serialized
	registry.SharedAccessor = g.config.SharedAccessor()

	impl := g.artifact(models.ArtifactImplementation, g.config.ImplementationName, sources)
	impl.InterfaceName = g.config.InterfaceName
	impl.Constructor = g.config.Constructor()
	impl.ExtraImports, err = callPathImports(accepted)
	if err != nil {
		return nil, err
	}
	impl.Members = make([]models.Member, 0, len(members))

	i := 0
	for _, decl := range accepted {
		for _, op := range decl.Operations {
			member := members[i]
			member.Body = naming.Forward(decl, op, g.config.SharedAccessor())
			impl.Members = append(impl.Members, member)
			i++
		}
	}

	if err := checkConsistency(iface, impl); err != nil {
		return nil, err
	}

	return &Artifacts{Interface: iface, Registry: registry, Implementation: impl}, nil
}

func (g *Generator) artifact(kind models.ArtifactKind, name string, sources []string) *models.Artifact {
	return &models.Artifact{
		Kind:        kind,
		PackageName: g.config.PackageName,
		PackagePath: g.config.PackagePath,
		SimpleName:  name,
		FileName:    FileName(name),
		Sources:     sources,
	}
}

// signatures derives the member list shared by the interface and the
// implementation
func (g *Generator) signatures(accepted []*models.Declaration) ([]models.Member, error) {
	var members []models.Member
	owners := make(map[string]string)

	for _, decl := range accepted {
		for _, op := range decl.Operations {
			name := naming.ExposedName(decl.Prefix, op.Name)
			source := decl.QualifiedName() + "." + op.Name

			if owner, exists := owners[name]; exists {
				return nil, dserrors.NewGenerationErrorf("operation %s and %s both map to %s.%s", owner, source, g.config.InterfaceName, name).
					WithArtifact(g.config.InterfaceName).
					WithStage("synthesize").
					WithContext("member", name).
					WithSuggestion("Give one of the declarations a -Prefix, or rename one of the operations")
			}
			owners[name] = source

			if err := g.checkOperation(decl, op); err != nil {
				return nil, dserrors.WrapGenerateError(g.config.InterfaceName, fmt.Errorf("operation %s: %w", source, err))
			}

			members = append(members, models.Member{
				Name:     name,
				Params:   op.Params,
				Results:  op.Results,
				Variadic: op.Variadic,
				Source:   source,
			})
		}
	}

	return members, nil
}

func (g *Generator) checkOperation(decl *models.Declaration, op models.Operation) error {
	for _, p := range op.Params {
		if err := g.checkType(p.Type); err != nil {
			return fmt.Errorf("parameter %s: %w", p.Name, err)
		}
	}
	for i, r := range op.Results {
		if err := g.checkType(r); err != nil {
			return fmt.Errorf("result %d: %w", i, err)
		}
	}
	if op.Variadic && len(op.Params) == 0 {
		return fmt.Errorf("variadic operation without parameters")
	}
	return nil
}

// checkType rejects malformed types and unexported types the output
// package cannot refer to
func (g *Generator) checkType(ref *models.TypeRef) error {
	if err := ref.Validate(); err != nil {
		return err
	}

	var unexported string
	ref.Walk(func(t *models.TypeRef) {
		if unexported != "" || t.Kind != models.KindNamed || t.PkgPath == "" || t.PkgPath == g.config.PackagePath {
			return
		}
		if !isExported(t.Name) {
			unexported = t.PkgPath + "." + t.Name
		}
	})
	if unexported != "" {
		return fmt.Errorf("unexported type %s is not accessible from package %s", unexported, g.config.PackagePath)
	}
	return nil
}

func (g *Generator) accessors(accepted []*models.Declaration) ([]models.Accessor, error) {
	var accessors []models.Accessor
	owners := make(map[string]string)

	for _, decl := range accepted {
		if decl.Impl == "" {
			continue
		}

		name := naming.AccessorName(decl.UniqueCode)
		if owner, exists := owners[name]; exists {
			return nil, dserrors.NewGenerationErrorf("declarations %s and %s both need accessor %s", owner, decl.QualifiedName(), name).
				WithArtifact(g.config.RegistryName).
				WithStage("synthesize")
		}
		owners[name] = decl.QualifiedName()

		implType, err := resolveImpl(decl)
		if err != nil {
			return nil, dserrors.WrapGenerateError(g.config.RegistryName, err)
		}

		ifaceType := decl.Type()
		for _, ref := range []*models.TypeRef{ifaceType, implType} {
			if err := g.checkType(ref); err != nil {
				return nil, dserrors.WrapGenerateError(g.config.RegistryName, fmt.Errorf("%s: %w", decl.QualifiedName(), err)).
					WithSuggestion("Export the interface and its implementation so the generated package can construct it")
			}
		}

		accessors = append(accessors, models.Accessor{
			Name:          name,
			Key:           decl.UniqueCode,
			InterfaceType: ifaceType,
			ImplType:      implType,
			Source:        decl.QualifiedName(),
		})
	}

	return accessors, nil
}

// resolveImpl returns the concrete type of a declaration. Discovery normally
// resolves it; declarations built by hand fall back to the declaring
// package and its imports.
func resolveImpl(decl *models.Declaration) (*models.TypeRef, error) {
	if decl.ImplType != nil {
		return decl.ImplType, nil
	}

	qualifier, name, qualified := strings.Cut(decl.Impl, ".")
	if !qualified {
		return models.Named(decl.PackagePath, decl.PackageName, decl.Impl), nil
	}

	for _, imp := range decl.Imports {
		importName := imp.Name
		if importName == "" {
			importName = utils.ImportName(imp.Path)
		}
		if importName == qualifier {
			return models.Named(imp.Path, qualifier, name), nil
		}
	}
	return nil, fmt.Errorf("%s: cannot resolve Impl %q against the imports of its file", decl.QualifiedName(), decl.Impl)
}

// callPathImports collects the imports the call path expressions refer to.
// A package name may only stand for one import path across all of them
// because the expressions are emitted verbatim into a single file.
func callPathImports(accepted []*models.Declaration) ([]models.Import, error) {
	var imports []models.Import
	claimed := make(map[string]*models.Declaration)
	claimedPath := make(map[string]string)

	for _, decl := range accepted {
		if decl.CallPath == "" {
			continue
		}
		used := qualifiers(decl.CallPath)
		for _, imp := range decl.Imports {
			name := imp.Name
			if name == "" {
				name = utils.ImportName(imp.Path)
			}
			if name == "_" || name == "." || (used != nil && !used[name]) {
				continue
			}

			if path, ok := claimedPath[name]; ok {
				if path != imp.Path {
					return nil, dserrors.NewGenerationErrorf(
						"%s and %s both call through %q but import it from %s and %s",
						claimed[name].QualifiedName(), decl.QualifiedName(), name, path, imp.Path).
						WithStage("imports").
						WithContext("package_name", name).
						WithSuggestion(fmt.Sprintf("Import one of the packages under an explicit alias and use it in that CallPath, e.g. import other%s %q", name, imp.Path))
				}
				continue
			}
			claimed[name] = decl
			claimedPath[name] = imp.Path
			imports = append(imports, imp)
		}
	}
	return imports, nil
}

// qualifiers returns the identifiers used as selector operands in a call
// path expression, or nil when it does not parse
func qualifiers(callPath string) map[string]bool {
	expr, err := goparser.ParseExpr(callPath)
	if err != nil {
		return nil
	}
	names := make(map[string]bool)
	ast.Inspect(expr, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if ident, ok := sel.X.(*ast.Ident); ok {
				names[ident.Name] = true
			}
		}
		return true
	})
	return names
}

// checkConsistency verifies the implementation has exactly the members of
// the interface
func checkConsistency(iface, impl *models.Artifact) error {
	if len(iface.Members) != len(impl.Members) {
		return dserrors.NewGenerationErrorf("%s has %d members but %s has %d",
			iface.SimpleName, len(iface.Members), impl.SimpleName, len(impl.Members)).
			WithStage("consistency")
	}

	for i := range iface.Members {
		want, got := iface.Members[i].Signature(), impl.Members[i].Signature()
		if !reflect.DeepEqual(want, got) {
			return dserrors.NewGenerationErrorf("%s.%s does not match %s.%s",
				impl.SimpleName, got.Name, iface.SimpleName, want.Name).
				WithStage("consistency")
		}
		if impl.Members[i].Body == nil {
			return dserrors.NewGenerationErrorf("%s.%s has no body", impl.SimpleName, got.Name).
				WithStage("consistency")
		}
	}
	return nil
}

// FileName returns autogen_<snake_case>.go for an artifact name
func FileName(simpleName string) string {
	return utils.GeneratedFilePrefix + snakeCase(simpleName) + ".go"
}

func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i > 0 && i+1 < len(runes) && unicode.IsUpper(runes[i-1]) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
