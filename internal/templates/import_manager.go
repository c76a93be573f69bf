package templates

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/toyz/dsgen/internal/models"
	"github.com/toyz/dsgen/internal/utils"
)

// ImportManager assigns each imported package of a generated file a unique
// qualifier and renders the import block
type ImportManager struct {
	selfPath string            // package being generated, never imported
	aliases  map[string]string // path -> qualifier
	paths    map[string]string // qualifier -> path
	explicit map[string]bool   // paths whose qualifier came from a source alias
}

// NewImportManager creates an import manager for a file of package selfPath
func NewImportManager(selfPath string) *ImportManager {
	return &ImportManager{
		selfPath: selfPath,
		aliases:  make(map[string]string),
		paths:    make(map[string]string),
		explicit: make(map[string]bool),
	}
}

// AddSourceImport registers an import copied from a declaring file so that a
// call path expression can use it verbatim. The first import claiming a
// qualifier wins; a later one with a different path is dropped. Call path
// imports that conflict are rejected during synthesis.
func (im *ImportManager) AddSourceImport(imp models.Import) {
	if imp.Path == "" || imp.Path == im.selfPath {
		return
	}
	if _, exists := im.aliases[imp.Path]; exists {
		return
	}

	name := imp.Name
	if name == "" {
		name = utils.ImportName(imp.Path)
	}
	if _, taken := im.paths[name]; taken {
		return
	}

	im.aliases[imp.Path] = name
	im.paths[name] = imp.Path
	im.explicit[imp.Path] = imp.Name != ""
}

// AddPackage registers a package referenced by generated code and returns
// its qualifier. A taken qualifier gets a numeric suffix.
func (im *ImportManager) AddPackage(path, preferred string) string {
	if path == "" || path == im.selfPath {
		return ""
	}
	if alias, exists := im.aliases[path]; exists {
		return alias
	}

	if preferred == "" {
		preferred = utils.ImportName(path)
	}
	alias := preferred
	for n := 2; ; n++ {
		if _, taken := im.paths[alias]; !taken {
			break
		}
		alias = preferred + strconv.Itoa(n)
	}

	im.aliases[path] = alias
	im.paths[alias] = path
	return alias
}

// AddTypes registers every package the types refer to
func (im *ImportManager) AddTypes(refs ...*models.TypeRef) {
	for _, ref := range refs {
		ref.Walk(func(t *models.TypeRef) {
			if t.Kind == models.KindNamed && t.PkgPath != "" {
				im.AddPackage(t.PkgPath, t.PkgName)
			}
		})
	}
}

// Qualifier returns the qualifier function for types of this file. Types of
// the generated package itself stay unqualified.
func (im *ImportManager) Qualifier() models.Qualifier {
	return func(path string) string {
		if path == im.selfPath {
			return ""
		}
		if alias, ok := im.aliases[path]; ok {
			return alias
		}
		return utils.ImportName(path)
	}
}

// GenerateImports renders the import block sorted by path. An alias is
// written when it differs from the name assumed for the path.
func (im *ImportManager) GenerateImports() string {
	if len(im.aliases) == 0 {
		return ""
	}

	paths := make([]string, 0, len(im.aliases))
	for path := range im.aliases {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var imports []string
	for _, path := range paths {
		alias := im.aliases[path]
		if im.explicit[path] || alias != utils.ImportName(path) {
			imports = append(imports, fmt.Sprintf("%s %q", alias, path))
		} else {
			imports = append(imports, strconv.Quote(path))
		}
	}

	if len(imports) == 1 {
		return fmt.Sprintf("import %s\n", imports[0])
	}

	var result strings.Builder
	result.WriteString("import (\n")
	for _, imp := range imports {
		result.WriteString(fmt.Sprintf("\t%s\n", imp))
	}
	result.WriteString(")\n")

	return result.String()
}
