package cli

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/toyz/dsgen/internal/utils"
)

// Module is the Go module generated code belongs to
type Module struct {
	Name string // module path
	Root string // absolute directory holding go.mod
}

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	goMod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{
		goMod: utils.NewGoModParser(),
	}
}

// ResolveModuleName resolves the module name for imports.
// If customModule is provided, it uses that; otherwise reads from go.mod
func (r *ModuleResolver) ResolveModuleName(customModule string) (string, error) {
	module, err := r.ResolveModule(customModule, ".")
	if err != nil {
		return "", err
	}
	return module.Name, nil
}

// ResolveModule finds the go.mod above startDir. A custom module name
// replaces the declared one and lets the working directory act as the module
// root when there is no go.mod.
func (r *ModuleResolver) ResolveModule(customModule, startDir string) (Module, error) {
	goModPath, findErr := r.goMod.FindGoModFile(startDir)

	if customModule != "" {
		root := filepath.Dir(goModPath)
		if findErr != nil {
			wd, err := filepath.Abs(startDir)
			if err != nil {
				return Module{}, fmt.Errorf("failed to resolve %s: %w", startDir, err)
			}
			root = wd
		}
		return Module{Name: customModule, Root: root}, nil
	}

	if findErr != nil {
		return Module{}, fmt.Errorf("failed to determine module name: %w (consider using --module flag)", findErr)
	}

	name, err := r.goMod.ParseModuleName(goModPath)
	if err != nil {
		return Module{}, fmt.Errorf("failed to determine module name: %w", err)
	}
	return Module{Name: name, Root: filepath.Dir(goModPath)}, nil
}

// BuildPackagePath builds the full import path for a package directory
// relative to the module root
func (r *ModuleResolver) BuildPackagePath(module Module, packageDir string) (string, error) {
	absPackageDir, err := filepath.Abs(packageDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve package directory: %w", err)
	}

	relPath, err := filepath.Rel(module.Root, absPackageDir)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}

	importPath := filepath.ToSlash(relPath)
	if importPath == ".." || strings.HasPrefix(importPath, "../") {
		return "", fmt.Errorf("package directory %s is outside module %s (%s)", packageDir, module.Name, module.Root)
	}

	if importPath == "." {
		return module.Name, nil
	}
	return path.Join(module.Name, importPath), nil
}

// workingDir is os.Getwd with the failure worded like the other resolver errors
func workingDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return wd, nil
}
