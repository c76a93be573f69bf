package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/toyz/dsgen/internal/config"
	"github.com/toyz/dsgen/internal/errors"
	"github.com/toyz/dsgen/internal/generator"
	"github.com/toyz/dsgen/internal/parser"
	"github.com/toyz/dsgen/internal/templates"
	"github.com/toyz/dsgen/internal/utils"
	"github.com/toyz/dsgen/internal/validator"
)

// GenerationSummary describes one generation run
type GenerationSummary struct {
	RunID          string
	Packages       int
	Declarations   int // discovered annotated interfaces
	Accepted       int
	Operations     int
	GeneratedFiles []string // written because their content changed
	UnchangedFiles []string
	Errors         int
	Warnings       int
	Duration       time.Duration
}

// DiagnosticsError is returned by Run when error diagnostics were reported.
// The artifacts for the accepted declarations have been written already.
type DiagnosticsError struct {
	Errors   int
	Warnings int
}

func (e *DiagnosticsError) Error() string {
	return fmt.Sprintf("generation reported %d error(s) and %d warning(s)", e.Errors, e.Warnings)
}

// Generator orchestrates the code generation process
type Generator struct {
	scanner        *DirectoryScanner
	moduleResolver *ModuleResolver
	parser         *parser.Parser
	renderer       *templates.Renderer
	diagnostics    *utils.DiagnosticSystem
	summary        GenerationSummary
}

// NewGenerator creates a new CLI generator reporting through diagnostics
func NewGenerator(diagnostics *utils.DiagnosticSystem) (*Generator, error) {
	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, err
	}
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	return &Generator{
		scanner:        NewDirectoryScanner(),
		moduleResolver: NewModuleResolver(),
		parser:         parser.NewParser(),
		renderer:       renderer,
		diagnostics:    diagnostics,
	}, nil
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// Run executes the complete generation process. Declarations rejected by
// validation are reported and skipped; the remaining ones are generated and
// a *DiagnosticsError is returned afterwards. Any other error aborts the run
// before a file is written.
func (g *Generator) Run(ctx context.Context, cfg *config.Config) error {
	startTime := time.Now()
	g.summary = GenerationSummary{RunID: uuid.NewString()}

	g.diagnostics.Verbose("Starting code generation at %s (run %s)", startTime.Format("15:04:05"), g.summary.RunID)
	g.diagnostics.Debug("Scanning directories: %v", cfg.Directories)

	if err := cfg.Validate(); err != nil {
		return err
	}

	wd, err := workingDir()
	if err != nil {
		return errors.WrapFileSystemError("resolve", ".", err)
	}

	module, err := g.moduleResolver.ResolveModule(cfg.ModuleName, wd)
	if err != nil {
		return errors.Wrap(errors.ConfigurationErrorCode, "failed to resolve module", err).
			WithSuggestions(
				"Check your go.mod file exists and is valid",
				"Ensure you're running from the correct directory",
				"Try specifying --module flag explicitly",
			).
			WithContext("provided_module", cfg.ModuleName)
	}
	g.diagnostics.Debug("Resolved module %s at %s", module.Name, module.Root)

	outputDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return errors.WrapFileSystemError("resolve", cfg.OutputDir, err)
	}
	outputPath, err := g.moduleResolver.BuildPackagePath(module, outputDir)
	if err != nil {
		return errors.Wrap(errors.ConfigurationErrorCode, "output directory is not importable", err).
			WithSuggestion("Place --output inside the module or set --module")
	}

	g.diagnostics.DsgenHeader("Generating data source artifacts...")
	g.diagnostics.SourcePath(wd)
	if cfg.Verbose {
		g.showConfiguration(cfg, module, outputPath)
	}

	pkgs, err := g.discover(module, cfg.Directories, outputDir)
	if err != nil {
		return err
	}
	g.summary.Packages = len(pkgs)

	g.diagnostics.PhaseHeader("Discovery")
	decls, err := g.parser.ParsePackages(ctx, pkgs, g.diagnostics)
	if err != nil {
		return errors.Wrap(errors.SyntaxErrorCode, "failed to parse packages", err)
	}
	g.summary.Declarations = len(decls)
	g.diagnostics.PhaseItem(fmt.Sprintf("Found %d annotated interface(s) in %d package(s)", len(decls), len(pkgs)))

	g.diagnostics.PhaseHeader("Validation")
	result := validator.Validate(decls, g.diagnostics)
	g.summary.Accepted = len(result.Accepted)
	for _, decl := range result.Accepted {
		g.summary.Operations += len(decl.Operations)
		g.diagnostics.PhaseItem(decl.QualifiedName())
	}
	if rejected := len(decls) - len(result.Accepted); rejected > 0 {
		g.diagnostics.PhaseProgress(fmt.Sprintf("%d declaration(s) rejected", rejected))
	}

	g.diagnostics.PhaseHeader("Generation")
	synthesizer := generator.NewGenerator(cfg.GeneratorConfig(outputPath))
	artifacts, err := synthesizer.Generate(result.Accepted)
	if err != nil {
		return err
	}

	files, err := g.renderer.RenderAll(artifacts.All())
	if err != nil {
		return err
	}

	if err := g.writeFiles(outputDir, files); err != nil {
		return err
	}

	g.summary.Errors, g.summary.Warnings = g.diagnostics.Counts()
	g.summary.Duration = time.Since(startTime)
	g.reportSummary(outputPath)

	if g.summary.Errors > 0 {
		return &DiagnosticsError{Errors: g.summary.Errors, Warnings: g.summary.Warnings}
	}
	g.diagnostics.GenerationComplete()
	return nil
}

// discover lists the packages to scan, leaving out the output directory
func (g *Generator) discover(module Module, directories []string, outputDir string) ([]parser.Package, error) {
	packageDirs, err := g.scanner.ScanDirectories(directories)
	if err != nil {
		return nil, errors.Wrap(errors.FileSystemErrorCode, "failed to scan directories", err).
			WithSuggestions(
				"Check that the specified directories exist",
				"Ensure you have read permissions for the directories",
			).
			WithContext("directories", directories)
	}
	packageDirs = Exclude(packageDirs, outputDir)

	if len(packageDirs) == 0 {
		g.diagnostics.Warn("No Go packages found in %v", directories)
	}
	g.diagnostics.Verbose("Found %d packages to process", len(packageDirs))

	pkgs := make([]parser.Package, 0, len(packageDirs))
	for _, dir := range packageDirs {
		importPath, err := g.moduleResolver.BuildPackagePath(module, dir)
		if err != nil {
			return nil, errors.Wrap(errors.ConfigurationErrorCode, "failed to resolve package import path", err).
				WithContext("directory", dir)
		}
		g.diagnostics.Debug("Package %s -> %s", dir, importPath)
		pkgs = append(pkgs, parser.Package{Dir: dir, ImportPath: importPath})
	}
	return pkgs, nil
}

// writeFiles writes rendered artifacts in file name order. Files whose
// content did not change are left alone.
func (g *Generator) writeFiles(outputDir string, files map[string][]byte) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(outputDir, name)
		written, err := utils.WriteFileIfChanged(path, files[name], 0644)
		if err != nil {
			return errors.WrapFileSystemError("write", path, err)
		}
		if written {
			g.diagnostics.PhaseProgress(fmt.Sprintf("Writing %s", path))
			g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, path)
		} else {
			g.diagnostics.Verbose("%s is up to date", path)
			g.summary.UnchangedFiles = append(g.summary.UnchangedFiles, path)
		}
	}
	return nil
}

func (g *Generator) showConfiguration(cfg *config.Config, module Module, outputPath string) {
	g.diagnostics.Section("Configuration")
	g.diagnostics.Indent()
	g.diagnostics.List("Module: %s (%s)", module.Name, module.Root)
	g.diagnostics.List("Directories: %s", strings.Join(cfg.Directories, ", "))
	g.diagnostics.List("Output: %s as package %s", outputPath, cfg.PackageName)
	g.diagnostics.List("Artifacts: %s, %s, %s", cfg.InterfaceName, cfg.RegistryName, cfg.ImplementationName)
	g.diagnostics.List("Registry mode: %s", cfg.RegistryMode)
	g.diagnostics.Unindent()
}

func (g *Generator) reportSummary(outputPath string) {
	g.diagnostics.Summary("Summary", map[string]interface{}{
		"Output package": outputPath,
		"Packages":       g.summary.Packages,
		"Data sources":   fmt.Sprintf("%d of %d accepted", g.summary.Accepted, g.summary.Declarations),
		"Operations":     g.summary.Operations,
		"Files written":  len(g.summary.GeneratedFiles),
		"Files current":  len(g.summary.UnchangedFiles),
		"Errors":         g.summary.Errors,
		"Warnings":       g.summary.Warnings,
	})
	g.diagnostics.Verbose("Finished in %s", g.summary.Duration.Round(time.Millisecond))
}
