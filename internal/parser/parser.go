package parser

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/dsgen/internal/annotations"
	"github.com/toyz/dsgen/internal/models"
	"github.com/toyz/dsgen/internal/utils"
)

// Package is a directory to scan together with its import path
type Package struct {
	Dir        string
	ImportPath string
}

// Parser discovers annotated interface declarations in Go source
type Parser struct {
	fileSet       *token.FileSet
	registry      *annotations.SchemaRegistry
	fileProcessor *utils.FileProcessor
}

// NewParser creates a new discovery parser
func NewParser() *Parser {
	return &Parser{
		fileSet:       token.NewFileSet(),
		registry:      annotations.DefaultRegistry(),
		fileProcessor: utils.NewFileProcessor(),
	}
}

// ParseSource parses a single file held in memory
func (p *Parser) ParseSource(filename, source, pkgPath string, reporter models.Reporter) ([]*models.Declaration, error) {
	file, err := parser.ParseFile(p.fileSet, filename, source, parser.ParseComments)
	if err != nil {
		return nil, utils.WrapParseError("source "+filename, err)
	}

	scanner := p.newFileScanner(file, filename, pkgPath, reporter)
	return scanner.declarations(), nil
}

// ParsePackage parses the non-test, non-generated files of one directory.
// Declarations are returned in file name order, then source order.
func (p *Parser) ParsePackage(pkg Package, reporter models.Reporter) ([]*models.Declaration, error) {
	files, err := p.fileProcessor.ListGoFiles(pkg.Dir)
	if err != nil {
		return nil, utils.WrapProcessError("directory "+pkg.Dir, err)
	}

	var (
		decls       []*models.Declaration
		packageName string
	)
	for _, filename := range files {
		file, err := parser.ParseFile(p.fileSet, filename, nil, parser.ParseComments)
		if err != nil {
			return nil, utils.WrapParseError("file "+filename, err)
		}

		if packageName == "" {
			packageName = file.Name.Name
		} else if file.Name.Name != packageName {
			return nil, fmt.Errorf("multiple packages found in directory %s: %s and %s", pkg.Dir, packageName, file.Name.Name)
		}

		scanner := p.newFileScanner(file, filename, pkg.ImportPath, reporter)
		decls = append(decls, scanner.declarations()...)
	}

	return decls, nil
}

type packageResult struct {
	decls       []*models.Declaration
	diagnostics []models.Diagnostic
}

// ParsePackages parses packages concurrently. Results and diagnostics are
// merged in directory order so the encounter order does not depend on
// scheduling.
func (p *Parser) ParsePackages(ctx context.Context, pkgs []Package, reporter models.Reporter) ([]*models.Declaration, error) {
	ordered := make([]Package, len(pkgs))
	copy(ordered, pkgs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Dir < ordered[j].Dir })

	results := make([]packageResult, len(ordered))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, pkg := range ordered {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			collector := &models.DiagnosticCollector{}
			decls, err := p.ParsePackage(pkg, collector)
			if err != nil {
				return err
			}
			results[i] = packageResult{decls: decls, diagnostics: collector.Diagnostics}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var decls []*models.Declaration
	for _, result := range results {
		for _, d := range result.diagnostics {
			reporter.Report(d)
		}
		decls = append(decls, result.decls...)
	}
	return decls, nil
}

// fileScanner extracts declarations from one parsed file
type fileScanner struct {
	fileSet     *token.FileSet
	file        *ast.File
	filename    string
	pkgPath     string
	annotations *annotations.ParticipleParser
	imports     *importSet
	reporter    models.Reporter
}

func (p *Parser) newFileScanner(file *ast.File, filename, pkgPath string, reporter models.Reporter) *fileScanner {
	if pkgPath == "" {
		// local types need a path to be told apart from predeclared ones
		pkgPath = file.Name.Name
	}
	// a parser per file keeps concurrent package scans independent
	return &fileScanner{
		fileSet:     p.fileSet,
		file:        file,
		filename:    filename,
		pkgPath:     pkgPath,
		annotations: annotations.NewParticipleParser(p.registry),
		imports:     newImportSet(file),
		reporter:    reporter,
	}
}

func (s *fileScanner) declarations() []*models.Declaration {
	var decls []*models.Declaration

	for _, decl := range s.file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}

		for _, spec := range genDecl.Specs {
			typeSpec := spec.(*ast.TypeSpec)

			doc := typeSpec.Doc
			if doc == nil && !genDecl.Lparen.IsValid() {
				doc = genDecl.Doc
			}

			if d := s.declaration(typeSpec, doc); d != nil {
				decls = append(decls, d)
			}
		}
	}

	return decls
}

func (s *fileScanner) declaration(typeSpec *ast.TypeSpec, doc *ast.CommentGroup) *models.Declaration {
	comment := s.annotationComment(typeSpec, doc)
	if comment == nil {
		return nil
	}

	name := typeSpec.Name.Name
	loc := s.location(typeSpec.Pos())
	qualified := s.qualify(name)

	fail := func(rule string, pos token.Pos, format string, args ...interface{}) *models.Declaration {
		s.report(models.SeverityError, rule, qualified, s.location(pos), format, args...)
		return nil
	}

	parsed, err := s.parseAnnotation(comment, qualified)
	if err != nil {
		return nil
	}

	switch {
	case s.file.Name.Name == mainPackage:
		return fail(models.RuleUnsupportedTarget, typeSpec.Pos(), "%s is declared in package main, which cannot be imported", name)
	case typeSpec.Assign.IsValid():
		return fail(models.RuleUnsupportedTarget, typeSpec.Pos(), "%s is a type alias; annotate the interface it refers to", name)
	case typeSpec.TypeParams != nil && len(typeSpec.TypeParams.List) > 0:
		return fail(models.RuleUnsupportedTarget, typeSpec.Pos(), "%s has type parameters; generic interfaces are not supported", name)
	}

	iface, ok := typeSpec.Type.(*ast.InterfaceType)
	if !ok {
		return fail(models.RuleUnsupportedTarget, typeSpec.Pos(), "%s is not an interface; datasource annotations apply to interface types only", name)
	}

	resolver := &typeResolver{pkgPath: s.pkgPath, pkgName: s.file.Name.Name, imports: s.imports}

	decl := &models.Declaration{
		Name:        name,
		PackageName: s.file.Name.Name,
		PackagePath: s.pkgPath,
		Prefix:      parsed.GetString(annotations.ParamPrefix),
		UniqueCode:  parsed.GetString(annotations.ParamUniqueCode),
		Impl:        parsed.GetString(annotations.ParamImpl),
		CallPath:    parsed.GetString(annotations.ParamCallPath),
		Imports:     s.imports.list,
		Location:    loc,
	}

	if decl.Impl != "" {
		implType, err := resolver.resolveTypeName(decl.Impl)
		if err != nil {
			return fail(models.RuleUnresolvedImpl, comment.Pos(), "cannot resolve Impl %q: %v", decl.Impl, err)
		}
		decl.ImplType = implType
	}

	for _, field := range iface.Methods.List {
		if len(field.Names) == 0 {
			s.report(models.SeverityWarning, models.RuleEmbeddedInterface, qualified, s.location(field.Pos()),
				"embedded %s in %s is ignored; only declared methods are forwarded", types.ExprString(field.Type), name)
			continue
		}

		funcType, ok := field.Type.(*ast.FuncType)
		if !ok {
			return fail(models.RuleUnsupportedType, field.Pos(), "unexpected method shape in %s", name)
		}

		for _, methodName := range field.Names {
			op, err := resolver.operation(methodName.Name, funcType)
			if err != nil {
				return fail(models.RuleUnsupportedType, err.pos, "%s.%s: %s", name, methodName.Name, err.msg)
			}
			decl.Operations = append(decl.Operations, op)
		}
	}

	return decl
}

// annotationComment returns the single annotation comment of a doc group
func (s *fileScanner) annotationComment(typeSpec *ast.TypeSpec, doc *ast.CommentGroup) *ast.Comment {
	if doc == nil {
		return nil
	}

	var found []*ast.Comment
	for _, c := range doc.List {
		if annotations.IsAnnotation(c.Text) {
			found = append(found, c)
		}
	}

	if len(found) > 1 {
		s.report(models.SeverityError, models.RuleAnnotationSyntax, s.qualify(typeSpec.Name.Name), s.location(found[1].Pos()),
			"%s carries %d datasource annotations; use exactly one", typeSpec.Name.Name, len(found))
		return nil
	}
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// parseAnnotation reports every annotation error as its own diagnostic
func (s *fileScanner) parseAnnotation(comment *ast.Comment, qualified string) (*annotations.ParsedAnnotation, error) {
	pos := s.fileSet.Position(comment.Pos())
	// the file is left out so error messages carry no location prefix; the
	// diagnostic supplies it
	loc := annotations.SourceLocation{Line: pos.Line, Column: pos.Column}

	parsed, err := s.annotations.ParseAnnotation(comment.Text, loc)
	if err == nil {
		return parsed, nil
	}

	var errs []annotations.AnnotationError
	switch e := err.(type) {
	case *annotations.MultipleAnnotationErrors:
		errs = e.Errors
	case annotations.AnnotationError:
		errs = []annotations.AnnotationError{e}
	default:
		s.report(models.SeverityError, models.RuleAnnotationSyntax, qualified, s.location(comment.Pos()), "%v", err)
		return nil, err
	}

	for _, annErr := range errs {
		errLoc := annErr.Location()
		s.reporter.Report(models.Diagnostic{
			Severity:    models.SeverityError,
			Rule:        models.RuleAnnotationSyntax,
			Message:     annErr.Error(),
			Declaration: qualified,
			Location:    models.SourceLocation{File: s.filename, Line: errLoc.Line, Column: errLoc.Column},
		})
	}
	return nil, err
}

func (s *fileScanner) qualify(name string) string {
	return s.pkgPath + "." + name
}

func (s *fileScanner) location(pos token.Pos) models.SourceLocation {
	position := s.fileSet.Position(pos)
	return models.SourceLocation{File: s.filename, Line: position.Line, Column: position.Column}
}

func (s *fileScanner) report(severity models.Severity, rule, decl string, loc models.SourceLocation, format string, args ...interface{}) {
	s.reporter.Report(models.Diagnostic{
		Severity:    severity,
		Rule:        rule,
		Message:     fmt.Sprintf(format, args...),
		Declaration: decl,
		Location:    loc,
	})
}
