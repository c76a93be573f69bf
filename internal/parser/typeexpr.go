package parser

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"github.com/toyz/dsgen/internal/models"
)

// typeError is an unsupported type expression with its position
type typeError struct {
	pos token.Pos
	msg string
}

func (e *typeError) Error() string {
	return e.msg
}

func unsupported(expr ast.Expr, format string, args ...interface{}) *typeError {
	return &typeError{pos: expr.Pos(), msg: fmt.Sprintf(format, args...)}
}

// typeResolver converts go/ast type expressions of one file to TypeRefs
type typeResolver struct {
	pkgPath string
	pkgName string
	imports *importSet
}

// operation converts one interface method
func (r *typeResolver) operation(name string, fn *ast.FuncType) (models.Operation, *typeError) {
	op := models.Operation{Name: name}

	params, variadic, err := r.fieldList(fn.Params, true)
	if err != nil {
		return op, err
	}
	op.Variadic = variadic

	explicit := make(map[string]bool)
	for _, field := range fieldsOf(fn.Params) {
		for _, n := range field.Names {
			if n.Name != "_" {
				explicit[n.Name] = true
			}
		}
	}

	index := 0
	for _, field := range fieldsOf(fn.Params) {
		names := field.Names
		if len(names) == 0 {
			names = []*ast.Ident{nil}
		}
		for _, n := range names {
			paramName := ""
			if n != nil && n.Name != "_" {
				paramName = n.Name
			} else {
				paramName = positionalName(index, explicit)
			}
			op.Params = append(op.Params, models.Parameter{Name: paramName, Type: params[index]})
			index++
		}
	}

	results, _, err := r.fieldList(fn.Results, false)
	if err != nil {
		return op, err
	}
	op.Results = results

	return op, nil
}

// positionalName returns argN, suffixed until it collides with no
// explicit parameter name
func positionalName(index int, explicit map[string]bool) string {
	name := positionalParamPrefix + strconv.Itoa(index)
	for explicit[name] {
		name += "_"
	}
	explicit[name] = true
	return name
}

func fieldsOf(list *ast.FieldList) []*ast.Field {
	if list == nil {
		return nil
	}
	return list.List
}

// fieldList expands a parameter or result list to one TypeRef per entry.
// A trailing ellipsis is reported through variadic and its element type is
// returned in its place.
func (r *typeResolver) fieldList(list *ast.FieldList, allowVariadic bool) ([]*models.TypeRef, bool, *typeError) {
	var (
		refs     []*models.TypeRef
		variadic bool
	)

	fields := fieldsOf(list)
	for i, field := range fields {
		expr := field.Type
		if ellipsis, ok := expr.(*ast.Ellipsis); ok {
			if !allowVariadic || i != len(fields)-1 || len(field.Names) > 1 {
				return nil, false, unsupported(expr, "misplaced variadic parameter")
			}
			variadic = true
			expr = ellipsis.Elt
		}

		ref, err := r.convert(expr)
		if err != nil {
			return nil, false, err
		}

		count := len(field.Names)
		if count == 0 {
			count = 1
		}
		for j := 0; j < count; j++ {
			refs = append(refs, ref)
		}
	}

	return refs, variadic, nil
}

// convert translates a type expression
func (r *typeResolver) convert(expr ast.Expr) (*models.TypeRef, *typeError) {
	switch e := expr.(type) {
	case *ast.Ident:
		if isPredeclared(e.Name) {
			return models.Builtin(e.Name), nil
		}
		return models.Named(r.pkgPath, r.pkgName, e.Name), nil

	case *ast.SelectorExpr:
		qualifier, ok := e.X.(*ast.Ident)
		if !ok {
			return nil, unsupported(expr, "unsupported type %s", types.ExprString(expr))
		}
		path, ok := r.imports.lookup(qualifier.Name)
		if !ok {
			return nil, unsupported(expr, "unknown package qualifier %q in %s", qualifier.Name, types.ExprString(expr))
		}
		return models.Named(path, qualifier.Name, e.Sel.Name), nil

	case *ast.StarExpr:
		elem, err := r.convert(e.X)
		if err != nil {
			return nil, err
		}
		return models.PointerTo(elem), nil

	case *ast.ParenExpr:
		return r.convert(e.X)

	case *ast.ArrayType:
		elem, err := r.convert(e.Elt)
		if err != nil {
			return nil, err
		}
		if e.Len == nil {
			return models.SliceOf(elem), nil
		}
		lit, ok := e.Len.(*ast.BasicLit)
		if !ok || lit.Kind != token.INT {
			return nil, unsupported(e.Len, "array length %s must be an integer literal", types.ExprString(e.Len))
		}
		return &models.TypeRef{Kind: models.KindArray, Len: lit.Value, Elem: elem}, nil

	case *ast.MapType:
		key, err := r.convert(e.Key)
		if err != nil {
			return nil, err
		}
		elem, err := r.convert(e.Value)
		if err != nil {
			return nil, err
		}
		return models.MapOf(key, elem), nil

	case *ast.ChanType:
		elem, err := r.convert(e.Value)
		if err != nil {
			return nil, err
		}
		dir := models.ChanBoth
		switch e.Dir {
		case ast.SEND:
			dir = models.ChanSend
		case ast.RECV:
			dir = models.ChanRecv
		}
		return &models.TypeRef{Kind: models.KindChan, Dir: dir, Elem: elem}, nil

	case *ast.FuncType:
		params, variadic, err := r.fieldList(e.Params, true)
		if err != nil {
			return nil, err
		}
		results, _, err := r.fieldList(e.Results, false)
		if err != nil {
			return nil, err
		}
		return &models.TypeRef{Kind: models.KindFunc, Params: params, Results: results, Variadic: variadic}, nil

	case *ast.InterfaceType:
		if e.Methods != nil && len(e.Methods.List) > 0 {
			return nil, unsupported(expr, "interface literals with methods are not supported; declare a named interface")
		}
		return &models.TypeRef{Kind: models.KindInterface}, nil

	case *ast.StructType:
		if e.Fields != nil && len(e.Fields.List) > 0 {
			return nil, unsupported(expr, "struct literals with fields are not supported; declare a named type")
		}
		return &models.TypeRef{Kind: models.KindStruct}, nil

	case *ast.IndexExpr:
		return r.instantiate(e.X, []ast.Expr{e.Index})

	case *ast.IndexListExpr:
		return r.instantiate(e.X, e.Indices)

	default:
		return nil, unsupported(expr, "unsupported type %s", types.ExprString(expr))
	}
}

func (r *typeResolver) instantiate(base ast.Expr, args []ast.Expr) (*models.TypeRef, *typeError) {
	ref, err := r.convert(base)
	if err != nil {
		return nil, err
	}
	if ref.Kind != models.KindNamed || (ref.PkgPath == "" && isPredeclared(ref.Name)) {
		return nil, unsupported(base, "%s cannot be instantiated", types.ExprString(base))
	}

	for _, arg := range args {
		argRef, err := r.convert(arg)
		if err != nil {
			return nil, err
		}
		ref.TypeArgs = append(ref.TypeArgs, argRef)
	}
	return ref, nil
}

// resolveTypeName resolves an Impl value, either T or pkg.T
func (r *typeResolver) resolveTypeName(name string) (*models.TypeRef, error) {
	qualifier, typeName, qualified := strings.Cut(name, ".")
	if !qualified {
		if isPredeclared(name) {
			return nil, fmt.Errorf("%s is a predeclared type", name)
		}
		return models.Named(r.pkgPath, r.pkgName, name), nil
	}

	path, ok := r.imports.lookup(qualifier)
	if !ok {
		return nil, fmt.Errorf("package %q is not imported by the declaring file", qualifier)
	}
	return models.Named(path, qualifier, typeName), nil
}

func isPredeclared(name string) bool {
	_, ok := types.Universe.Lookup(name).(*types.TypeName)
	return ok
}
