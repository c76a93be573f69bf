package models

import (
	"fmt"
	"strings"
)

// TypeKind identifies the shape of a type expression
type TypeKind int

const (
	KindInvalid TypeKind = iota
	KindNamed
	KindPointer
	KindSlice
	KindArray
	KindMap
	KindChan
	KindFunc
	KindInterface // empty interface literal only
	KindStruct    // empty struct literal only
)

// String returns the string representation of the kind
func (k TypeKind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindPointer:
		return "pointer"
	case KindSlice:
		return "slice"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindChan:
		return "chan"
	case KindFunc:
		return "func"
	case KindInterface:
		return "interface"
	case KindStruct:
		return "struct"
	default:
		return "invalid"
	}
}

// ChanDir is the direction of a channel type
type ChanDir int

const (
	ChanBoth ChanDir = iota
	ChanSend
	ChanRecv
)

// TypeRef is a type expression detached from go/ast so artifacts can be
// rendered into a package other than the one that declared them.
type TypeRef struct {
	Kind    TypeKind
	Name    string // KindNamed: identifier
	PkgPath string // KindNamed: import path, empty for predeclared types
	PkgName string // KindNamed: package name used as the preferred qualifier
	Len     string // KindArray: length expression as written
	Dir     ChanDir

	Elem *TypeRef // pointer, slice, array, map value, chan
	Key  *TypeRef // map key

	Params   []*TypeRef // KindFunc
	Results  []*TypeRef // KindFunc
	Variadic bool       // KindFunc: last param is the variadic element type

	TypeArgs []*TypeRef // KindNamed: instantiated generic type
}

// Named creates a reference to a named type. An empty pkgPath denotes a
// predeclared type such as string or error.
func Named(pkgPath, pkgName, name string, typeArgs ...*TypeRef) *TypeRef {
	return &TypeRef{Kind: KindNamed, PkgPath: pkgPath, PkgName: pkgName, Name: name, TypeArgs: typeArgs}
}

// Builtin creates a reference to a predeclared type
func Builtin(name string) *TypeRef {
	return &TypeRef{Kind: KindNamed, Name: name}
}

func PointerTo(elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindPointer, Elem: elem}
}

func SliceOf(elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindSlice, Elem: elem}
}

func MapOf(key, elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindMap, Key: key, Elem: elem}
}

// Validate reports the first malformed node in the expression tree
func (t *TypeRef) Validate() error {
	if t == nil {
		return fmt.Errorf("missing type")
	}
	switch t.Kind {
	case KindNamed:
		if t.Name == "" {
			return fmt.Errorf("named type without a name")
		}
		if t.PkgPath != "" && t.PkgName == "" {
			return fmt.Errorf("type %s has an import path but no package name", t.Name)
		}
		for _, arg := range t.TypeArgs {
			if err := arg.Validate(); err != nil {
				return fmt.Errorf("type argument of %s: %w", t.Name, err)
			}
		}
	case KindPointer, KindSlice, KindChan:
		if err := t.Elem.Validate(); err != nil {
			return fmt.Errorf("%s element: %w", t.Kind, err)
		}
	case KindArray:
		if t.Len == "" {
			return fmt.Errorf("array type without a length")
		}
		if err := t.Elem.Validate(); err != nil {
			return fmt.Errorf("array element: %w", err)
		}
	case KindMap:
		if err := t.Key.Validate(); err != nil {
			return fmt.Errorf("map key: %w", err)
		}
		if err := t.Elem.Validate(); err != nil {
			return fmt.Errorf("map value: %w", err)
		}
	case KindFunc:
		if t.Variadic && len(t.Params) == 0 {
			return fmt.Errorf("variadic func type without parameters")
		}
		for _, p := range t.Params {
			if err := p.Validate(); err != nil {
				return fmt.Errorf("func parameter: %w", err)
			}
		}
		for _, r := range t.Results {
			if err := r.Validate(); err != nil {
				return fmt.Errorf("func result: %w", err)
			}
		}
	case KindInterface, KindStruct:
	default:
		return fmt.Errorf("unknown type kind %d", int(t.Kind))
	}
	return nil
}

// Packages returns the import paths referenced by the expression, in
// first-seen order without duplicates.
func (t *TypeRef) Packages() []string {
	var paths []string
	seen := make(map[string]bool)
	t.Walk(func(n *TypeRef) {
		if n.Kind == KindNamed && n.PkgPath != "" && !seen[n.PkgPath] {
			seen[n.PkgPath] = true
			paths = append(paths, n.PkgPath)
		}
	})
	return paths
}

// Walk calls fn for t and every type nested in it, depth first
func (t *TypeRef) Walk(fn func(*TypeRef)) {
	if t == nil {
		return
	}
	fn(t)
	t.Elem.Walk(fn)
	t.Key.Walk(fn)
	for _, n := range t.TypeArgs {
		n.Walk(fn)
	}
	for _, n := range t.Params {
		n.Walk(fn)
	}
	for _, n := range t.Results {
		n.Walk(fn)
	}
}

// Qualifier maps an import path to the identifier used to reference it.
// Returning "" leaves the name unqualified.
type Qualifier func(pkgPath string) string

// String renders the type using source package names
func (t *TypeRef) String() string {
	return t.Format(nil)
}

// Format renders the type as Go source. A nil qualifier uses PkgName.
func (t *TypeRef) Format(q Qualifier) string {
	var b strings.Builder
	t.format(&b, q)
	return b.String()
}

func (t *TypeRef) format(b *strings.Builder, q Qualifier) {
	if t == nil {
		b.WriteString("<nil>")
		return
	}
	switch t.Kind {
	case KindNamed:
		if t.PkgPath != "" {
			qual := t.PkgName
			if q != nil {
				qual = q(t.PkgPath)
			}
			if qual != "" {
				b.WriteString(qual)
				b.WriteByte('.')
			}
		}
		b.WriteString(t.Name)
		if len(t.TypeArgs) > 0 {
			b.WriteByte('[')
			formatList(b, t.TypeArgs, q, false)
			b.WriteByte(']')
		}
	case KindPointer:
		b.WriteByte('*')
		t.Elem.format(b, q)
	case KindSlice:
		b.WriteString("[]")
		t.Elem.format(b, q)
	case KindArray:
		b.WriteByte('[')
		b.WriteString(t.Len)
		b.WriteByte(']')
		t.Elem.format(b, q)
	case KindMap:
		b.WriteString("map[")
		t.Key.format(b, q)
		b.WriteByte(']')
		t.Elem.format(b, q)
	case KindChan:
		switch t.Dir {
		case ChanSend:
			b.WriteString("chan<- ")
		case ChanRecv:
			b.WriteString("<-chan ")
		default:
			b.WriteString("chan ")
		}
		t.Elem.format(b, q)
	case KindFunc:
		b.WriteString("func(")
		formatList(b, t.Params, q, t.Variadic)
		b.WriteByte(')')
		switch len(t.Results) {
		case 0:
		case 1:
			b.WriteByte(' ')
			t.Results[0].format(b, q)
		default:
			b.WriteString(" (")
			formatList(b, t.Results, q, false)
			b.WriteByte(')')
		}
	case KindInterface:
		b.WriteString("interface{}")
	case KindStruct:
		b.WriteString("struct{}")
	default:
		b.WriteString("<invalid>")
	}
}

func formatList(b *strings.Builder, list []*TypeRef, q Qualifier, variadic bool) {
	for i, t := range list {
		if i > 0 {
			b.WriteString(", ")
		}
		if variadic && i == len(list)-1 {
			b.WriteString("...")
		}
		t.format(b, q)
	}
}
