// Package naming derives the names and forwarding statements of generated
// members from annotated declarations.
package naming

import (
	"strings"

	"github.com/toyz/dsgen/internal/models"
)

// AccessorSuffix is appended to a unique code to form a registry accessor
const AccessorSuffix = "DataSource"

// ExposedName is the member name an operation gets on the aggregate
// interface. With a prefix the first ASCII letter of the operation name is
// upper-cased and appended to the prefix; other leading characters pass
// through unchanged.
func ExposedName(prefix, operation string) string {
	if prefix == "" || operation == "" {
		return prefix + operation
	}

	name := []byte(operation)
	if name[0] >= 'a' && name[0] <= 'z' {
		name[0] -= 'a' - 'A'
	}
	return prefix + string(name)
}

// AccessorName is the registry method resolving a unique code
func AccessorName(uniqueCode string) string {
	return uniqueCode + AccessorSuffix
}

// Forward builds the statement an implementation member uses to delegate
// an operation. shared names the registry's shared instance accessor.
func Forward(decl *models.Declaration, op models.Operation, shared string) *models.Statement {
	target := decl.CallPath
	if decl.UsesRegistry() {
		target = shared + "()." + AccessorName(decl.UniqueCode) + "()"
	}

	args := make([]string, len(op.Params))
	for i, p := range op.Params {
		args[i] = p.Name
	}

	return &models.Statement{
		Return:   !op.IsVoid(),
		Target:   target,
		Method:   op.Name,
		Args:     args,
		Variadic: op.Variadic && len(args) > 0,
	}
}

// Render returns the statement as a single line of Go
func Render(s *models.Statement) string {
	call := s.Target + "." + s.Method + "(" + strings.Join(s.Args, ", ")
	if s.Variadic {
		call += "..."
	}
	call += ")"
	if s.Return {
		return "return " + call
	}
	return call
}
