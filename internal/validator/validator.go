// Package validator filters discovered declarations down to the ones that
// can be generated, reporting why the others were rejected.
package validator

import (
	"fmt"

	"github.com/toyz/dsgen/internal/models"
)

// Result of one validation pass
type Result struct {
	Accepted    []*models.Declaration // encounter order
	Diagnostics []models.Diagnostic
}

// HasErrors reports whether any declaration was rejected
func (r Result) HasErrors() bool {
	return len(r.Diagnostics) > 0
}

// Validator checks declarations one at a time. Each candidate is judged
// against the declarations accepted before it; only the first failing rule
// is reported and a rejected candidate claims neither its prefix nor its
// unique code.
type Validator struct {
	prefixes map[string]string // prefix -> accepting declaration
	codes    map[string]string // unique code -> accepting declaration
	reporter models.Reporter
}

// NewValidator creates a validator with empty state. A nil reporter only
// collects into the Result.
func NewValidator(reporter models.Reporter) *Validator {
	return &Validator{
		prefixes: make(map[string]string),
		codes:    make(map[string]string),
		reporter: reporter,
	}
}

// Validate runs a fresh pass over decls
func Validate(decls []*models.Declaration, reporter models.Reporter) Result {
	return NewValidator(reporter).Run(decls)
}

// Run checks decls in order
func (v *Validator) Run(decls []*models.Declaration) Result {
	var result Result
	for _, decl := range decls {
		if diag, ok := v.Check(decl); !ok {
			result.Diagnostics = append(result.Diagnostics, diag)
			if v.reporter != nil {
				v.reporter.Report(diag)
			}
			continue
		}
		result.Accepted = append(result.Accepted, decl)
	}
	return result
}

// Check judges one candidate and records it when accepted
func (v *Validator) Check(decl *models.Declaration) (models.Diagnostic, bool) {
	reject := func(rule, format string, args ...interface{}) (models.Diagnostic, bool) {
		return models.Diagnostic{
			Severity:    models.SeverityError,
			Rule:        rule,
			Message:     fmt.Sprintf(format, args...),
			Declaration: decl.QualifiedName(),
			Location:    decl.Location,
		}, false
	}

	if decl.Impl == "" && decl.CallPath == "" {
		return reject(models.RuleRoutingStrategy,
			"%s: no routing strategy specified: set -Impl or -CallPath", decl.Name)
	}

	if decl.Prefix != "" {
		if owner, taken := v.prefixes[decl.Prefix]; taken {
			return reject(models.RulePrefixCollision,
				"%s: prefix %q is already used by %s", decl.Name, decl.Prefix, owner)
		}
	}

	if owner, taken := v.codes[decl.UniqueCode]; taken {
		return reject(models.RuleUniqueCodeCollision,
			"%s: unique code %q is already used by %s", decl.Name, decl.UniqueCode, owner)
	}

	if decl.Prefix != "" {
		v.prefixes[decl.Prefix] = decl.QualifiedName()
	}
	v.codes[decl.UniqueCode] = decl.QualifiedName()

	return models.Diagnostic{}, true
}
