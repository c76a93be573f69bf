package models

import (
	"fmt"
	"strings"
)

// Severity of a diagnostic
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the string representation of the severity
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic rules
const (
	RuleRoutingStrategy     = "routing-strategy"
	RulePrefixCollision     = "prefix-collision"
	RuleUniqueCodeCollision = "unique-code-collision"
	RuleAnnotationSyntax    = "annotation-syntax"
	RuleUnsupportedTarget   = "unsupported-target"
	RuleUnsupportedType     = "unsupported-type"
	RuleEmbeddedInterface   = "embedded-interface"
	RuleUnresolvedImpl      = "unresolved-impl"
)

// Diagnostic is a problem attributed to one declaration
type Diagnostic struct {
	Severity    Severity
	Rule        string
	Message     string
	Declaration string // qualified name, empty when unknown
	Location    SourceLocation
}

// String formats the diagnostic as location: severity: message [rule]
func (d Diagnostic) String() string {
	var b strings.Builder
	if loc := d.Location.String(); loc != "" {
		b.WriteString(loc)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s: %s", d.Severity, d.Message)
	if d.Rule != "" {
		fmt.Fprintf(&b, " [%s]", d.Rule)
	}
	return b.String()
}

// Reporter receives diagnostics as they are produced
type Reporter interface {
	Report(d Diagnostic)
}

// DiagnosticCollector is a Reporter that keeps every diagnostic in order
type DiagnosticCollector struct {
	Diagnostics []Diagnostic
}

func (c *DiagnosticCollector) Report(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// HasErrors reports whether any error-severity diagnostic was collected
func (c *DiagnosticCollector) HasErrors() bool {
	for _, d := range c.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ByRule returns the collected diagnostics with the given rule
func (c *DiagnosticCollector) ByRule(rule string) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.Diagnostics {
		if d.Rule == rule {
			out = append(out, d)
		}
	}
	return out
}
