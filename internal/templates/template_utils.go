package templates

import (
	"strings"

	"github.com/toyz/dsgen/internal/models"
	"github.com/toyz/dsgen/internal/naming"
)

// memberData is a member rendered to source fragments
type memberData struct {
	Signature string // Name(params) results
	Body      string // forwarding statement, empty for interface members
}

type accessorData struct {
	Name          string
	Key           string
	InterfaceType string
	ImplType      string
}

// fileData is the input of every artifact template
type fileData struct {
	Header      string
	PackageName string
	Imports     string
	Name        string
	Sources     []string

	Members []memberData

	// Registry
	Runtime        string
	SharedVar      string
	SharedAccessor string
	Serialized     bool
	Accessors      []accessorData

	// Implementation
	InterfaceName string
	Constructor   string
}

// FormatSignature renders a member as Name(params) results
func FormatSignature(m models.Member, q models.Qualifier) string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteByte(' ')
		if m.Variadic && i == len(m.Params)-1 {
			b.WriteString("...")
		}
		b.WriteString(p.Type.Format(q))
	}
	b.WriteByte(')')

	switch len(m.Results) {
	case 0:
	case 1:
		b.WriteByte(' ')
		b.WriteString(m.Results[0].Format(q))
	default:
		b.WriteString(" (")
		for i, r := range m.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.Format(q))
		}
		b.WriteByte(')')
	}
	return b.String()
}

func convertMembers(members []models.Member, q models.Qualifier) []memberData {
	result := make([]memberData, 0, len(members))
	for _, m := range members {
		data := memberData{Signature: FormatSignature(m, q)}
		if m.Body != nil {
			data.Body = naming.Render(m.Body)
		}
		result = append(result, data)
	}
	return result
}

// lowerFirst lower-cases the first ASCII letter
func lowerFirst(s string) string {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return s
	}
	return string(s[0]+('a'-'A')) + s[1:]
}
