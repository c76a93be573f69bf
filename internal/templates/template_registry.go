package templates

// Template names, one per artifact kind
const (
	InterfaceTemplate      = "interface"
	RegistryTemplate       = "registry"
	ImplementationTemplate = "implementation"
)

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerArtifactTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.Get(name)
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

const fileHeader = `{{.Header}}

package {{.PackageName}}

{{.Imports}}
`

func (tr *TemplateRegistry) registerArtifactTemplates() {
	tr.templates[InterfaceTemplate] = fileHeader + `
// {{.Name}} aggregates the operations of every datasource declaration.
{{- if .Sources}}
//
// Sources:
{{- range .Sources}}
//   - {{.}}
{{- end}}
{{- end}}
type {{.Name}} interface {
{{- range .Members}}
	{{.Signature}}
{{- end}}
}
`

	tr.templates[RegistryTemplate] = fileHeader + `
// {{.Name}} lazily creates one implementation per datasource and returns
// the same instance on every later call.
type {{.Name}} struct {
	instances *{{.Runtime}}.Registry
}

var {{.SharedVar}} = &{{.Name}}{instances: {{.Runtime}}.NewRegistry({{if .Serialized}}{{.Runtime}}.Serialized{{end}})}

// {{.SharedAccessor}} returns the process-wide {{.Name}}.
func {{.SharedAccessor}}() *{{.Name}} {
	return {{.SharedVar}}
}
{{range .Accessors}}
// {{.Name}} returns the {{.Key}} datasource, creating it on first use.
func (m *{{$.Name}}) {{.Name}}() {{.InterfaceType}} {
	return {{$.Runtime}}.Resolve(m.instances, {{printf "%q" .Key}}, func() {{.InterfaceType}} {
		return new({{.ImplType}})
	})
}
{{end}}`

	tr.templates[ImplementationTemplate] = fileHeader + `
// {{.Name}} implements {{.InterfaceName}} by forwarding every operation to
// its datasource.
type {{.Name}} struct{}

var _ {{.InterfaceName}} = (*{{.Name}})(nil)

// {{.Constructor}} creates a forwarding {{.InterfaceName}}.
func {{.Constructor}}() *{{.Name}} {
	return &{{.Name}}{}
}
{{range .Members}}
func (*{{$.Name}}) {{.Signature}} {
	{{.Body}}
}
{{end}}`
}
