// Package templates renders synthesized artifacts to formatted Go source.
package templates

import (
	"bytes"
	"fmt"
	"text/template"

	dserrors "github.com/toyz/dsgen/internal/errors"
	"github.com/toyz/dsgen/internal/models"
	"github.com/toyz/dsgen/internal/utils"
)

// RuntimeImportPath is the package generated registries build on
const RuntimeImportPath = "github.com/toyz/dsgen/pkg/dsgen"

// Renderer turns artifacts into source files
type Renderer struct {
	templates map[models.ArtifactKind]*template.Template
}

// NewRenderer parses the artifact templates
func NewRenderer() (*Renderer, error) {
	registry := NewTemplateRegistry()
	r := &Renderer{templates: make(map[models.ArtifactKind]*template.Template)}

	for kind, name := range map[models.ArtifactKind]string{
		models.ArtifactInterface:      InterfaceTemplate,
		models.ArtifactRegistry:       RegistryTemplate,
		models.ArtifactImplementation: ImplementationTemplate,
	} {
		tmpl, err := template.New(name).Parse(registry.MustGet(name))
		if err != nil {
			return nil, dserrors.WrapTemplateError(name, "parse", err)
		}
		r.templates[kind] = tmpl
	}

	return r, nil
}

// Render produces the formatted source of one artifact
func (r *Renderer) Render(artifact *models.Artifact) ([]byte, error) {
	tmpl, ok := r.templates[artifact.Kind]
	if !ok {
		return nil, dserrors.NewGenerationErrorf("no template for %s artifact %s", artifact.Kind, artifact.SimpleName).
			WithArtifact(artifact.SimpleName).
			WithStage("render")
	}

	data := buildFileData(artifact)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, dserrors.WrapTemplateError(tmpl.Name(), "execute", err)
	}

	formatted, err := utils.FormatGoSource(artifact.FileName, buf.Bytes())
	if err != nil {
		return nil, dserrors.WrapTemplateError(tmpl.Name(), "format", err).
			WithContext("file", artifact.FileName).
			WithSuggestion(fmt.Sprintf("Check the -CallPath expressions of %v", artifact.Sources))
	}
	return formatted, nil
}

// RenderAll renders every artifact before returning, so a failure leaves
// nothing half produced. The result is keyed by file name.
func (r *Renderer) RenderAll(artifacts []*models.Artifact) (map[string][]byte, error) {
	out := make(map[string][]byte, len(artifacts))
	for _, artifact := range artifacts {
		if _, exists := out[artifact.FileName]; exists {
			return nil, dserrors.NewGenerationErrorf("two artifacts would be written to %s", artifact.FileName).
				WithArtifact(artifact.SimpleName).
				WithStage("render").
				WithSuggestion("Use distinct interface, registry and implementation names")
		}
		content, err := r.Render(artifact)
		if err != nil {
			return nil, err
		}
		out[artifact.FileName] = content
	}
	return out, nil
}

func buildFileData(artifact *models.Artifact) fileData {
	im := NewImportManager(artifact.PackagePath)

	data := fileData{
		Header:      utils.GeneratedMarker,
		PackageName: artifact.PackageName,
		Name:        artifact.SimpleName,
		Sources:     artifact.Sources,
	}

	switch artifact.Kind {
	case models.ArtifactRegistry:
		data.Runtime = im.AddPackage(RuntimeImportPath, "dsgen")
		data.SharedAccessor = artifact.SharedAccessor
		data.SharedVar = lowerFirst(artifact.SharedAccessor)
		data.Serialized = artifact.Serialized
		for _, a := range artifact.Accessors {
			im.AddTypes(a.InterfaceType, a.ImplType)
		}
		q := im.Qualifier()
		for _, a := range artifact.Accessors {
			data.Accessors = append(data.Accessors, accessorData{
				Name:          a.Name,
				Key:           a.Key,
				InterfaceType: a.InterfaceType.Format(q),
				ImplType:      a.ImplType.Format(q),
			})
		}

	case models.ArtifactImplementation:
		data.InterfaceName = artifact.InterfaceName
		data.Constructor = artifact.Constructor
		// source imports first so call paths keep their qualifiers
		for _, imp := range artifact.ExtraImports {
			im.AddSourceImport(imp)
		}
		fallthrough

	default:
		for _, m := range artifact.Members {
			for _, p := range m.Params {
				im.AddTypes(p.Type)
			}
			im.AddTypes(m.Results...)
		}
		data.Members = convertMembers(artifact.Members, im.Qualifier())
	}

	data.Imports = im.GenerateImports()
	return data
}
