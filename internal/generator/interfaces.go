package generator

import "github.com/toyz/dsgen/internal/models"

// ArtifactSynthesizer builds the generated artifacts from accepted
// declarations
type ArtifactSynthesizer interface {
	Generate(accepted []*models.Declaration) (*Artifacts, error)
}

var _ ArtifactSynthesizer = (*Generator)(nil)
