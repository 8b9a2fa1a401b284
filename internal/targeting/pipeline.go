package targeting

import (
	"context"
	"fmt"
	"time"

	"tastetarget/internal/domain"
	"tastetarget/internal/infra"
)

// ClusterSource is the slice of the taste client the pipeline depends on.
type ClusterSource interface {
	Clusters(ctx context.Context, brief domain.Brief) []domain.TasteCluster
	HasCredentials() bool
}

// Provenance strings disclosed in the response envelope. Phrasing is
// user-visible and load-bearing for the dashboard; do not reword casually.
const (
	sourceLive     = "Qloo Taste AI + Hugging Face"
	sourceFallback = "Hugging Face (fallback clusters)"
)

// Pipeline sequences cluster discovery, persona synthesis, copy synthesis
// and suggestion aggregation into one response envelope.
type Pipeline struct {
	taste    ClusterSource
	personas *PersonaSynthesizer
	copies   *CopySynthesizer
	logger   infra.Logger
}

func NewPipeline(taste ClusterSource, personas *PersonaSynthesizer, copies *CopySynthesizer, logger infra.Logger) *Pipeline {
	return &Pipeline{taste: taste, personas: personas, copies: copies, logger: logger}
}

// GenerateTargeting runs the full pipeline for one brief. Individual persona
// or copy failures degrade to fallback entities inside the synthesizers; the
// run only fails when the language service cannot serve any request, and
// then it fails with ErrGenerationFailed.
func (p *Pipeline) GenerateTargeting(ctx context.Context, brief domain.Brief) (*domain.TargetingResult, error) {
	brief.Normalize()

	clusters := p.taste.Clusters(ctx, brief)
	p.logger.Debug().Int("clusters", len(clusters)).Str("product", brief.ProductName).Msg("pipeline: clusters resolved")

	personas, err := p.personas.SynthesizeAll(ctx, brief, clusters)
	if err != nil {
		return nil, fmt.Errorf("%w: personas: %s", domain.ErrGenerationFailed, err)
	}

	copies, err := p.copies.SynthesizeAll(ctx, brief, personas)
	if err != nil {
		return nil, fmt.Errorf("%w: copy: %s", domain.ErrGenerationFailed, err)
	}

	dataSource := sourceFallback
	if p.taste.HasCredentials() {
		dataSource = sourceLive
	}

	return &domain.TargetingResult{
		ProductName: brief.ProductName,
		Personas:    personas,
		Copies:      copies,
		GeneratedAt: time.Now().UTC(),
		Suggestions: AggregateSuggestions(brief, personas),
		DataSource:  dataSource,
	}, nil
}
