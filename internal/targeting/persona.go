package targeting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"tastetarget/internal/domain"
	"tastetarget/internal/infra"
	"tastetarget/internal/providers/textgen"
)

// Generator is the slice of the text generation client the synthesizers use.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts textgen.GenerateOptions) (string, error)
}

// PersonaSynthesizer turns taste clusters into typed personas via the
// language service, degrading to fixed fallback personas when the model
// output is unusable.
type PersonaSynthesizer struct {
	gen    Generator
	logger *infra.Logger
}

func NewPersonaSynthesizer(gen Generator, logger *infra.Logger) *PersonaSynthesizer {
	return &PersonaSynthesizer{gen: gen, logger: logger}
}

// Display names for personas synthesized from the built-in archetypes when
// the model cannot be used. Other cluster IDs get a positional name.
var fallbackPersonaNames = map[string]string{
	"eco_conscious":     "The Conscious Pioneer",
	"tech_innovator":    "The Tech Trailblazer",
	"premium_lifestyle": "The Luxury Connoisseur",
	"balanced_modern":   "The Modern Optimizer",
}

var (
	fallbackPsychographics = []string{"curious", "value-driven", "social", "practical", "aspirational"}
	fallbackChannels       = []string{"Instagram", "TikTok", "Email", "YouTube"}
	fallbackInfluencers    = []string{"Micro-influencers", "Industry experts", "Content creators"}
)

// SynthesizeAll maps clusters to personas, preserving input order. Calls are
// issued concurrently; only a language-service outage aborts the batch.
func (s *PersonaSynthesizer) SynthesizeAll(ctx context.Context, brief domain.Brief, clusters []domain.TasteCluster) ([]domain.Persona, error) {
	personas := make([]domain.Persona, len(clusters))
	g, ctx := errgroup.WithContext(ctx)
	for i, cluster := range clusters {
		g.Go(func() error {
			persona, err := s.Synthesize(ctx, brief, cluster, i)
			if err != nil {
				return err
			}
			personas[i] = persona
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return personas, nil
}

// Synthesize builds one persona from one cluster. Malformed or missing model
// output degrades to the fallback persona; only ErrUnavailable propagates.
func (s *PersonaSynthesizer) Synthesize(ctx context.Context, brief domain.Brief, cluster domain.TasteCluster, index int) (domain.Persona, error) {
	prompt := buildPersonaPrompt(brief, cluster)
	out, err := s.gen.Generate(ctx, prompt, textgen.GenerateOptions{Temperature: 0.7, MaxTokens: 500})
	if err != nil {
		if errors.Is(err, textgen.ErrUnavailable) || errors.Is(err, context.Canceled) {
			return domain.Persona{}, err
		}
		s.logger.Debug().Err(err).Str("cluster", cluster.ID).Msg("persona: generation failed, using fallback")
		return s.fallbackPersona(brief, cluster, index), nil
	}

	payload := textgen.ExtractJSON(out)
	name := stringField(payload, "persona_name")
	if name == "" {
		s.logger.Debug().Str("cluster", cluster.ID).Msg("persona: unusable model output, using fallback")
		return s.fallbackPersona(brief, cluster, index), nil
	}

	description := stringField(payload, "description")
	if description == "" {
		description = fallbackDescription(brief)
	}
	return domain.Persona{
		PersonaID:         cluster.ID,
		Name:              name,
		Description:       description,
		CulturalInterests: cluster.Interests,
		Psychographics:    stringListField(payload, "psychographics", fallbackPsychographics),
		PreferredChannels: stringListField(payload, "preferred_channels", fallbackChannels),
		InfluencerTypes:   stringListField(payload, "influencer_types", fallbackInfluencers),
	}, nil
}

func (s *PersonaSynthesizer) fallbackPersona(brief domain.Brief, cluster domain.TasteCluster, index int) domain.Persona {
	name, ok := fallbackPersonaNames[cluster.ID]
	if !ok {
		name = fmt.Sprintf("Persona %d", index+1)
	}
	return domain.Persona{
		PersonaID:         cluster.ID,
		Name:              name,
		Description:       fallbackDescription(brief),
		CulturalInterests: cluster.Interests,
		Psychographics:    append([]string(nil), fallbackPsychographics...),
		PreferredChannels: append([]string(nil), fallbackChannels...),
		InfluencerTypes:   append([]string(nil), fallbackInfluencers...),
	}
}

func fallbackDescription(brief domain.Brief) string {
	return fmt.Sprintf("A consumer whose cultural tastes and values align naturally with %s.", brief.ProductName)
}

func buildPersonaPrompt(brief domain.Brief, cluster domain.TasteCluster) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "You are a marketing strategist. Create one audience persona for the product %q (%s).",
		brief.ProductName, brief.ProductDescription)
	if len(brief.BrandValues) > 0 {
		fmt.Fprintf(sb, " Brand values: %s.", strings.Join(brief.BrandValues, ", "))
	}
	sb.WriteString(" Their cultural tastes: ")
	sb.WriteString(interestDigest(cluster.Interests, 3))
	sb.WriteString(". Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"persona_name":string,"description":string,"psychographics":[5 single-word traits],"preferred_channels":[4 channel names],"influencer_types":[3 role labels]}`)
	sb.WriteString(". The description is 1-3 sentences. No text outside the JSON object.")
	return sb.String()
}

// interestDigest renders the top tokens per category in canonical order so
// prompts stay stable for identical clusters.
func interestDigest(interests map[string][]string, perCategory int) string {
	var parts []string
	for _, category := range domain.InterestCategories {
		tokens := interests[category]
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) > perCategory {
			tokens = tokens[:perCategory]
		}
		parts = append(parts, fmt.Sprintf("%s: %s", category, strings.Join(tokens, ", ")))
	}
	return strings.Join(parts, "; ")
}

func stringField(payload map[string]any, key string) string {
	v, _ := payload[key].(string)
	return strings.TrimSpace(v)
}

func stringListField(payload map[string]any, key string, fallback []string) []string {
	raw, ok := payload[key].([]any)
	if !ok {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
