package targeting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tastetarget/internal/domain"
	"tastetarget/internal/providers/taste"
	"tastetarget/internal/providers/textgen"
)

func newTestPipeline(gen Generator) *Pipeline {
	logger := discardLogger()
	return NewPipeline(
		taste.NewClient(taste.Options{}), // no credential: archetype fallback
		NewPersonaSynthesizer(gen, logger),
		NewCopySynthesizer(gen, logger),
		*logger,
	)
}

// jsonGenerator answers persona prompts and copy prompts with the matching
// valid payload, the way a cooperative model would.
func jsonGenerator() *fakeGenerator {
	return &fakeGenerator{generate: func(_ context.Context, prompt string, _ textgen.GenerateOptions) (string, error) {
		if strings.Contains(prompt, "persona_name") {
			return validPersonaJSON, nil
		}
		return validCopyJSON, nil
	}}
}

func TestGenerateTargetingFallbackClusters(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(jsonGenerator())
	start := time.Now().UTC()

	result, err := p.GenerateTargeting(context.Background(), domain.Brief{
		ProductName:        "Atlas Sneaker",
		ProductDescription: "Recycled-ocean-plastic runners",
		BrandValues:        []string{"sustainability", "quality"},
		CampaignTone:       "balanced",
	})
	if err != nil {
		t.Fatalf("GenerateTargeting returned error: %v", err)
	}

	wantIDs := []string{"eco_conscious", "premium_lifestyle", "balanced_modern"}
	if len(result.Personas) != len(wantIDs) {
		t.Fatalf("got %d personas, want %d", len(result.Personas), len(wantIDs))
	}
	for i, id := range wantIDs {
		if result.Personas[i].PersonaID != id {
			t.Fatalf("personas[%d].PersonaID = %q, want %q", i, result.Personas[i].PersonaID, id)
		}
	}
	if len(result.Copies) != len(result.Personas) {
		t.Fatalf("got %d copies, want %d", len(result.Copies), len(result.Personas))
	}
	for i := range result.Personas {
		if result.Copies[i].PersonaID != result.Personas[i].PersonaID {
			t.Fatalf("copies[%d] misaligned: %q vs %q", i, result.Copies[i].PersonaID, result.Personas[i].PersonaID)
		}
	}
	if !strings.HasSuffix(result.DataSource, "(fallback clusters)") {
		t.Fatalf("DataSource = %q, want fallback provenance", result.DataSource)
	}
	if result.GeneratedAt.Before(start) {
		t.Fatalf("GeneratedAt %v precedes request start %v", result.GeneratedAt, start)
	}
	if result.ProductName != "Atlas Sneaker" {
		t.Fatalf("ProductName = %q", result.ProductName)
	}
}

func TestGenerateTargetingAllModelOutputGarbage(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(staticGenerator("nope"))

	result, err := p.GenerateTargeting(context.Background(), domain.Brief{
		ProductName:        "Atlas Sneaker",
		ProductDescription: "Recycled-ocean-plastic runners",
		BrandValues:        []string{"sustainability", "quality"},
	})
	if err != nil {
		t.Fatalf("GenerateTargeting returned error: %v", err)
	}
	wantNames := []string{"The Conscious Pioneer", "The Luxury Connoisseur", "The Modern Optimizer"}
	for i, want := range wantNames {
		if result.Personas[i].Name != want {
			t.Fatalf("personas[%d].Name = %q, want %q", i, result.Personas[i].Name, want)
		}
	}
	// Suggestions still derive from cluster interests.
	if len(result.Suggestions.ContentThemes) != 4 {
		t.Fatalf("suggestions missing: %#v", result.Suggestions)
	}
}

func TestGenerateTargetingEmptyBrandValues(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(jsonGenerator())
	result, err := p.GenerateTargeting(context.Background(), domain.Brief{
		ProductName:        "Atlas Sneaker",
		ProductDescription: "Runners",
	})
	if err != nil {
		t.Fatalf("GenerateTargeting returned error: %v", err)
	}
	if len(result.Personas) != 1 || result.Personas[0].PersonaID != "balanced_modern" {
		t.Fatalf("personas = %#v, want single balanced_modern", result.Personas)
	}
}

func TestGenerateTargetingOutageBecomesGenerationFailed(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{generate: func(context.Context, string, textgen.GenerateOptions) (string, error) {
		return "", textgen.ErrUnavailable
	}}
	p := newTestPipeline(gen)
	_, err := p.GenerateTargeting(context.Background(), domain.Brief{
		ProductName:        "Atlas Sneaker",
		ProductDescription: "Runners",
	})
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("GenerateTargeting error = %v, want ErrGenerationFailed", err)
	}
}

func TestGenerateTargetingInvariants(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(jsonGenerator())
	result, err := p.GenerateTargeting(context.Background(), domain.Brief{
		ProductName:        "Atlas Sneaker",
		ProductDescription: "Runners",
		BrandValues:        []string{"ethical", "innovation", "luxury"},
	})
	if err != nil {
		t.Fatalf("GenerateTargeting returned error: %v", err)
	}
	if n := len(result.Personas); n < 1 || n > 3 {
		t.Fatalf("persona count %d outside [1,3]", n)
	}
	for _, persona := range result.Personas {
		for _, category := range domain.InterestCategories {
			if len(persona.CulturalInterests[category]) == 0 {
				t.Fatalf("persona %s missing category %s", persona.PersonaID, category)
			}
		}
	}
	seen := map[string]bool{}
	for _, c := range result.Copies {
		seen[c.PersonaID] = true
	}
	for _, persona := range result.Personas {
		if !seen[persona.PersonaID] {
			t.Fatalf("no copy for persona %s", persona.PersonaID)
		}
	}
}

func TestGenerateTargetingDeterministicWithoutCredentials(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(staticGenerator("nope"))
	brief := domain.Brief{
		ProductName:        "Atlas Sneaker",
		ProductDescription: "Runners",
		BrandValues:        []string{"sustainability", "quality"},
	}
	first, err := p.GenerateTargeting(context.Background(), brief)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.GenerateTargeting(context.Background(), brief)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first.Personas {
		if first.Personas[i].PersonaID != second.Personas[i].PersonaID {
			t.Fatalf("persona ids diverged between identical requests")
		}
		if first.Personas[i].Name != second.Personas[i].Name {
			t.Fatalf("persona names diverged between identical requests")
		}
	}
}
