package targeting

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tastetarget/internal/domain"
	"tastetarget/internal/providers/taste"
	"tastetarget/internal/providers/textgen"
)

const validCopyJSON = `{
	"tagline": "Run Lighter on the Planet",
	"social_caption": "Every step counts 🌊",
	"ad_copy": "Made from ocean plastic. Built to last. Priced to move. Feels like nothing else.",
	"email_subject": "Your next run starts in the ocean",
	"product_description": "Runners made from recycled ocean plastic. Light, durable, responsible."
}`

func testPersona() domain.Persona {
	cluster := taste.FallbackClusters([]string{"sustainability"})[0]
	return domain.Persona{
		PersonaID:         cluster.ID,
		Name:              "The Conscious Pioneer",
		Description:       "Values-led shopper who researches before buying.",
		CulturalInterests: cluster.Interests,
		Psychographics:    []string{"mindful"},
		PreferredChannels: []string{"Instagram"},
		InfluencerTypes:   []string{"Micro-influencers"},
	}
}

func TestSynthesizeCopyFromModelOutput(t *testing.T) {
	t.Parallel()
	s := NewCopySynthesizer(staticGenerator("```json\n"+validCopyJSON+"\n```"), discardLogger())
	persona := testPersona()
	c, err := s.Synthesize(context.Background(), testBrief(), persona)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if c.PersonaID != persona.PersonaID {
		t.Fatalf("PersonaID = %q", c.PersonaID)
	}
	if c.Tagline != "Run Lighter on the Planet" {
		t.Fatalf("Tagline = %q", c.Tagline)
	}
	if c.EmailSubject == "" || c.AdCopy == "" || c.SocialCaption == "" || c.ProductDescription == "" {
		t.Fatalf("copy has empty fields: %#v", c)
	}
}

func TestSynthesizeCopyFallbackOnGarbage(t *testing.T) {
	t.Parallel()
	s := NewCopySynthesizer(staticGenerator("nope"), discardLogger())
	brief := testBrief()
	c, err := s.Synthesize(context.Background(), brief, testPersona())
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if !strings.Contains(c.Tagline, "Atlas Sneaker") {
		t.Fatalf("fallback tagline = %q, want product name present", c.Tagline)
	}
	// First brand value flows into the fallback copy.
	if !strings.Contains(c.AdCopy, "sustainability") {
		t.Fatalf("fallback ad copy = %q, want brand value present", c.AdCopy)
	}
	if len(c.EmailSubject) > 50 {
		t.Fatalf("fallback email subject too long: %q", c.EmailSubject)
	}
}

func TestSynthesizeCopyFallbackDefaultsToInnovation(t *testing.T) {
	t.Parallel()
	s := NewCopySynthesizer(staticGenerator("nope"), discardLogger())
	brief := domain.Brief{ProductName: "Atlas Sneaker", ProductDescription: "Runners"}
	brief.Normalize()
	c, err := s.Synthesize(context.Background(), brief, testPersona())
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if !strings.Contains(c.AdCopy, "innovation") {
		t.Fatalf("ad copy = %q, want literal innovation default", c.AdCopy)
	}
}

func TestSynthesizeCopyPropagatesOutage(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{generate: func(context.Context, string, textgen.GenerateOptions) (string, error) {
		return "", textgen.ErrUnavailable
	}}
	s := NewCopySynthesizer(gen, discardLogger())
	_, err := s.Synthesize(context.Background(), testBrief(), testPersona())
	if !errors.Is(err, textgen.ErrUnavailable) {
		t.Fatalf("Synthesize error = %v, want ErrUnavailable", err)
	}
}

func TestCopyPromptCarriesToneAndInterests(t *testing.T) {
	t.Parallel()
	cases := []struct {
		tone string
		want string
	}{
		{domain.ToneMinimal, "Spare, clean language"},
		{domain.ToneBold, "Confident, punchy"},
		{"unknown", "Warm and professional"},
	}
	for _, tc := range cases {
		gen := staticGenerator(validCopyJSON)
		s := NewCopySynthesizer(gen, discardLogger())
		brief := testBrief()
		brief.CampaignTone = tc.tone
		brief.Normalize()
		if _, err := s.Synthesize(context.Background(), brief, testPersona()); err != nil {
			t.Fatalf("Synthesize returned error: %v", err)
		}
		prompt := gen.prompts[0]
		if !strings.Contains(prompt, tc.want) {
			t.Fatalf("tone %q: prompt missing guideline %q", tc.tone, tc.want)
		}
		if !strings.Contains(prompt, "indie folk") {
			t.Fatalf("prompt missing salient music interest:\n%s", prompt)
		}
	}
}

func TestSynthesizeAllCopiesAlignWithPersonas(t *testing.T) {
	t.Parallel()
	s := NewCopySynthesizer(staticGenerator(validCopyJSON), discardLogger())
	personas := []domain.Persona{testPersona()}
	second := testPersona()
	second.PersonaID = "balanced_modern"
	personas = append(personas, second)

	copies, err := s.SynthesizeAll(context.Background(), testBrief(), personas)
	if err != nil {
		t.Fatalf("SynthesizeAll returned error: %v", err)
	}
	if len(copies) != len(personas) {
		t.Fatalf("got %d copies, want %d", len(copies), len(personas))
	}
	for i := range personas {
		if copies[i].PersonaID != personas[i].PersonaID {
			t.Fatalf("copies[%d].PersonaID = %q, want %q", i, copies[i].PersonaID, personas[i].PersonaID)
		}
	}
}
