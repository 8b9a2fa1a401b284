package targeting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tastetarget/internal/domain"
	"tastetarget/internal/infra"
	"tastetarget/internal/providers/textgen"
)

// CopySynthesizer generates the five-field copy bundle for each persona,
// with the same fallback discipline as the persona synthesizer.
type CopySynthesizer struct {
	gen    Generator
	logger *infra.Logger
}

func NewCopySynthesizer(gen Generator, logger *infra.Logger) *CopySynthesizer {
	return &CopySynthesizer{gen: gen, logger: logger}
}

// toneGuidelines steer the copy voice. Brief normalization guarantees the
// tone key exists.
var toneGuidelines = map[string]string{
	domain.ToneMinimal:    "Spare, clean language. Short sentences. No exclamation marks.",
	domain.ToneBalanced:   "Warm and professional. Conversational but polished.",
	domain.ToneExpressive: "Vivid, emotive language with sensory detail and personality.",
	domain.ToneBold:       "Confident, punchy, high-energy statements that take a stance.",
}

// SynthesizeAll maps personas to copy bundles, preserving input order.
func (s *CopySynthesizer) SynthesizeAll(ctx context.Context, brief domain.Brief, personas []domain.Persona) ([]domain.Copy, error) {
	copies := make([]domain.Copy, len(personas))
	g, ctx := errgroup.WithContext(ctx)
	for i, persona := range personas {
		g.Go(func() error {
			c, err := s.Synthesize(ctx, brief, persona)
			if err != nil {
				return err
			}
			copies[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return copies, nil
}

// Synthesize builds one copy bundle for one persona.
func (s *CopySynthesizer) Synthesize(ctx context.Context, brief domain.Brief, persona domain.Persona) (domain.Copy, error) {
	prompt := buildCopyPrompt(brief, persona)
	out, err := s.gen.Generate(ctx, prompt, textgen.GenerateOptions{Temperature: 0.8, MaxTokens: 600})
	if err != nil {
		if errors.Is(err, textgen.ErrUnavailable) || errors.Is(err, context.Canceled) {
			return domain.Copy{}, err
		}
		s.logger.Debug().Err(err).Str("persona", persona.PersonaID).Msg("copy: generation failed, using fallback")
		return s.fallbackCopy(brief, persona), nil
	}

	payload := textgen.ExtractJSON(out)
	tagline := stringField(payload, "tagline")
	if tagline == "" {
		s.logger.Debug().Str("persona", persona.PersonaID).Msg("copy: unusable model output, using fallback")
		return s.fallbackCopy(brief, persona), nil
	}

	fallback := s.fallbackCopy(brief, persona)
	return domain.Copy{
		PersonaID:          persona.PersonaID,
		Tagline:            tagline,
		SocialCaption:      coalesce(stringField(payload, "social_caption"), fallback.SocialCaption),
		AdCopy:             coalesce(stringField(payload, "ad_copy"), fallback.AdCopy),
		EmailSubject:       coalesce(stringField(payload, "email_subject"), fallback.EmailSubject),
		ProductDescription: coalesce(stringField(payload, "product_description"), fallback.ProductDescription),
	}, nil
}

// fallbackCopy assembles presentable copy from the brief alone. Length
// policies from the prompt are honored where cheap (the email subject cap).
func (s *CopySynthesizer) fallbackCopy(brief domain.Brief, persona domain.Persona) domain.Copy {
	value := brief.FirstBrandValue("innovation")
	titled := cases.Title(language.Und).String(value)
	subject := fmt.Sprintf("Discover %s", brief.ProductName)
	if len(subject) > 50 {
		subject = subject[:50]
	}
	return domain.Copy{
		PersonaID: persona.PersonaID,
		Tagline:   fmt.Sprintf("%s: %s First", brief.ProductName, titled),
		SocialCaption: fmt.Sprintf("Meet %s — %s Built around %s, made for people like %s. ✨",
			brief.ProductName, sentence(brief.ProductDescription), value, persona.Name),
		AdCopy: fmt.Sprintf("%s is here. %s Because %s matters to us, it shows in every detail. Try it today.",
			brief.ProductName, sentence(brief.ProductDescription), value),
		EmailSubject: subject,
		ProductDescription: fmt.Sprintf("%s — %s Designed with %s in mind.",
			brief.ProductName, sentence(brief.ProductDescription), value),
	}
}

func buildCopyPrompt(brief domain.Brief, persona domain.Persona) string {
	guideline := toneGuidelines[brief.CampaignTone]
	if guideline == "" {
		guideline = toneGuidelines[domain.ToneBalanced]
	}
	music := topTokens(persona.CulturalInterests[domain.CategoryMusic], 2)
	fashion := topTokens(persona.CulturalInterests[domain.CategoryFashion], 2)

	sb := &strings.Builder{}
	fmt.Fprintf(sb, "You are a senior copywriter. Write marketing copy for the product %q (%s), aimed at this persona: %s.",
		brief.ProductName, brief.ProductDescription, persona.Description)
	if music != "" {
		fmt.Fprintf(sb, " They listen to %s.", music)
	}
	if fashion != "" {
		fmt.Fprintf(sb, " They wear %s.", fashion)
	}
	fmt.Fprintf(sb, " Tone: %s", guideline)
	sb.WriteString(" Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"tagline":string,"social_caption":string,"ad_copy":string,"email_subject":string,"product_description":string}`)
	sb.WriteString(". The tagline is at most 8 words, the email_subject at most 50 characters, the ad_copy 3-4 sentences, the product_description 2-3 sentences. No text outside the JSON object.")
	return sb.String()
}

func topTokens(tokens []string, n int) string {
	if len(tokens) > n {
		tokens = tokens[:n]
	}
	return strings.Join(tokens, " and ")
}

// sentence makes a description safe to embed mid-copy by guaranteeing a
// trailing period.
func sentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}
	return text
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
