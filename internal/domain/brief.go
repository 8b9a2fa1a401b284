package domain

import (
	"fmt"
	"strings"
)

// Campaign tones accepted by the generation pipeline. Anything else is
// coerced to ToneBalanced during normalization.
const (
	ToneMinimal    = "minimal"
	ToneBalanced   = "balanced"
	ToneExpressive = "expressive"
	ToneBold       = "bold"
)

var knownTones = map[string]struct{}{
	ToneMinimal:    {},
	ToneBalanced:   {},
	ToneExpressive: {},
	ToneBold:       {},
}

// Brief is the product description that drives a targeting run.
type Brief struct {
	ProductName        string   `json:"product_name"`
	ProductDescription string   `json:"product_description"`
	BrandValues        []string `json:"brand_values"`
	TargetMood         []string `json:"target_mood"`
	CampaignTone       string   `json:"campaign_tone"`
}

// Validate rejects briefs that cannot enter the pipeline. It only checks the
// two required fields; everything else has a defined empty behavior.
func (b Brief) Validate() error {
	if strings.TrimSpace(b.ProductName) == "" {
		return fmt.Errorf("%w: product_name is required", ErrInvalidBrief)
	}
	if strings.TrimSpace(b.ProductDescription) == "" {
		return fmt.Errorf("%w: product_description is required", ErrInvalidBrief)
	}
	return nil
}

// Normalize trims the text fields and coerces an unknown campaign tone to
// balanced. Called once at the pipeline entrance.
func (b *Brief) Normalize() {
	b.ProductName = strings.TrimSpace(b.ProductName)
	b.ProductDescription = strings.TrimSpace(b.ProductDescription)
	b.CampaignTone = strings.ToLower(strings.TrimSpace(b.CampaignTone))
	if _, ok := knownTones[b.CampaignTone]; !ok {
		b.CampaignTone = ToneBalanced
	}
	b.BrandValues = trimAll(b.BrandValues)
	b.TargetMood = trimAll(b.TargetMood)
}

// FirstBrandValue returns the first non-empty brand value, or fallback.
func (b Brief) FirstBrandValue(fallback string) string {
	for _, v := range b.BrandValues {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return fallback
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
