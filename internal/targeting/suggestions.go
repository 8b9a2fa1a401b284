package targeting

import (
	"fmt"

	"tastetarget/internal/domain"
)

// Defaults used when no persona carries the corresponding interest category.
const (
	defaultMusicToken   = "indie"
	defaultFashionToken = "sustainable"
	defaultDiningToken  = "local"
)

// AggregateSuggestions derives the four strategy lists from the union of
// persona interests and the brief. Pure and deterministic: identical inputs
// produce identical output. No upstream calls.
func AggregateSuggestions(brief domain.Brief, personas []domain.Persona) domain.Suggestions {
	union := interestUnion(personas)
	value := brief.FirstBrandValue("authenticity")
	music := firstToken(union[domain.CategoryMusic], defaultMusicToken)
	fashion := firstToken(union[domain.CategoryFashion], defaultFashionToken)
	dining := firstToken(union[domain.CategoryDining], defaultDiningToken)

	return domain.Suggestions{
		ContentThemes: []string{
			fmt.Sprintf("Behind-the-scenes stories showing how %s embodies %s", brief.ProductName, value),
			fmt.Sprintf("User-generated content around everyday moments with %s", brief.ProductName),
			fmt.Sprintf("Educational series connecting %s to the %s lifestyle", brief.ProductName, value),
			fmt.Sprintf("Seasonal storytelling that keeps %s part of the conversation", brief.ProductName),
		},
		PartnershipIdeas: []string{
			fmt.Sprintf("Collaborate with %s artists on a limited release", music),
			fmt.Sprintf("Co-brand a capsule collection with %s fashion labels", fashion),
			fmt.Sprintf("Host pop-up events with %s dining spots", dining),
			"Cross-promote with aligned lifestyle newsletters and podcasts",
		},
		CampaignAngles: []string{
			fmt.Sprintf("Lead with %s as the reason to believe", value),
			fmt.Sprintf("Position the brand as the %s choice in its category", value),
			fmt.Sprintf("Invite customers to share what %s means to them", value),
			fmt.Sprintf("Contrast %s-driven craft with throwaway alternatives", value),
		},
		VisualDirections: []string{
			"Natural light photography with candid, unposed subjects",
			"A restrained palette anchored by one signature accent color",
			"Texture close-ups that communicate material quality",
			"Real customers in real settings over studio perfection",
		},
	}
}

// interestUnion merges persona interests per category, deduplicating while
// preserving first-seen order so the most salient tokens stay first.
func interestUnion(personas []domain.Persona) map[string][]string {
	union := make(map[string][]string, len(domain.InterestCategories))
	seen := make(map[string]map[string]struct{}, len(domain.InterestCategories))
	for _, persona := range personas {
		for _, category := range domain.InterestCategories {
			for _, token := range persona.CulturalInterests[category] {
				if seen[category] == nil {
					seen[category] = make(map[string]struct{})
				}
				if _, ok := seen[category][token]; ok {
					continue
				}
				seen[category][token] = struct{}{}
				union[category] = append(union[category], token)
			}
		}
	}
	return union
}

func firstToken(tokens []string, fallback string) string {
	if len(tokens) > 0 {
		return tokens[0]
	}
	return fallback
}
