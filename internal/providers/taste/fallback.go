package taste

import (
	"strings"

	"tastetarget/internal/domain"
)

// Archetype cluster IDs used when the taste service is unavailable. They are
// deterministic so identical briefs yield identical cluster sequences.
const (
	ArchetypeEcoConscious     = "eco_conscious"
	ArchetypeTechInnovator    = "tech_innovator"
	ArchetypePremiumLifestyle = "premium_lifestyle"
	ArchetypeBalancedModern   = "balanced_modern"
)

// archetypeTriggers pairs each archetype with the brand-value stems that
// activate it. Evaluated in order, so trigger order decides cluster order.
var archetypeTriggers = []struct {
	id    string
	stems []string
}{
	{ArchetypeEcoConscious, []string{"sustain", "ethic"}},
	{ArchetypeTechInnovator, []string{"innovat", "modern"}},
	{ArchetypePremiumLifestyle, []string{"luxur", "quality"}},
}

var archetypeInterests = map[string]map[string][]string{
	ArchetypeEcoConscious: {
		domain.CategoryMusic:   {"indie folk", "acoustic singer-songwriters", "nature field recordings"},
		domain.CategoryReading: {"climate nonfiction", "Michael Pollan", "zero-waste guides"},
		domain.CategoryDining:  {"farm-to-table", "vegan cafes", "organic markets", "community gardens"},
		domain.CategoryTravel:  {"eco-lodges", "national parks", "slow travel"},
		domain.CategoryFashion: {"Patagonia", "thrift finds", "natural fibers", "repair-over-replace"},
	},
	ArchetypeTechInnovator: {
		domain.CategoryMusic:   {"electronic", "synthwave", "lo-fi beats"},
		domain.CategoryReading: {"sci-fi novels", "Wired", "startup memoirs", "hard science blogs"},
		domain.CategoryDining:  {"food halls", "fusion cuisine", "ghost kitchens"},
		domain.CategoryTravel:  {"Tokyo", "Seoul", "smart-city breaks", "conference trips"},
		domain.CategoryFashion: {"techwear", "minimalist sneakers", "smartwatches"},
	},
	ArchetypePremiumLifestyle: {
		domain.CategoryMusic:   {"jazz standards", "classical", "lounge"},
		domain.CategoryReading: {"Monocle", "wine guides", "design biographies"},
		domain.CategoryDining:  {"fine dining", "omakase", "wine bars", "chef's tables"},
		domain.CategoryTravel:  {"boutique hotels", "the Maldives", "first-class rail"},
		domain.CategoryFashion: {"designer labels", "tailored silhouettes", "heritage watches"},
	},
	ArchetypeBalancedModern: {
		domain.CategoryMusic:   {"indie pop", "chart playlists", "podcasts"},
		domain.CategoryReading: {"bestsellers", "weekend newsletters", "book clubs"},
		domain.CategoryDining:  {"brunch spots", "neighborhood bistros", "specialty coffee"},
		domain.CategoryTravel:  {"city breaks", "beach resorts", "road trips"},
		domain.CategoryFashion: {"smart casual", "athleisure", "capsule wardrobes"},
	},
}

// FallbackClusters derives up to three archetype clusters from the brand
// values. At least one cluster is always returned; balanced_modern pads the
// list when fewer than three archetypes trigger.
func FallbackClusters(brandValues []string) []domain.TasteCluster {
	var ids []string
	for _, trigger := range archetypeTriggers {
		for _, value := range brandValues {
			if containsStem(value, trigger.stems) {
				ids = append(ids, trigger.id)
				break
			}
		}
	}
	if len(ids) < maxClusters {
		ids = append(ids, ArchetypeBalancedModern)
	}
	if len(ids) > maxClusters {
		ids = ids[:maxClusters]
	}

	clusters := make([]domain.TasteCluster, 0, len(ids))
	for _, id := range ids {
		clusters = append(clusters, domain.TasteCluster{
			ID:        id,
			Interests: copyInterests(archetypeInterests[id]),
		})
	}
	return clusters
}

// backfillTokens fills an empty interest category after a live query, keyed
// by the brand value's archetype so personas always see five populated
// categories.
func backfillTokens(category, brandValue string) []string {
	id := ArchetypeBalancedModern
	for _, trigger := range archetypeTriggers {
		if containsStem(brandValue, trigger.stems) {
			id = trigger.id
			break
		}
	}
	return append([]string(nil), archetypeInterests[id][category]...)
}

func containsStem(value string, stems []string) bool {
	lowered := strings.ToLower(value)
	for _, stem := range stems {
		if strings.Contains(lowered, stem) {
			return true
		}
	}
	return false
}

// copyInterests guards the static archetype tables against downstream
// mutation.
func copyInterests(interests map[string][]string) map[string][]string {
	out := make(map[string][]string, len(interests))
	for category, tokens := range interests {
		out[category] = append([]string(nil), tokens...)
	}
	return out
}
