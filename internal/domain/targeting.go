package domain

import "time"

// Interest categories every taste cluster carries. Ordering is meaningful:
// within a category the first token is the most salient one and downstream
// stages rely on that.
const (
	CategoryMusic   = "music"
	CategoryReading = "reading"
	CategoryDining  = "dining"
	CategoryTravel  = "travel"
	CategoryFashion = "fashion"
)

// InterestCategories lists the five required categories in canonical order.
var InterestCategories = []string{
	CategoryMusic,
	CategoryReading,
	CategoryDining,
	CategoryTravel,
	CategoryFashion,
}

// TasteCluster is a named bundle of cultural interests across the five fixed
// categories. IDs are stable within a response and seed the persona IDs.
type TasteCluster struct {
	ID        string              `json:"id"`
	Interests map[string][]string `json:"interests"`
}

// Persona is a marketing profile synthesized from a single taste cluster.
// PersonaID always equals the originating cluster's ID.
type Persona struct {
	PersonaID         string              `json:"persona_id"`
	Name              string              `json:"persona_name"`
	Description       string              `json:"description"`
	CulturalInterests map[string][]string `json:"cultural_interests"`
	Psychographics    []string            `json:"psychographics"`
	PreferredChannels []string            `json:"preferred_channels"`
	InfluencerTypes   []string            `json:"influencer_types"`
}

// Copy is the five-field marketing text bundle generated for one persona.
type Copy struct {
	PersonaID          string `json:"persona_id"`
	Tagline            string `json:"tagline"`
	SocialCaption      string `json:"social_caption"`
	AdCopy             string `json:"ad_copy"`
	EmailSubject       string `json:"email_subject"`
	ProductDescription string `json:"product_description"`
}

// Suggestions holds the four aggregate strategy lists derived from the union
// of persona interests.
type Suggestions struct {
	ContentThemes    []string `json:"content_themes"`
	PartnershipIdeas []string `json:"partnership_ideas"`
	CampaignAngles   []string `json:"campaign_angles"`
	VisualDirections []string `json:"visual_directions"`
}

// TargetingResult is the response envelope for one targeting run. It is
// request-scoped and immutable once assembled.
type TargetingResult struct {
	ProductName string      `json:"product_name"`
	Personas    []Persona   `json:"personas"`
	Copies      []Copy      `json:"copies"`
	GeneratedAt time.Time   `json:"generated_at"`
	Suggestions Suggestions `json:"suggestions"`
	DataSource  string      `json:"data_source"`
}
