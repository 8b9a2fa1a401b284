package taste

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tastetarget/internal/domain"
	"tastetarget/internal/infra"
)

// Options configures the Qloo taste-affinity client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client queries the cultural-affinity service for interest clusters. It
// never fails a request: any outage or unusable payload degrades to the
// built-in archetype clusters.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// affinityTags maps recognized brand values to the service's tag vocabulary.
// Unknown values pass through as a synthetic lifestyle tag.
var affinityTags = map[string]string{
	"sustainability": "sustainability",
	"innovation":     "technology",
	"luxury":         "luxury",
	"minimalism":     "minimalism",
	"ethical":        "ethical-consumption",
	"quality":        "premium",
}

// categoryHints assigns service items to interest categories by substring
// match on the item's category field. Items matching no hint are ignored.
var categoryHints = []struct {
	category string
	hints    []string
}{
	{domain.CategoryMusic, []string{"music", "artist"}},
	{domain.CategoryReading, []string{"book", "author"}},
	{domain.CategoryDining, []string{"restaurant", "food"}},
	{domain.CategoryTravel, []string{"destination", "travel"}},
	{domain.CategoryFashion, []string{"brand", "fashion"}},
}

const (
	maxClusters          = 3
	maxItemsPerQuery     = 10
	maxTokensPerCategory = 5
)

type insightsResponse struct {
	Data []insightItem `json:"data"`
}

type insightItem struct {
	Category string `json:"category"`
	Name     string `json:"name"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://hackathon.api.qloo.com"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Clusters returns one to three taste clusters for the brief. Per-query
// upstream failures are logged and skipped; a whole-service outage or zero
// usable results fall back to the archetype library.
func (c *Client) Clusters(ctx context.Context, brief domain.Brief) []domain.TasteCluster {
	if !c.HasCredentials() {
		return FallbackClusters(brief.BrandValues)
	}

	values := brief.BrandValues
	if len(values) > maxClusters {
		values = values[:maxClusters]
	}

	var clusters []domain.TasteCluster
	for _, value := range values {
		items, err := c.queryInsights(ctx, affinityTag(value))
		if err != nil {
			c.logger.Warn().Err(err).Str("brand_value", value).Msg("taste: query failed, skipping")
			continue
		}
		interests := projectInterests(items, value)
		if interests == nil {
			continue
		}
		clusters = append(clusters, domain.TasteCluster{
			ID:        clusterID(value),
			Interests: interests,
		})
	}

	if len(clusters) == 0 {
		c.logger.Info().Msg("taste: no usable clusters from service, using fallback archetypes")
		return FallbackClusters(brief.BrandValues)
	}
	if len(clusters) > maxClusters {
		clusters = clusters[:maxClusters]
	}
	return clusters
}

func (c *Client) queryInsights(ctx context.Context, tag string) ([]insightItem, error) {
	endpoint := c.baseURL + "/v2/insights"
	params := url.Values{}
	params.Set("filter.type", "urn:entity")
	params.Set("signal.interests.tags", tag)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("taste: build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("taste: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("taste: status %d", resp.StatusCode)
	}
	var decoded insightsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("taste: decode response: %w", err)
	}
	return decoded.Data, nil
}

// affinityTag translates a brand value through the fixed vocabulary map.
func affinityTag(value string) string {
	key := strings.ToLower(strings.TrimSpace(value))
	if tag, ok := affinityTags[key]; ok {
		return tag
	}
	return "lifestyle:" + key
}

// projectInterests folds service items into the five-category interest shape.
// Returns nil when not a single item could be categorized.
func projectInterests(items []insightItem, brandValue string) map[string][]string {
	if len(items) > maxItemsPerQuery {
		items = items[:maxItemsPerQuery]
	}
	interests := make(map[string][]string, len(domain.InterestCategories))
	matched := false
	for _, item := range items {
		category := categoryFor(item.Category)
		if category == "" {
			continue
		}
		name := strings.TrimSpace(item.Name)
		if name == "" || len(interests[category]) >= maxTokensPerCategory {
			continue
		}
		interests[category] = append(interests[category], name)
		matched = true
	}
	if !matched {
		return nil
	}
	// Empty categories are backfilled so downstream stages always see all
	// five populated.
	for _, category := range domain.InterestCategories {
		if len(interests[category]) == 0 {
			interests[category] = backfillTokens(category, brandValue)
		}
	}
	return interests
}

func categoryFor(raw string) string {
	lowered := strings.ToLower(raw)
	for _, ch := range categoryHints {
		for _, hint := range ch.hints {
			if strings.Contains(lowered, hint) {
				return ch.category
			}
		}
	}
	return ""
}

func clusterID(brandValue string) string {
	id := strings.ToLower(strings.TrimSpace(brandValue))
	id = strings.ReplaceAll(id, " ", "_")
	if id == "" {
		id = "general"
	}
	return "taste_" + id
}
