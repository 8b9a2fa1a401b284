package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tastetarget/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without
// credentials. Callers treat it as a fallback trigger, not an outage.
var ErrMissingAPIKey = errors.New("textgen: api key is required")

// ErrUnavailable indicates that the language service could not serve the
// request after all retries and the fallback model were exhausted. This is
// the only error that aborts a targeting run.
var ErrUnavailable = errors.New("textgen: service unavailable")

// Options configures the hosted-inference text generation client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	FallbackModel  string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	// RetryWait is the pause before retrying a warming-up model. MaxAttempts
	// caps total attempts per model. Sleep is injectable for tests.
	RetryWait   time.Duration
	MaxAttempts int
	Sleep       func(ctx context.Context, d time.Duration) error
}

// Client performs HTTP calls to a hosted-inference text generation API.
// Retries for transient unavailability live here and nowhere else.
type Client struct {
	apiKey        string
	baseURL       string
	model         string
	fallbackModel string
	httpClient    *http.Client
	logger        *infra.Logger
	retryWait     time.Duration
	maxAttempts   int
	sleep         func(ctx context.Context, d time.Duration) error
}

// GenerateOptions carries per-call sampling controls. A zero Model uses the
// client's configured one.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
	Model       string
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
	Options    inferenceOptions    `json:"options"`
}

type inferenceParameters struct {
	MaxNewTokens      int     `json:"max_new_tokens"`
	Temperature       float64 `json:"temperature"`
	DoSample          bool    `json:"do_sample"`
	ReturnFullText    bool    `json:"return_full_text"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type generatedText struct {
	GeneratedText string `json:"generated_text"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "mistralai/Mistral-7B-Instruct-v0.2"
	}
	retryWait := opts.RetryWait
	if retryWait <= 0 {
		retryWait = 20 * time.Second
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
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
		apiKey:        strings.TrimSpace(opts.APIKey),
		baseURL:       baseURL,
		model:         model,
		fallbackModel: strings.TrimSpace(opts.FallbackModel),
		httpClient:    httpClient,
		logger:        logger,
		retryWait:     retryWait,
		maxAttempts:   maxAttempts,
		sleep:         sleep,
	}
}

// Model returns the configured primary model identifier.
func (c *Client) Model() string {
	return c.model
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Generate produces text for the prompt. Transient 503 responses are retried
// with a fixed wait; persistent failures get one shot at the fallback model
// before ErrUnavailable surfaces.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = c.model
	}

	text, err := c.generateWithRetry(ctx, model, prompt, opts)
	if err == nil {
		return text, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}
	if c.fallbackModel != "" && c.fallbackModel != model {
		c.logger.Warn().Err(err).Str("model", model).Str("fallback_model", c.fallbackModel).
			Msg("textgen: primary model failed, trying fallback model")
		if text, fbErr := c.generateOnce(ctx, c.fallbackModel, prompt, opts); fbErr == nil {
			return text, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnavailable, err)
}

func (c *Client) generateWithRetry(ctx context.Context, model, prompt string, opts GenerateOptions) (string, error) {
	var last error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		text, err := c.generateOnce(ctx, model, prompt, opts)
		if err == nil {
			return text, nil
		}
		last = err
		if !isLoading(err) {
			return "", err
		}
		if attempt == c.maxAttempts {
			break
		}
		c.logger.Info().Str("model", model).Int("attempt", attempt).
			Dur("wait", c.retryWait).Msg("textgen: model loading, waiting before retry")
		if err := c.sleep(ctx, c.retryWait); err != nil {
			return "", err
		}
	}
	return "", last
}

type loadingError struct {
	status int
}

func (e *loadingError) Error() string {
	return fmt.Sprintf("textgen: model loading (status %d)", e.status)
}

func isLoading(err error) bool {
	var le *loadingError
	return errors.As(err, &le)
}

func (c *Client) generateOnce(ctx context.Context, model, prompt string, opts GenerateOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}
	payload := inferenceRequest{
		Inputs: formatPrompt(model, prompt),
		Parameters: inferenceParameters{
			MaxNewTokens:      maxTokens,
			Temperature:       temperature,
			DoSample:          true,
			ReturnFullText:    false,
			RepetitionPenalty: 1.1,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("textgen: encode request: %w", err)
	}
	endpoint := c.baseURL + "/models/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("textgen: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("textgen: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("textgen: read response: %w", err)
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		return "", &loadingError{status: resp.StatusCode}
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("textgen: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	text, err := decodeGenerated(raw)
	if err != nil {
		return "", err
	}
	return cleanOutput(text), nil
}

// decodeGenerated accepts both response shapes the service emits: an array
// whose first element carries generated_text, or a single object.
func decodeGenerated(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", errors.New("textgen: empty response body")
	}
	if trimmed[0] == '[' {
		var list []generatedText
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return "", fmt.Errorf("textgen: decode response: %w", err)
		}
		if len(list) == 0 {
			return "", errors.New("textgen: empty response list")
		}
		return list[0].GeneratedText, nil
	}
	var single generatedText
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return "", fmt.Errorf("textgen: decode response: %w", err)
	}
	return single.GeneratedText, nil
}

// formatPrompt applies the instruction wrapper expected by instruction-tuned
// chat models. Base models get the prompt as-is.
func formatPrompt(model, prompt string) string {
	lowered := strings.ToLower(model)
	if strings.Contains(lowered, "instruct") || strings.Contains(lowered, "zephyr") || strings.Contains(lowered, "chat") {
		return "<s>[INST] " + prompt + " [/INST]"
	}
	return prompt
}

var wrapperTokens = []string{"<s>", "</s>", "[INST]", "[/INST]", "<|assistant|>", "<|user|>", "<|system|>"}

// cleanOutput strips chat-wrapper tokens and normalizes whitespace.
func cleanOutput(text string) string {
	for _, token := range wrapperTokens {
		text = strings.ReplaceAll(text, token, "")
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	text = strings.Join(lines, "\n")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
