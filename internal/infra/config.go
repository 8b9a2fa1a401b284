package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
// Upstream credentials are optional: a missing key switches the service to the
// matching fallback path instead of failing startup.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	QlooAPIKey  string
	QlooBaseURL string

	HFAPIKey        string
	HFBaseURL       string
	HFModel         string
	HFFallbackModel string

	TasteTimeout   time.Duration
	TextGenTimeout time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	CORSAllowedOrigins []string
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", ""),

		QlooAPIKey:  os.Getenv("QLOO_API_KEY"),
		QlooBaseURL: getEnv("QLOO_BASE_URL", "https://hackathon.api.qloo.com"),

		HFAPIKey:        os.Getenv("HF_API_KEY"),
		HFBaseURL:       getEnv("HF_BASE_URL", "https://api-inference.huggingface.co"),
		HFModel:         getEnv("HF_MODEL", "mistralai/Mistral-7B-Instruct-v0.2"),
		HFFallbackModel: getEnv("HF_FALLBACK_MODEL", "HuggingFaceH4/zephyr-7b-beta"),

		TasteTimeout:   time.Second * time.Duration(getEnvInt("TASTE_TIMEOUT_SECONDS", 15)),
		TextGenTimeout: time.Second * time.Duration(getEnvInt("TEXTGEN_TIMEOUT_SECONDS", 30)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}
	return cfg, nil
}

// QlooConfigured reports whether the taste-service credential is present.
func (c *Config) QlooConfigured() bool {
	return strings.TrimSpace(c.QlooAPIKey) != ""
}

// HFConfigured reports whether the language-service credential is present.
func (c *Config) HFConfigured() bool {
	return strings.TrimSpace(c.HFAPIKey) != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
