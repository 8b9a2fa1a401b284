package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("QLOO_API_KEY", "")
	t.Setenv("QLOO_BASE_URL", "")
	t.Setenv("HF_API_KEY", "")
	t.Setenv("HF_MODEL", "")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.QlooBaseURL != "https://hackathon.api.qloo.com" {
		t.Fatalf("QlooBaseURL = %q", cfg.QlooBaseURL)
	}
	if cfg.HFModel != "mistralai/Mistral-7B-Instruct-v0.2" {
		t.Fatalf("HFModel = %q", cfg.HFModel)
	}
	if cfg.TasteTimeout != 15*time.Second || cfg.TextGenTimeout != 30*time.Second {
		t.Fatalf("upstream timeouts = %v / %v", cfg.TasteTimeout, cfg.TextGenTimeout)
	}
}

func TestLoadConfigMissingCredentialsIsNotFatal(t *testing.T) {
	t.Setenv("QLOO_API_KEY", "")
	t.Setenv("HF_API_KEY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.QlooConfigured() {
		t.Fatal("QlooConfigured() = true without a key")
	}
	if cfg.HFConfigured() {
		t.Fatal("HFConfigured() = true without a key")
	}
}

func TestLoadConfigReadsCredentials(t *testing.T) {
	t.Setenv("QLOO_API_KEY", "qk")
	t.Setenv("HF_API_KEY", "hk")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if !cfg.QlooConfigured() || !cfg.HFConfigured() {
		t.Fatal("credential flags not set")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://staging.example.com" {
		t.Fatalf("CORSAllowedOrigins = %#v", cfg.CORSAllowedOrigins)
	}
}
