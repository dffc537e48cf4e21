package ai

import (
	"time"

	"github.com/hrygo/lifelog/internal/profile"
)

// Config represents AI configuration.
type Config struct {
	Embedding EmbeddingConfig
	LLM       LLMConfig
}

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Dimensions int

	// RequestsPerMinute throttles calls to stay under provider quotas.
	// Zero disables client-side throttling.
	RequestsPerMinute int
}

// LLMConfig represents the summarization LLM configuration.
type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int           // default: 1024
	Temperature float32       // default: 0.3
	Timeout     time.Duration // default: 60s
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Embedding: EmbeddingConfig{
			Provider:          p.EmbeddingProvider,
			Model:             p.EmbeddingModel,
			APIKey:            p.EmbeddingAPIKey,
			BaseURL:           p.EmbeddingBaseURL,
			Dimensions:        p.EmbeddingDimensions,
			RequestsPerMinute: 120,
		},
		LLM: LLMConfig{
			Provider:    p.LLMProvider,
			Model:       p.LLMModel,
			APIKey:      p.LLMAPIKey,
			BaseURL:     p.LLMBaseURL,
			MaxTokens:   1024,
			Temperature: 0.3,
			Timeout:     time.Duration(p.LLMTimeout) * time.Second,
		},
	}
	return cfg
}
