package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is configuration to start main server.
type Profile struct {
	// Embedding configuration (OpenAI-compatible protocol).
	// Any provider speaking the /v1/embeddings API works: openai,
	// siliconflow, ollama, dashscope, etc.
	EmbeddingProvider   string
	EmbeddingModel      string
	EmbeddingAPIKey     string
	EmbeddingBaseURL    string
	EmbeddingDimensions int
	EmbeddingTimeout    int // seconds, applied to ingestion-side embedding calls

	// LLM configuration for the optional summarization step.
	LLMProvider string
	LLMAPIKey   string
	LLMBaseURL  string
	LLMModel    string
	LLMTimeout  int // seconds

	// Journal behavior
	Timezone      string // IANA name used for calendar-day normalization
	SearchTimeout int    // seconds, query-side embedding budget

	Mode    string
	Addr    string
	Port    int
	Data    string
	Driver  string
	DSN     string
	Version string
}

// Provider default configurations for embeddings.
// Used when the base URL or model is not explicitly set.
var embeddingProviderDefaults = map[string]struct {
	BaseURL    string
	Model      string
	Dimensions int
}{
	"siliconflow": {
		BaseURL:    "https://api.siliconflow.cn/v1",
		Model:      "BAAI/bge-m3",
		Dimensions: 1024,
	},
	"openai": {
		BaseURL:    "https://api.openai.com/v1",
		Model:      "text-embedding-3-small",
		Dimensions: 1536,
	},
	"ollama": {
		BaseURL:    "http://localhost:11434/v1",
		Model:      "nomic-embed-text",
		Dimensions: 768,
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsEmbeddingEnabled returns true if an embedding provider is configured.
// Without it entries are still persisted, just never semantically indexed.
func (p *Profile) IsEmbeddingEnabled() bool {
	return p.EmbeddingAPIKey != "" || p.EmbeddingProvider == "ollama"
}

// IsSummaryEnabled returns true if the summarization LLM is configured.
func (p *Profile) IsSummaryEnabled() bool {
	return p.LLMAPIKey != ""
}

// EmbeddingCallTimeout returns the ingestion-side embedding budget.
func (p *Profile) EmbeddingCallTimeout() time.Duration {
	if p.EmbeddingTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(p.EmbeddingTimeout) * time.Second
}

// SearchCallTimeout returns the query-side embedding budget. It is kept
// shorter than the ingestion budget so a slow provider degrades a search
// to filtered listing instead of stalling the request.
func (p *Profile) SearchCallTimeout() time.Duration {
	if p.SearchTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(p.SearchTimeout) * time.Second
}

// Location resolves the configured timezone for calendar-day
// normalization. Falls back to UTC on any parse failure so the streak
// tracker and analytics aggregator always agree on what "today" is.
func (p *Profile) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		slog.Warn("unknown timezone, falling back to UTC", "timezone", p.Timezone)
		return time.UTC
	}
	return loc
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	// Embedding configuration
	p.EmbeddingProvider = getEnvOrDefault("LIFELOG_EMBEDDING_PROVIDER", "siliconflow")
	p.EmbeddingModel = getEnvOrDefault("LIFELOG_EMBEDDING_MODEL", "")
	p.EmbeddingAPIKey = getEnvOrDefault("LIFELOG_EMBEDDING_API_KEY", "")
	p.EmbeddingBaseURL = getEnvOrDefault("LIFELOG_EMBEDDING_BASE_URL", "")
	p.EmbeddingDimensions = getEnvOrDefaultInt("LIFELOG_EMBEDDING_DIMENSIONS", 0)
	p.EmbeddingTimeout = getEnvOrDefaultInt("LIFELOG_EMBEDDING_TIMEOUT_SECONDS", 15)

	if p.EmbeddingProvider != "" {
		if _, ok := embeddingProviderDefaults[p.EmbeddingProvider]; !ok {
			slog.Warn("unknown embedding provider, using default: siliconflow", "provider", p.EmbeddingProvider)
			p.EmbeddingProvider = "siliconflow"
		}
	}
	if defaults, ok := embeddingProviderDefaults[p.EmbeddingProvider]; ok {
		if p.EmbeddingBaseURL == "" {
			p.EmbeddingBaseURL = defaults.BaseURL
		}
		if p.EmbeddingModel == "" {
			p.EmbeddingModel = defaults.Model
		}
		if p.EmbeddingDimensions == 0 {
			p.EmbeddingDimensions = defaults.Dimensions
		}
	}

	// Summarization LLM configuration
	p.LLMProvider = getEnvOrDefault("LIFELOG_LLM_PROVIDER", "openai")
	p.LLMAPIKey = getEnvOrDefault("LIFELOG_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("LIFELOG_LLM_BASE_URL", "https://api.openai.com/v1")
	p.LLMModel = getEnvOrDefault("LIFELOG_LLM_MODEL", "gpt-4o-mini")
	p.LLMTimeout = getEnvOrDefaultInt("LIFELOG_LLM_TIMEOUT_SECONDS", 60)

	// Journal behavior
	p.Timezone = getEnvOrDefault("LIFELOG_TIMEZONE", "UTC")
	p.SearchTimeout = getEnvOrDefaultInt("LIFELOG_SEARCH_TIMEOUT_SECONDS", 5)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "lifelog")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/lifelog"
		}
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver: %s", p.Driver)
	}

	if p.Driver == "sqlite" {
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
			return err
		}
		p.Data = dataDir
		if p.DSN == "" {
			dbFile := fmt.Sprintf("lifelog_%s.db", p.Mode)
			p.DSN = filepath.Join(dataDir, dbFile)
		}
	} else if p.DSN == "" {
		return errors.New("dsn required for postgres driver")
	}

	return nil
}
