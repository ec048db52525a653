// Package config loads the service's runtime configuration from
// environment variables, grounded on
// _examples/2lar-b2/backend/infrastructure/config/config.go's
// getEnv/getEnvBool/getEnvInt helper pattern.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// LLMProvider selects which internal/llm adapter backs the pipeline's
// language-model calls (SPEC_FULL.md §11).
type LLMProvider string

const (
	ProviderOpenAI    LLMProvider = "openaichat"
	ProviderAnthropic LLMProvider = "anthropicchat"
	ProviderGemini    LLMProvider = "geminichat"
)

// Config holds every setting named in spec §6 "Configuration".
type Config struct {
	ServerAddress string
	Environment   string
	LogLevel      string

	DatabaseURL string

	SearchEngineURL    string
	SearchEngineAPIKey string

	EmbeddingModel      string
	EmbeddingDimensions int

	LLMProvider LLMProvider
	LLMModel    string
	LLMAPIKey   string
	LLMBaseURL  string

	CacheEnabled    bool
	CacheMaxSize    int
	CacheTTLSeconds int

	ConceptualExpansionEnabled bool
}

// Load reads Config from the environment, applying the same defaults a
// local development run needs (spec §6, SPEC_FULL.md §10).
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", "discoveryengine.db"),

		SearchEngineURL:    getEnv("SEARCH_ENGINE_URL", "http://localhost:9200"),
		SearchEngineAPIKey: getEnv("SEARCH_ENGINE_API_KEY", ""),

		EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 384),

		LLMProvider: LLMProvider(getEnv("LLM_PROVIDER", string(ProviderOpenAI))),
		LLMModel:    getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:   getEnv("LLM_API_KEY", ""),
		LLMBaseURL:  getEnv("LLM_BASE_URL", ""),

		CacheEnabled:    getEnvBool("EXPLANATION_CACHE_ENABLED", true),
		CacheMaxSize:    getEnvInt("EXPLANATION_CACHE_MAX_SIZE", 1000),
		CacheTTLSeconds: getEnvInt("EXPLANATION_CACHE_TTL_SECONDS", 3600),

		ConceptualExpansionEnabled: getEnvBool("CONCEPTUAL_EXPANSION_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields that are fatal at startup if missing (spec
// §7 "Configuration errors ... fatal at startup").
func (c *Config) Validate() error {
	if c.LLMAPIKey == "" {
		return fmt.Errorf("config: LLM_API_KEY is required")
	}
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("config: unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.SearchEngineURL == "" {
		return fmt.Errorf("config: SEARCH_ENGINE_URL is required")
	}
	if u, err := url.Parse(c.SearchEngineURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: SEARCH_ENGINE_URL %q is not a valid URL", c.SearchEngineURL)
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("config: EMBEDDING_DIMENSIONS must be positive")
	}
	return nil
}

// IsProduction reports whether the service is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	return v == "true" || v == "1" || v == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
