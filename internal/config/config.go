package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/hybridqa/internal/domain"
)

// Config holds the hybridqa configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Vector     VectorConfig     `yaml:"vector"`
	Cache      CacheConfig      `yaml:"cache"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Search     SearchConfig     `yaml:"search"`
	Generation GenerationConfig `yaml:"generation"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port              int      `yaml:"port"`
	ReadTimeoutSec    int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec   int      `yaml:"write_timeout_sec"`
	ShutdownSec       int      `yaml:"shutdown_timeout_sec"`
	RequestTimeoutSec int      `yaml:"request_timeout_sec"`
	CORSOrigins       []string `yaml:"cors_origins"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL                string `yaml:"url"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
	ReadinessTimeout   int    `yaml:"readiness_timeout_sec"`
}

// VectorConfig holds Milvus connection and collection settings.
type VectorConfig struct {
	Address          string `yaml:"address"`
	Token            string `yaml:"token"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	Database         string `yaml:"database"`
	UseTLS           bool   `yaml:"use_tls"`
	ChunkCollection  string `yaml:"chunk_collection"`
	RecipeCollection string `yaml:"recipe_collection"`
	NList            int    `yaml:"nlist"`
	NProbe           int    `yaml:"nprobe"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds the optional embedding cache. Empty Addrs disables it.
type CacheConfig struct {
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTLHours int      `yaml:"ttl_hours"`
}

// Enabled reports whether a cache is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// EmbeddingConfig holds the embedding endpoint settings.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"`
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	Dimensions     int    `yaml:"dimensions"`
	WarmupAttempts int    `yaml:"warmup_attempts"`
}

// SearchConfig tunes retrieval and fusion.
type SearchConfig struct {
	Threshold     *float64 `yaml:"threshold"`
	Overfetch     int      `yaml:"overfetch"`
	ResultCap     int      `yaml:"result_cap"`
	TopK          int      `yaml:"top_k"`
	ContextBudget int      `yaml:"context_budget"`
}

// ProviderConfig holds one generation provider. An empty APIKey leaves it unconfigured.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// RateLimitConfig bounds retries of the rate-limited provider.
type RateLimitConfig struct {
	MaxAttempts    int `yaml:"max_attempts"`
	DefaultWaitSec int `yaml:"default_wait_sec"`
}

// GenerationConfig holds the answer providers in priority order.
type GenerationConfig struct {
	Groq        ProviderConfig  `yaml:"groq"`
	Gemini      ProviderConfig  `yaml:"gemini"`
	OpenAI      ProviderConfig  `yaml:"openai"`
	Anthropic   ProviderConfig  `yaml:"anthropic"`
	MaxTokens   int             `yaml:"max_tokens"`
	Temperature float64         `yaml:"temperature"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// RequestTimeout returns the per-request deadline.
func (c HTTPConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory is loaded first when present.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	vec := domain.DefaultVectorConfig()

	c.applyHTTPDefaults()
	c.applyStoreDefaults(vec)

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "tei"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "sentence-transformers/" + vec.Model
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = vec.Dimensions
	}
	if c.Embedding.WarmupAttempts <= 0 {
		c.Embedding.WarmupAttempts = 8
	}

	if c.Search.Threshold == nil {
		t := vec.SimilarityThreshold
		c.Search.Threshold = &t
	}
	if c.Search.Overfetch <= 0 {
		c.Search.Overfetch = 20
	}
	if c.Search.ResultCap <= 0 {
		c.Search.ResultCap = 6
	}
	if c.Search.TopK <= 0 {
		c.Search.TopK = 5
	}
	if c.Search.ContextBudget <= 0 {
		c.Search.ContextBudget = 6000
	}

	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 512
	}
	if c.Generation.Temperature <= 0 {
		c.Generation.Temperature = 0.2
	}
	if c.Generation.RateLimit.MaxAttempts <= 0 {
		c.Generation.RateLimit.MaxAttempts = 3
	}
	if c.Generation.RateLimit.DefaultWaitSec <= 0 {
		c.Generation.RateLimit.DefaultWaitSec = 20
	}
}

func (c *Config) applyHTTPDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 300
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RequestTimeoutSec <= 0 {
		c.HTTP.RequestTimeoutSec = 180
	}
}

func (c *Config) applyStoreDefaults(vec domain.VectorConfig) {
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetimeSec <= 0 {
		c.Database.ConnMaxLifetimeSec = 1800
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Vector.ChunkCollection == "" {
		c.Vector.ChunkCollection = "document_chunks"
	}
	if c.Vector.RecipeCollection == "" {
		c.Vector.RecipeCollection = "recipe_vectors"
	}
	if c.Vector.NList <= 0 {
		c.Vector.NList = vec.NList
	}
	if c.Vector.NProbe <= 0 {
		c.Vector.NProbe = vec.NProbe
	}
	if c.Vector.ReadinessTimeout <= 0 {
		c.Vector.ReadinessTimeout = 30
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24 * 7
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.Vector.Address == "" {
		return fmt.Errorf("vector.address is required")
	}
	if c.Vector.ChunkCollection == c.Vector.RecipeCollection {
		return fmt.Errorf("vector.chunk_collection and vector.recipe_collection must differ, both are %q",
			c.Vector.ChunkCollection)
	}
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url is required")
	}
	if t := c.Search.Threshold; t != nil && (*t < 0 || *t > 1) {
		return fmt.Errorf("search.threshold must be in [0, 1], got %g", *t)
	}
	if c.Search.ResultCap > c.Search.Overfetch {
		return fmt.Errorf("search.result_cap (%d) must not exceed search.overfetch (%d)",
			c.Search.ResultCap, c.Search.Overfetch)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
