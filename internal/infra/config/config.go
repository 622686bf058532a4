package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends accepted by storage.backend.
const (
	BackendMemory      = "memory"
	BackendSQLite      = "sqlite"
	BackendPostgres    = "postgres"
	BackendValkey      = "valkey"
	BackendObjectStore = "objectstore"
)

// LLM providers accepted by llm.provider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	LLM      LLMConfig      `yaml:"llm"`
	Analysis AnalysisConfig `yaml:"analysis"`
	History  HistoryConfig  `yaml:"history"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the per-client limiter on analysis endpoints.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig selects and configures the generative model provider.
type LLMConfig struct {
	Provider    string         `yaml:"provider"`
	Model       string         `yaml:"model"`
	ImageModel  string         `yaml:"imageModel"`
	Temperature float32        `yaml:"temperature"`
	Gemini      ProviderConfig `yaml:"gemini"`
	OpenAI      ProviderConfig `yaml:"openai"`
}

// ProviderConfig holds credentials for one provider.
type ProviderConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseUrl"`
}

// AnalysisConfig bounds input and drives retries and image generation.
type AnalysisConfig struct {
	MinInputLen      int           `yaml:"minInputLen"`
	MaxInputLen      int           `yaml:"maxInputLen"`
	MaxRetries       int           `yaml:"maxRetries"`
	BaseDelay        time.Duration `yaml:"baseDelay"`
	ImagesEnabled    bool          `yaml:"imagesEnabled"`
	ImageStyleSuffix string        `yaml:"imageStyleSuffix"`
	ImageAspectRatio string        `yaml:"imageAspectRatio"`
}

type HistoryConfig struct {
	MaxItems int `yaml:"maxItems"`
}

// StorageConfig picks the key/value backend for history and preferences.
// Users live in postgres whenever postgres.dsn is set.
type StorageConfig struct {
	Backend     string            `yaml:"backend"`
	SQLite      SQLiteConfig      `yaml:"sqlite"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Valkey      ValkeyConfig      `yaml:"valkey"`
	ObjectStore ObjectStoreConfig `yaml:"objectStore"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for the valkey backend.
type ValkeyConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// ObjectStoreConfig points at an S3-compatible bucket (S3, R2, MinIO).
type ObjectStoreConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// AuthConfig drives token signing and Google sign-in.
type AuthConfig struct {
	Secret          string        `yaml:"secret"`
	TokenTTL        time.Duration `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTtl"`
	Google          GoogleConfig  `yaml:"google"`
}

type GoogleConfig struct {
	ClientID             string `yaml:"clientId"`
	ClientSecret         string `yaml:"clientSecret"`
	RedirectURL          string `yaml:"redirectUrl"`
	TokenEncryptionKey   string `yaml:"tokenEncryptionKey"`
	PostLoginRedirectURL string `yaml:"postLoginRedirectUrl"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg, os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config, lookup lookupFunc) {
	e := env{lookup: lookup}

	e.str("HTTP_ADDR", &cfg.HTTP.Address)
	e.duration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout)
	e.duration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout)
	e.list("HTTP_ALLOWED_ORIGINS", &cfg.HTTP.AllowedOrigins)
	e.boolean("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	e.integer("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	e.integer("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)

	e.str("LLM_PROVIDER", &cfg.LLM.Provider)
	e.str("LLM_MODEL", &cfg.LLM.Model)
	e.str("LLM_IMAGE_MODEL", &cfg.LLM.ImageModel)
	e.real32("LLM_TEMPERATURE", &cfg.LLM.Temperature)
	e.str("GEMINI_API_KEY", &cfg.LLM.Gemini.APIKey)
	e.str("GEMINI_BASE_URL", &cfg.LLM.Gemini.BaseURL)
	e.str("OPENAI_API_KEY", &cfg.LLM.OpenAI.APIKey)
	e.str("OPENAI_BASE_URL", &cfg.LLM.OpenAI.BaseURL)

	e.integer("ANALYSIS_MIN_INPUT_LEN", &cfg.Analysis.MinInputLen)
	e.integer("ANALYSIS_MAX_INPUT_LEN", &cfg.Analysis.MaxInputLen)
	e.integer("ANALYSIS_MAX_RETRIES", &cfg.Analysis.MaxRetries)
	e.duration("ANALYSIS_BASE_DELAY", &cfg.Analysis.BaseDelay)
	e.boolean("ANALYSIS_IMAGES_ENABLED", &cfg.Analysis.ImagesEnabled)

	e.integer("HISTORY_MAX_ITEMS", &cfg.History.MaxItems)

	e.str("STORAGE_BACKEND", &cfg.Storage.Backend)
	e.str("SQLITE_PATH", &cfg.Storage.SQLite.Path)
	e.str("DATABASE_URL", &cfg.Storage.Postgres.DSN)
	e.integer32("DATABASE_MAX_CONNS", &cfg.Storage.Postgres.MaxConns)
	e.integer32("DATABASE_MIN_CONNS", &cfg.Storage.Postgres.MinConns)
	e.str("VALKEY_ADDR", &cfg.Storage.Valkey.Addr)
	e.str("VALKEY_PREFIX", &cfg.Storage.Valkey.Prefix)
	e.str("OBJECT_STORE_ENDPOINT", &cfg.Storage.ObjectStore.Endpoint)
	e.str("OBJECT_STORE_ACCESS_KEY", &cfg.Storage.ObjectStore.AccessKey)
	e.str("OBJECT_STORE_SECRET_KEY", &cfg.Storage.ObjectStore.SecretKey)
	e.str("OBJECT_STORE_BUCKET", &cfg.Storage.ObjectStore.Bucket)
	e.str("OBJECT_STORE_REGION", &cfg.Storage.ObjectStore.Region)
	e.str("OBJECT_STORE_PREFIX", &cfg.Storage.ObjectStore.Prefix)

	e.str("JWT_SECRET", &cfg.Auth.Secret)
	e.duration("JWT_TOKEN_TTL", &cfg.Auth.TokenTTL)
	e.duration("JWT_REFRESH_TOKEN_TTL", &cfg.Auth.RefreshTokenTTL)
	e.str("GOOGLE_CLIENT_ID", &cfg.Auth.Google.ClientID)
	e.str("GOOGLE_CLIENT_SECRET", &cfg.Auth.Google.ClientSecret)
	e.str("GOOGLE_REDIRECT_URL", &cfg.Auth.Google.RedirectURL)
	e.str("GOOGLE_TOKEN_ENCRYPTION_KEY", &cfg.Auth.Google.TokenEncryptionKey)
	e.str("GOOGLE_POST_LOGIN_REDIRECT_URL", &cfg.Auth.Google.PostLoginRedirectURL)
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 90 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 20,
				Burst:             5,
			},
		},
		LLM: LLMConfig{
			Provider:    ProviderGemini,
			Model:       "gemini-2.0-flash-exp",
			ImageModel:  "imagen-4.0-generate-001",
			Temperature: 0.1,
		},
		Analysis: AnalysisConfig{
			MinInputLen:      10,
			MaxInputLen:      10000,
			MaxRetries:       3,
			BaseDelay:        time.Second,
			ImagesEnabled:    true,
			ImageStyleSuffix: ". Studio lighting, high quality, commercial photography, clean aesthetic, depth of field.",
			ImageAspectRatio: "1:1",
		},
		History: HistoryConfig{MaxItems: 50},
		Storage: StorageConfig{
			Backend:  BackendMemory,
			SQLite:   SQLiteConfig{Path: "data/kai.db"},
			Postgres: PostgresConfig{MaxConns: 4},
			Valkey:   ValkeyConfig{Prefix: "kai"},
			ObjectStore: ObjectStoreConfig{
				Bucket: "kai-insight",
				Prefix: "kv",
			},
		},
		Auth: AuthConfig{
			TokenTTL:        time.Hour,
			RefreshTokenTTL: 30 * 24 * time.Hour,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.Analysis.ImagesEnabled && strings.TrimSpace(c.LLM.ImageModel) == "" {
		return errors.New("llm.imageModel cannot be empty when images are enabled")
	}
	if c.Analysis.MinInputLen <= 0 || c.Analysis.MaxInputLen < c.Analysis.MinInputLen {
		return errors.New("analysis input bounds must satisfy 0 < minInputLen <= maxInputLen")
	}
	if c.Analysis.MaxRetries <= 0 {
		return errors.New("analysis.maxRetries must be positive")
	}
	if c.Analysis.BaseDelay < 0 {
		return errors.New("analysis.baseDelay cannot be negative")
	}
	if c.History.MaxItems <= 0 {
		return errors.New("history.maxItems must be positive")
	}
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if strings.TrimSpace(c.Storage.SQLite.Path) == "" {
			return errors.New("storage.sqlite.path cannot be empty")
		}
	case BackendPostgres:
		if strings.TrimSpace(c.Storage.Postgres.DSN) == "" {
			return errors.New("storage.postgres.dsn cannot be empty for the postgres backend")
		}
	case BackendValkey:
		if strings.TrimSpace(c.Storage.Valkey.Addr) == "" {
			return errors.New("storage.valkey.addr cannot be empty for the valkey backend")
		}
	case BackendObjectStore:
		if strings.TrimSpace(c.Storage.ObjectStore.Endpoint) == "" || strings.TrimSpace(c.Storage.ObjectStore.Bucket) == "" {
			return errors.New("storage.objectStore endpoint and bucket are required")
		}
	default:
		return fmt.Errorf("storage.backend %q is not supported", c.Storage.Backend)
	}
	if c.Auth.TokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("auth token ttls must be positive")
	}
	return nil
}
