package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath    = "config.yaml"
	defaultProvider      = ProviderGemini
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultGroqModel     = "llama-3.3-70b-versatile"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultImageModel    = "imagen-3.0-generate-002"
	defaultAspectRatio   = "1:1"
	defaultTimeout       = 60 * time.Second
	defaultMaxRetries    = 1
	defaultPostsDir      = "./posts"
	defaultImagesDir     = "./images"
	defaultGCSPrefix     = "postcraft"
	defaultHistoryTurns  = 10
	defaultSuggestWindow = 3
	defaultLogLevel      = "info"
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
)

type Config struct {
	APIKey    string
	Project   string
	Location  string
	GCSBucket string

	LLM     LLMConfig     `yaml:"llm"`
	Image   ImageConfig   `yaml:"image"`
	Backend BackendConfig `yaml:"backend"`
	Storage StorageConfig `yaml:"storage"`
	Chat    ChatConfig    `yaml:"chat"`
	Log     LogConfig     `yaml:"log"`
	Secrets SecretsConfig `yaml:"secrets"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"` // "gemini", "groq" or "openai"
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
}

type ImageConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Model            string `yaml:"model"`
	AspectRatio      string `yaml:"aspect_ratio"`
	RequireGenerated bool   `yaml:"require_generated"`
}

type BackendConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

type StorageConfig struct {
	PostsDir  string `yaml:"posts_dir"`
	ImagesDir string `yaml:"images_dir"`
	GCSPrefix string `yaml:"gcs_prefix"`
}

type ChatConfig struct {
	// HistoryTurns is the number of messages kept, two per exchange.
	HistoryTurns int `yaml:"history_turns"`
	// SuggestWindow is how many stored posts feed suggest and search.
	SuggestWindow int `yaml:"suggest_window"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type SecretsConfig struct {
	// APIKey names a Secret Manager secret holding the API key.
	APIKey string `yaml:"api_key"`
}

// SecretFetcher resolves a secret name to its latest value.
type SecretFetcher func(ctx context.Context, project, name string) (string, error)

// Load reads .env, config.yaml and the environment. A missing API key is
// looked up in Secret Manager when a secret name is configured.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, defaultConfigPath, AccessSecret)
}

func load(ctx context.Context, path string, fetch SecretFetcher) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{}
	if err := loadYAMLConfig(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if cfg.APIKey == "" && cfg.Secrets.APIKey != "" && fetch != nil {
		key, err := fetch(ctx, cfg.Project, cfg.Secrets.APIKey)
		if err != nil {
			return nil, fmt.Errorf("load API key from secret %q: %w", cfg.Secrets.APIKey, err)
		}
		cfg.APIKey = strings.TrimSpace(key)
	}

	return cfg, nil
}

func loadYAMLConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("No config.yaml found, using defaults")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.APIKey = os.Getenv("API_KEY")
	cfg.Project = os.Getenv("PROJECT")
	cfg.Location = os.Getenv("LOCATION")
	cfg.GCSBucket = os.Getenv("GCS_BUCKET")

	setFromEnv(&cfg.LLM.Provider, "LLM_PROVIDER")
	setFromEnv(&cfg.LLM.Model, "TEXT_MODEL")
	setFromEnv(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setFromEnv(&cfg.Image.Model, "IMAGE_MODEL")
	setFromEnv(&cfg.Secrets.APIKey, "SECRET_API_KEY")
	setFromEnv(&cfg.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("IMAGE_BACKEND_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("IMAGE_BACKEND_ENABLED: %w", err)
		}
		cfg.Image.Enabled = enabled
	}
	return nil
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	applyLLMDefaults(cfg)
	applyImageDefaults(cfg)
	applyBackendDefaults(cfg)
	applyStorageDefaults(cfg)
	applyChatDefaults(cfg)
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
}

func applyLLMDefaults(cfg *Config) {
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = defaultProvider
	}
	if cfg.LLM.Model != "" {
		return
	}
	switch cfg.LLM.Provider {
	case ProviderGroq:
		cfg.LLM.Model = defaultGroqModel
	case ProviderOpenAI:
		cfg.LLM.Model = defaultOpenAIModel
	default:
		cfg.LLM.Model = defaultGeminiModel
	}
}

func applyImageDefaults(cfg *Config) {
	if cfg.Image.Model == "" {
		cfg.Image.Model = defaultImageModel
	}
	if cfg.Image.AspectRatio == "" {
		cfg.Image.AspectRatio = defaultAspectRatio
	}
}

func applyBackendDefaults(cfg *Config) {
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = defaultTimeout
	}
	// A negative value disables retries.
	switch {
	case cfg.Backend.MaxRetries == 0:
		cfg.Backend.MaxRetries = defaultMaxRetries
	case cfg.Backend.MaxRetries < 0:
		cfg.Backend.MaxRetries = 0
	}
}

func applyStorageDefaults(cfg *Config) {
	if cfg.Storage.PostsDir == "" {
		cfg.Storage.PostsDir = defaultPostsDir
	}
	if cfg.Storage.ImagesDir == "" {
		cfg.Storage.ImagesDir = defaultImagesDir
	}
	if cfg.Storage.GCSPrefix == "" {
		cfg.Storage.GCSPrefix = defaultGCSPrefix
	}
}

func applyChatDefaults(cfg *Config) {
	if cfg.Chat.HistoryTurns <= 0 {
		cfg.Chat.HistoryTurns = defaultHistoryTurns
	}
	if cfg.Chat.SuggestWindow <= 0 {
		cfg.Chat.SuggestWindow = defaultSuggestWindow
	}
}

// Validate reports every missing or invalid required setting.
func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required"))
	}
	switch c.LLM.Provider {
	case ProviderGemini, ProviderGroq, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider))
	}
	if c.Image.Enabled {
		if c.Project == "" {
			errs = append(errs, errors.New("PROJECT is required when the image backend is enabled"))
		}
		if c.Location == "" {
			errs = append(errs, errors.New("LOCATION is required when the image backend is enabled"))
		}
	}
	return errors.Join(errs...)
}

// LogLevel maps the configured level name to a slog level. Unknown names
// mean info.
func (c *Config) LogLevel() slog.Level {
	return ParseLevel(c.Log.Level)
}

func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
