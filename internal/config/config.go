// Package config loads application settings from defaults, an optional
// config file, a .env file and UPLEARN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/AlexMoto69/uplearn/internal/lessons"
	"github.com/AlexMoto69/uplearn/internal/llm"
	"github.com/AlexMoto69/uplearn/internal/prompt"
	"github.com/AlexMoto69/uplearn/internal/retrieval"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "UPLEARN"

// Config is the full application configuration.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Lessons    LessonsConfig    `mapstructure:"lessons"`
	Index      IndexConfig      `mapstructure:"index"`
	Embeddings EmbeddingsConfig `mapstructure:"embeddings"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Quiz       QuizConfig       `mapstructure:"quiz"`
	Chat       ChatConfig       `mapstructure:"chat"`
	Prompt     PromptConfig     `mapstructure:"prompt"`
	Redis      RedisConfig      `mapstructure:"redis"`
}

type DatabaseConfig struct {
	// DSN is a SQLite path or a postgres:// URL. Empty selects the
	// default data directory.
	DSN string `mapstructure:"dsn"`
}

type LessonsConfig struct {
	Dir     string `mapstructure:"dir" validate:"required"`
	Pattern string `mapstructure:"pattern" validate:"required,contains=%d"`
}

type IndexConfig struct {
	// Path of the precomputed vector index. Empty disables retrieval.
	Path string `mapstructure:"path"`
	TopK int    `mapstructure:"top_k" validate:"gte=1"`
}

type EmbeddingsConfig struct {
	Provider string `mapstructure:"provider" validate:"omitempty,oneof=none openai ollama gemini"`
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey   string `mapstructure:"api_key"`
}

type LLMConfig struct {
	// Provider may be empty; a standard API key in the environment then
	// picks one, falling back to ollama.
	Provider string `mapstructure:"provider" validate:"omitempty,oneof=ollama anthropic openai gemini openrouter mock"`

	Timeout    time.Duration  `mapstructure:"timeout" validate:"gt=0"`
	Ollama     ProviderConfig `mapstructure:"ollama"`
	Anthropic  ProviderConfig `mapstructure:"anthropic"`
	OpenAI     ProviderConfig `mapstructure:"openai"`
	Gemini     ProviderConfig `mapstructure:"gemini"`
	OpenRouter ProviderConfig `mapstructure:"openrouter"`
	Retry      RetryConfig    `mapstructure:"retry"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"gte=1,lte=10"`
	InitialWait time.Duration `mapstructure:"initial_wait" validate:"gte=0"`
	MaxWait     time.Duration `mapstructure:"max_wait" validate:"gte=0"`
	Multiplier  float64       `mapstructure:"multiplier" validate:"gte=1"`
}

type QuizConfig struct {
	Count                  int  `mapstructure:"count" validate:"gte=1,lte=20"`
	MaxTokens              int  `mapstructure:"max_tokens" validate:"gte=256"`
	RegenerateExplanations bool `mapstructure:"regenerate_explanations"`
	Workers                int  `mapstructure:"workers" validate:"gte=1,lte=32"`
}

type ChatConfig struct {
	MaxContextChars int `mapstructure:"max_context_chars" validate:"gte=500"`
	HistoryTurns    int `mapstructure:"history_turns" validate:"gte=1,lte=50"`
	MaxTokens       int `mapstructure:"max_tokens" validate:"gte=64"`
}

type PromptConfig struct {
	Language string `mapstructure:"language" validate:"oneof=ro en"`
	Subject  string `mapstructure:"subject"`
}

type RedisConfig struct {
	// Addr enables cross-process locking when set.
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	LockTTL  time.Duration `mapstructure:"lock_ttl" validate:"gte=0"`
}

func setDefaults(v *viper.Viper) {
	llmDefaults := llm.DefaultConfig()
	lessonDefaults := lessons.DefaultConfig()

	v.SetDefault("database.dsn", "")

	v.SetDefault("lessons.dir", lessonDefaults.Dir)
	v.SetDefault("lessons.pattern", lessonDefaults.Pattern)

	v.SetDefault("index.path", "storage/index.json")
	v.SetDefault("index.top_k", retrieval.DefaultTopK)

	v.SetDefault("embeddings.provider", "")
	v.SetDefault("embeddings.model", "")
	v.SetDefault("embeddings.base_url", "")
	v.SetDefault("embeddings.api_key", "")

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.timeout", llmDefaults.Timeout)
	v.SetDefault("llm.ollama.api_key", "")
	v.SetDefault("llm.ollama.model", llmDefaults.Ollama.Model)
	v.SetDefault("llm.ollama.base_url", llmDefaults.Ollama.BaseURL)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", llmDefaults.Anthropic.Model)
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", llmDefaults.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", llmDefaults.Gemini.Model)
	v.SetDefault("llm.gemini.base_url", "")
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", llmDefaults.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", llmDefaults.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", llmDefaults.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", llmDefaults.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", llmDefaults.Retry.Multiplier)

	v.SetDefault("quiz.count", 5)
	v.SetDefault("quiz.max_tokens", 2048)
	v.SetDefault("quiz.regenerate_explanations", false)
	v.SetDefault("quiz.workers", 4)

	v.SetDefault("chat.max_context_chars", 12000)
	v.SetDefault("chat.history_turns", 6)
	v.SetDefault("chat.max_tokens", 512)

	v.SetDefault("prompt.language", "ro")
	v.SetDefault("prompt.subject", "biologie")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", 30*time.Second)
}

// Load reads configuration. path names an optional config file whose
// format follows its extension; a .env file in the working directory is
// loaded first when present. Environment variables override the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional names honoured alongside the prefixed ones.
	_ = v.BindEnv("database.dsn", "UPLEARN_DATABASE_DSN", "UPLEARN_DB", "DATABASE_URL")
	_ = v.BindEnv("llm.anthropic.api_key", "UPLEARN_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("llm.openai.api_key", "UPLEARN_LLM_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.gemini.api_key", "UPLEARN_LLM_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("llm.openrouter.api_key", "UPLEARN_LLM_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Namespace()), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LLMProviderConfig converts the settings into the provider factory's
// configuration. With no provider chosen, the first standard API key
// found in the environment selects one; otherwise ollama is used.
func (c *Config) LLMProviderConfig() llm.Config {
	out := llm.DefaultConfig()
	out.Provider = c.LLM.Provider
	out.Timeout = c.LLM.Timeout

	out.Ollama.Model = c.LLM.Ollama.Model
	if c.LLM.Ollama.BaseURL != "" {
		out.Ollama.BaseURL = c.LLM.Ollama.BaseURL
	}
	out.Anthropic.APIKey = c.LLM.Anthropic.APIKey
	out.Anthropic.Model = c.LLM.Anthropic.Model
	out.OpenAI.APIKey = c.LLM.OpenAI.APIKey
	out.OpenAI.Model = c.LLM.OpenAI.Model
	out.OpenAI.BaseURL = c.LLM.OpenAI.BaseURL
	out.Gemini.APIKey = c.LLM.Gemini.APIKey
	out.Gemini.Model = c.LLM.Gemini.Model
	out.OpenRouter.APIKey = c.LLM.OpenRouter.APIKey
	out.OpenRouter.Model = c.LLM.OpenRouter.Model
	out.OpenRouter.BaseURL = c.LLM.OpenRouter.BaseURL

	out.Retry = llm.RetryConfig{
		MaxAttempts: c.LLM.Retry.MaxAttempts,
		InitialWait: c.LLM.Retry.InitialWait,
		MaxWait:     c.LLM.Retry.MaxWait,
		Multiplier:  c.LLM.Retry.Multiplier,
	}

	if out.Provider == "" {
		discovered, ok := llm.DiscoverConfig(out)
		if ok {
			return discovered
		}
		out.Provider = "ollama"
	}
	return out
}

// PromptConfig returns the prompt builder configuration.
func (c *Config) PromptConfig() prompt.Config {
	return prompt.Config{
		Language:     c.Prompt.Language,
		Subject:      c.Prompt.Subject,
		HistoryTurns: c.Chat.HistoryTurns,
		DefaultCount: c.Quiz.Count,
	}
}

// LessonsConfig returns the lesson store configuration.
func (c *Config) LessonsConfig() lessons.Config {
	return lessons.Config{Dir: c.Lessons.Dir, Pattern: c.Lessons.Pattern}
}

// EmbedderConfig returns the query embedder configuration. A missing API
// key is borrowed from the matching model provider.
func (c *Config) EmbedderConfig() retrieval.EmbedderConfig {
	out := retrieval.EmbedderConfig{
		Provider: c.Embeddings.Provider,
		Model:    c.Embeddings.Model,
		BaseURL:  c.Embeddings.BaseURL,
		APIKey:   c.Embeddings.APIKey,
	}
	if out.APIKey == "" {
		switch out.Provider {
		case "openai":
			out.APIKey = c.LLM.OpenAI.APIKey
		case "gemini":
			out.APIKey = c.LLM.Gemini.APIKey
		}
	}
	if out.BaseURL == "" && out.Provider == "ollama" {
		out.BaseURL = c.LLM.Ollama.BaseURL
	}
	return out
}
