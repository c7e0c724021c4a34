// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Session    SessionConfig           `mapstructure:"session"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	APIs       APIsConfig              `mapstructure:"apis"`
	Assessment AssessmentConfig        `mapstructure:"assessment"`
	HTTP       HTTPConfig              `mapstructure:"http"`
	Logging    LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig selects the assessment session backend.
type SessionConfig struct {
	Store     string `mapstructure:"store"` // "memory" or "redis"
	TTL       int    `mapstructure:"ttl"`   // seconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

// TTLDuration returns the session TTL as a time.Duration.
func (s SessionConfig) TTLDuration() time.Duration {
	return time.Duration(s.TTL) * time.Second
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	LLM LLMConfig `mapstructure:"llm"`
}

// LLMConfig configures the text-generation backend.
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // "openai" or "gemini"
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

// AssessmentConfig tunes the response ingestion pipeline.
type AssessmentConfig struct {
	QuestionCount int             `mapstructure:"question_count"`
	MaxTokens     MaxTokensConfig `mapstructure:"max_tokens"`
	PromptCatalog string          `mapstructure:"prompt_catalog"`
}

// MaxTokensConfig is the output-length budget per pipeline operation.
type MaxTokensConfig struct {
	Questions       int `mapstructure:"questions"`
	Recommendations int `mapstructure:"recommendations"`
	ReadinessReport int `mapstructure:"readiness_report"`
}

// HTTPConfig configures the assessment API adapter.
type HTTPConfig struct {
	Port           string   `mapstructure:"port"`
	APIKey         string   `mapstructure:"api_key"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	RequestTimeout int      `mapstructure:"request_timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
