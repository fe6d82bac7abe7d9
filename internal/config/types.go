package config

import "time"

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderGoogle     ProviderType = "google"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOllama     ProviderType = "ollama"
	ProviderOpenRouter ProviderType = "openrouter"
)

// Config is the top-level akinator configuration, corresponding to .akinator.yml.
type Config struct {
	DataDir   string          `yaml:"data_dir" koanf:"data_dir"`
	Server    ServerConfig    `yaml:"server" koanf:"server"`
	Log       LogConfig       `yaml:"log" koanf:"log"`
	Session   SessionConfig   `yaml:"session" koanf:"session"`
	Generator GeneratorConfig `yaml:"generator" koanf:"generator"`
	Models    []ModelConfig   `yaml:"models" koanf:"models"`
	Quota     QuotaConfig     `yaml:"quota" koanf:"quota"`
	Matcher   MatcherConfig   `yaml:"matcher" koanf:"matcher"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Pretty bool   `yaml:"pretty" koanf:"pretty"`
	File   string `yaml:"file" koanf:"file"`
}

// SessionConfig controls how long an idle game is kept.
type SessionConfig struct {
	Timeout time.Duration `yaml:"timeout" koanf:"timeout"`
}

// GeneratorConfig controls calls to the external question/guess generator.
type GeneratorConfig struct {
	// Provider is used for models that don't name their own.
	Provider        ProviderType  `yaml:"provider" koanf:"provider"`
	CallTimeout     time.Duration `yaml:"call_timeout" koanf:"call_timeout"`
	FailureCooldown time.Duration `yaml:"failure_cooldown" koanf:"failure_cooldown"`
	QuotaCooldown   time.Duration `yaml:"quota_cooldown" koanf:"quota_cooldown"`
	Temperature     float64       `yaml:"temperature" koanf:"temperature"`
}

// ModelConfig is one entry in the model priority list.
type ModelConfig struct {
	Name     string       `yaml:"name" koanf:"name"`
	Provider ProviderType `yaml:"provider,omitempty" koanf:"provider"`
	RPM      int          `yaml:"rpm" koanf:"rpm"`
	RPD      int          `yaml:"rpd" koanf:"rpd"`
}

// QuotaConfig controls quota snapshot persistence.
type QuotaConfig struct {
	SnapshotInterval time.Duration `yaml:"snapshot_interval" koanf:"snapshot_interval"`
}

// MatcherConfig bounds the pattern matcher's history scan.
type MatcherConfig struct {
	MaxCandidates     int `yaml:"max_candidates" koanf:"max_candidates"`
	PatternsPerEntity int `yaml:"patterns_per_entity" koanf:"patterns_per_entity"`
}
