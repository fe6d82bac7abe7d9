package config

import "time"

// DefaultModels is the model priority list used when the config file names
// none. Limits are the free-tier Gemini API limits.
var DefaultModels = []ModelConfig{
	{Name: "gemma-3-27b-it", RPM: 30, RPD: 14400},
	{Name: "gemini-2.0-flash", RPM: 15, RPD: 1500},
	{Name: "gemini-2.0-flash-lite", RPM: 30, RPD: 1500},
	{Name: "gemini-1.5-flash", RPM: 15, RPD: 1500},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	models := make([]ModelConfig, len(DefaultModels))
	copy(models, DefaultModels)

	return &Config{
		DataDir: ".akinator",
		Server: ServerConfig{
			Port:            8080,
			AllowAllOrigins: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Session: SessionConfig{
			Timeout: time.Hour,
		},
		Generator: GeneratorConfig{
			Provider:        ProviderGoogle,
			CallTimeout:     15 * time.Second,
			FailureCooldown: 30 * time.Second,
			QuotaCooldown:   time.Minute,
			Temperature:     0.7,
		},
		Models: models,
		Quota: QuotaConfig{
			SnapshotInterval: 10 * time.Minute,
		},
		Matcher: MatcherConfig{
			MaxCandidates:     10,
			PatternsPerEntity: 5,
		},
	}
}

// ProviderFor returns the provider serving m, falling back to the
// generator-wide default.
func (c *Config) ProviderFor(m ModelConfig) ProviderType {
	if m.Provider != "" {
		return m.Provider
	}
	return c.Generator.Provider
}
