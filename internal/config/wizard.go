package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// providerModels are the model priority lists offered by the wizard.
var providerModels = map[ProviderType][]ModelConfig{
	ProviderGoogle: DefaultModels,
	ProviderOpenAI: {
		{Name: "gpt-4o-mini", RPM: 500, RPD: 10000},
		{Name: "gpt-4o", RPM: 500, RPD: 10000},
	},
	ProviderOllama: {
		{Name: "llama3", RPM: 600, RPD: 100000},
	},
	ProviderOpenRouter: {
		{Name: "google/gemma-3-27b-it:free", RPM: 20, RPD: 50},
		{Name: "meta-llama/llama-3.3-70b-instruct:free", RPM: 20, RPD: 50},
	},
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to akinator! Let's configure the game server.")
	fmt.Println()

	providerPrompt := promptui.Select{
		Label: "Select question generator provider",
		Items: []string{"google", "openai", "ollama", "openrouter"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: ".akinator",
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	portPrompt := promptui.Prompt{
		Label:    "HTTP port",
		Default:  "8080",
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(strings.TrimSpace(portStr))

	cfg := DefaultConfig()
	cfg.DataDir = strings.TrimSpace(dataDir)
	cfg.Server.Port = port
	cfg.Generator.Provider = provider
	cfg.Models = append([]ModelConfig(nil), providerModels[provider]...)

	if envVar := APIKeyEnvVar(provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running akinator serve.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535")
	}
	return nil
}
