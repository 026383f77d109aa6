package config

import (
	"os"
	"time"

	"github.com/meucofre/cofre/internal/ai"
	"github.com/spf13/viper"
)

// LoadAIConfig loads the AI provider configuration. An empty provider
// disables analysis and receipt extraction without failing startup.
func LoadAIConfig() ai.Config {
	cfg := ai.Config{
		Provider: viper.GetString("ai.provider"),
		Model:    viper.GetString("ai.model"),
		APIKey:   viper.GetString("ai.api_key"),
		Timeout:  viper.GetDuration("ai.timeout"),
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Provider == "" && cfg.APIKey != "" {
		cfg.Provider = "gemini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return cfg
}
