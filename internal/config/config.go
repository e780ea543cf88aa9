package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultModel             = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens         = 8192
	DefaultTemperature       = 0.7
	DefaultMaxToolIterations = 20
	DefaultBufSize           = 100
)

// Provider types. "offline" forces the rule-based fallback even when an API
// key is present.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOffline   = "offline"
)

type Config struct {
	Agent    AgentConfig    `json:"agent"`
	Provider ProviderConfig `json:"provider"`
	Tools    ToolsConfig    `json:"tools"`
	Memory   MemoryConfig   `json:"memory"`
	Reminder ReminderConfig `json:"reminder"`
}

type AgentConfig struct {
	Workspace         string  `json:"workspace"`
	Model             string  `json:"model"`
	MaxTokens         int     `json:"maxTokens"`
	Temperature       float64 `json:"temperature"`
	MaxToolIterations int     `json:"maxToolIterations"`
}

type ProviderConfig struct {
	Type    string `json:"type,omitempty"` // "anthropic" (default), "openai" or "offline"
	APIKey  string `json:"apiKey"`
	BaseURL string `json:"baseUrl,omitempty"`
}

type ToolsConfig struct {
	OpenWeatherAPIKey string `json:"openWeatherApiKey,omitempty"`
	SearchTimeoutSec  int    `json:"searchTimeoutSec,omitempty"`
}

type MemoryConfig struct {
	Path string `json:"path,omitempty"`
}

type ReminderConfig struct {
	Path string `json:"path,omitempty"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Agent: AgentConfig{
			Workspace:         filepath.Join(home, ".devin", "workspace"),
			Model:             DefaultModel,
			MaxTokens:         DefaultMaxTokens,
			Temperature:       DefaultTemperature,
			MaxToolIterations: DefaultMaxToolIterations,
		},
		Provider: ProviderConfig{},
		Tools: ToolsConfig{
			SearchTimeoutSec: 10,
		},
		Memory: MemoryConfig{
			Path: filepath.Join(ConfigDir(), "memory", "memories.json"),
		},
		Reminder: ReminderConfig{
			Path: filepath.Join(ConfigDir(), "data", "reminders.json"),
		},
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".devin")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if key := os.Getenv("DEVIN_API_KEY"); key != "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = key
		if cfg.Provider.Type == "" {
			cfg.Provider.Type = ProviderOpenAI
		}
	}
	if url := os.Getenv("DEVIN_BASE_URL"); url != "" {
		cfg.Provider.BaseURL = url
	}
	if key := os.Getenv("OPENWEATHER_API_KEY"); key != "" {
		cfg.Tools.OpenWeatherAPIKey = key
	}
	if path := os.Getenv("DEVIN_MEMORY_PATH"); path != "" {
		cfg.Memory.Path = path
	}
	if path := os.Getenv("DEVIN_REMINDER_PATH"); path != "" {
		cfg.Reminder.Path = path
	}

	if cfg.Agent.Workspace == "" {
		cfg.Agent.Workspace = DefaultConfig().Agent.Workspace
	}
	if cfg.Memory.Path == "" {
		cfg.Memory.Path = DefaultConfig().Memory.Path
	}
	if cfg.Reminder.Path == "" {
		cfg.Reminder.Path = DefaultConfig().Reminder.Path
	}
	if cfg.Tools.SearchTimeoutSec <= 0 {
		cfg.Tools.SearchTimeoutSec = 10
	}

	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}

// Offline reports whether the assistant should run the rule-based fallback
// instead of an LLM runtime.
func (c *Config) Offline() bool {
	return c.Provider.Type == ProviderOffline || c.Provider.APIKey == ""
}
