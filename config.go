package questscale

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// GatewayConfig selects and parameterizes the reasoning backend.
type GatewayConfig struct {
	// Provider is the backend kind: "openai" (any chat-completions
	// compatible endpoint) or "gemini".
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	// APIKey is normally supplied via environment, not the config file.
	APIKey string `yaml:"-"`
}

// Config holds the configuration options for the agent runtime.
type Config struct {
	// MaxSteps bounds total task executions per run, as a circuit breaker
	// independent of the per-task ceiling. Zero means no global ceiling.
	MaxSteps int `yaml:"max_steps"`

	// MaxStepsPerTask bounds tool calls inside one task's sub-loop.
	MaxStepsPerTask int `yaml:"max_steps_per_task"`

	// SearchQuota caps successful web searches per process. Zero means
	// unlimited.
	SearchQuota int `yaml:"search_quota"`

	// QuoteCacheTTL controls how long market-data snapshots are reused
	// before hitting the provider again.
	QuoteCacheTTL time.Duration `yaml:"quote_cache_ttl"`

	Gateway GatewayConfig `yaml:"gateway"`

	// Event bus configuration
	EnableEventBus      bool `yaml:"enable_event_bus"`
	EventBusBufferSize  int  `yaml:"event_bus_buffer_size"`
	EventBusWorkerCount int  `yaml:"event_bus_worker_count"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxSteps:            20,
		MaxStepsPerTask:     3,
		SearchQuota:         0,
		QuoteCacheTTL:       30 * time.Second,
		Gateway:             GatewayConfig{Provider: "openai", Model: "gpt-4o-mini"},
		EnableEventBus:      true,
		EventBusBufferSize:  100,
		EventBusWorkerCount: 5,
	}
}

// LoadConfig reads a YAML config file and overlays it on the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxSteps < 0 {
		return NewConfigurationError("max_steps cannot be negative", nil)
	}
	if c.MaxStepsPerTask < 1 {
		return NewConfigurationError("max_steps_per_task must be at least 1", nil)
	}
	if c.SearchQuota < 0 {
		return NewConfigurationError("search_quota cannot be negative", nil)
	}
	return nil
}
