package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/providers"
)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("server", defaults.Server)
	viper.SetDefault("log", defaults.Log)
	viper.SetDefault("providers", defaults.Providers)
	viper.SetDefault("tts", defaults.TTS)
	viper.SetDefault("performance", defaults.Performance)
	viper.SetDefault("agents", defaults.Agents)
	viper.SetDefault("constraints", defaults.Constraints)
	viper.SetDefault("allowedMoods", defaults.AllowedMoods)
	viper.SetDefault("allowedStyles", defaults.AllowedStyles)
	viper.SetDefault("allowedTones", defaults.AllowedTones)

	// Environment variables with PODFORGE_ prefix; dots become underscores
	// (PODFORGE_TTS_MODEL overrides tts.model).
	viper.SetEnvPrefix("PODFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.podforge")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ToRegistryConfig converts the config to a format suitable for providers.Registry.
// It resolves all ${ENV_VAR} references in API keys.
func (c *Config) ToRegistryConfig() providers.RegistryConfig {
	timeout := time.Duration(c.Providers.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return providers.RegistryConfig{
		Chat: providers.ChatConfig{
			APIKey:  ResolveEnvVars(c.Providers.Chat.APIKey),
			Model:   c.Providers.Chat.Model,
			BaseURL: c.Providers.Chat.BaseURL,
			Timeout: timeout,
		},
		Assistant: providers.AssistantConfig{
			BaseURL: c.Providers.Assistant.BaseURL,
			APIKey:  ResolveEnvVars(c.Providers.Assistant.APIKey),
			Timeout: timeout,
		},
		TTS: providers.TTSConfig{
			Model:  c.TTS.Model,
			Speed:  c.TTS.Speed,
			Format: c.TTS.Format,
		},
	}
}

// ToConstraints converts the config to the brief validation constraints.
func (c *Config) ToConstraints() podcast.Constraints {
	return podcast.Constraints{
		MinChapters:    c.Constraints.MinChapters,
		MaxChapters:    c.Constraints.MaxChapters,
		MinDurationMin: c.Constraints.MinDurationMin,
		MaxDurationMin: c.Constraints.MaxDurationMin,
		MaxTopicLength: c.Constraints.MaxTopicLength,
		MaxFocusLength: c.Constraints.MaxFocusLength,
		AllowedMoods:   c.AllowedMoods,
		AllowedStyles:  c.AllowedStyles,
	}
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Podforge configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export OPENAI_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
