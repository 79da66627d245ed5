// Package config loads settings from a seoforge.yaml file and
// SEOFORGE_* environment variables, with flags layered on top by the
// commands that use them.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Server   ServerConfig   `mapstructure:"server"`
	History  HistoryConfig  `mapstructure:"history"`

	// CatalogFile optionally overrides the built-in content type catalog.
	CatalogFile string `mapstructure:"catalog_file"`
}

// ProviderConfig selects and configures the generation backend.
type ProviderConfig struct {
	// Name is one of "openai", "ollama", or "mock".
	Name    string `mapstructure:"name"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// HistoryConfig configures the generation archive.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from the given file, or from seoforge.yaml in
// the working directory and ~/.seoforge when cfgFile is empty. A missing
// file is not an error; environment variables still apply.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("seoforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.seoforge")
	}

	v.SetEnvPrefix("SEOFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("provider.name", "ollama")
	v.SetDefault("provider.model", "llama3.2")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("history.path", "seoforge_history.db")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
