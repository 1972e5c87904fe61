// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads the TOML configuration file, applies SEARCHD__ env
// overrides, and watches the file for live log-level changes.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/mediacircle/searchd/internal/domain"
	"github.com/mediacircle/searchd/pkg/debounce"
)

const envPrefix = "SEARCHD"

// Editors tend to fire several write events per save; collapse them into
// one reload.
const reloadDebounce = 500 * time.Millisecond

// AppConfig wraps the parsed configuration and its viper instance.
type AppConfig struct {
	Config *domain.Config

	viper  *viper.Viper
	reload *debounce.Debouncer

	mu               sync.Mutex
	onLogLevelChange func(level string)
}

// New loads configuration from the given path. An empty path selects
// ./config.toml; a missing file is created with the defaults.
func New(configPath string) (*AppConfig, error) {
	c := &AppConfig{
		Config: &domain.Config{},
		viper:  viper.New(),
	}

	c.defaults()

	if configPath == "" {
		configPath = "config.toml"
	}
	if err := c.load(configPath); err != nil {
		return nil, err
	}

	if err := c.viper.Unmarshal(c.Config); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := c.Config.Validate(); err != nil {
		return nil, err
	}

	c.watch()
	return c, nil
}

// OnLogLevelChange registers the callback invoked when the configured log
// level changes on disk.
func (c *AppConfig) OnLogLevelChange(fn func(level string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLogLevelChange = fn
}

func (c *AppConfig) defaults() {
	c.viper.SetDefault("host", "0.0.0.0")
	c.viper.SetDefault("port", 8080)
	c.viper.SetDefault("logLevel", "INFO")
	c.viper.SetDefault("logPath", "")
	c.viper.SetDefault("logMaxSize", 50)
	c.viper.SetDefault("logMaxBackups", 3)
	c.viper.SetDefault("metricsEnabled", false)
	c.viper.SetDefault("redisAddr", "localhost:6379")
	c.viper.SetDefault("redisPassword", "")
	c.viper.SetDefault("redisDb", 0)
	c.viper.SetDefault("redisPoolSize", 10)
	c.viper.SetDefault("autocompleteTimeoutMs", 250)
	c.viper.SetDefault("searchTimeoutMs", 1500)
	c.viper.SetDefault("brokeredTimeoutMs", 2500)
}

func (c *AppConfig) load(configPath string) error {
	c.viper.SetConfigType("toml")
	c.viper.SetConfigFile(configPath)

	c.viper.SetEnvPrefix(envPrefix)
	c.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	c.viper.AutomaticEnv()

	if err := c.viper.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return errors.Wrap(err, "read config file")
			}
		}
		if err := c.writeDefault(configPath); err != nil {
			return err
		}
		if err := c.viper.ReadInConfig(); err != nil {
			return errors.Wrap(err, "read generated config file")
		}
	}
	return nil
}

func (c *AppConfig) writeDefault(configPath string) error {
	if dir := filepath.Dir(configPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create config directory")
		}
	}
	if err := c.viper.WriteConfigAs(configPath); err != nil {
		return errors.Wrap(err, "write default config file")
	}
	log.Info().Str("path", configPath).Msg("Created default config file")
	return nil
}

// watch reloads the config file on change and applies the log level live.
// Other settings require a restart.
func (c *AppConfig) watch() {
	c.reload = debounce.New(reloadDebounce)
	c.viper.OnConfigChange(func(e fsnotify.Event) {
		c.reload.Do(c.applyChanges)
	})
	c.viper.WatchConfig()
}

func (c *AppConfig) applyChanges() {
	fresh := &domain.Config{}
	if err := c.viper.Unmarshal(fresh); err != nil {
		log.Error().Err(err).Msg("Failed to reload config file; keeping previous settings")
		return
	}

	if fresh.LogLevel != c.Config.LogLevel {
		log.Info().Str("level", fresh.LogLevel).Msg("Log level changed")
		c.Config.LogLevel = fresh.LogLevel

		c.mu.Lock()
		fn := c.onLogLevelChange
		c.mu.Unlock()
		if fn != nil {
			fn(fresh.LogLevel)
		}
	}
}
