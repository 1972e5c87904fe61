// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package domain holds the configuration shapes shared across the service.
package domain

import (
	"errors"
	"fmt"
)

// Config represents the application configuration
type Config struct {
	Version       string
	Host          string `toml:"host" mapstructure:"host"`
	Port          int    `toml:"port" mapstructure:"port"`
	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`

	MetricsEnabled bool `toml:"metricsEnabled" mapstructure:"metricsEnabled"`

	// Inverted index connection.
	RedisAddr     string `toml:"redisAddr" mapstructure:"redisAddr"`
	RedisPassword string `toml:"redisPassword" mapstructure:"redisPassword"`
	RedisDB       int    `toml:"redisDb" mapstructure:"redisDb"`
	RedisPoolSize int    `toml:"redisPoolSize" mapstructure:"redisPoolSize"`

	// Per-source deadlines in milliseconds. Zero selects the defaults
	// (250 autocomplete, 1500 search, 2500 brokered).
	AutocompleteTimeoutMS int `toml:"autocompleteTimeoutMs" mapstructure:"autocompleteTimeoutMs"`
	SearchTimeoutMS       int `toml:"searchTimeoutMs" mapstructure:"searchTimeoutMs"`
	BrokeredTimeoutMS     int `toml:"brokeredTimeoutMs" mapstructure:"brokeredTimeoutMs"`

	// Brokered provider credentials. A provider with no key is disabled;
	// its source stays an empty array.
	NewsAPIKey      string `toml:"newsApiKey" mapstructure:"newsApiKey"`
	YouTubeAPIKey   string `toml:"youtubeApiKey" mapstructure:"youtubeApiKey"`
	WatchmodeAPIKey string `toml:"watchmodeApiKey" mapstructure:"watchmodeApiKey"`
	LastFMAPIKey    string `toml:"lastfmApiKey" mapstructure:"lastfmApiKey"`
}

// Validate checks the parts of the configuration the service cannot start
// without.
func (c *Config) Validate() error {
	if c.RedisAddr == "" {
		return errors.New("redisAddr is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}
