// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mediacircle/searchd/internal/api"
	"github.com/mediacircle/searchd/internal/brokered"
	"github.com/mediacircle/searchd/internal/buildinfo"
	"github.com/mediacircle/searchd/internal/config"
	"github.com/mediacircle/searchd/internal/domain"
	"github.com/mediacircle/searchd/internal/index"
	"github.com/mediacircle/searchd/internal/logger"
	"github.com/mediacircle/searchd/internal/metrics"
	"github.com/mediacircle/searchd/internal/models"
	"github.com/mediacircle/searchd/internal/search"
)

// RunServeCommand starts the API server.
func RunServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the search API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New(configPath)
			if err != nil {
				return err
			}
			cfg.Config.Version = buildinfo.Version

			logger.Setup(cfg.Config)
			cfg.OnLogLevelChange(logger.SetLogLevel)

			log.Info().Str("version", buildinfo.Version).Msg("Starting searchd")

			client := index.NewClient(index.Options{
				Addr:     cfg.Config.RedisAddr,
				Password: cfg.Config.RedisPassword,
				DB:       cfg.Config.RedisDB,
				PoolSize: cfg.Config.RedisPoolSize,
			})
			defer client.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := client.Ping(pingCtx); err != nil {
				log.Warn().Err(err).Str("addr", cfg.Config.RedisAddr).
					Msg("Index not reachable at startup; serving degraded until it recovers")
			} else {
				log.Info().Str("addr", cfg.Config.RedisAddr).
					Int("cacheVersion", client.CacheVersion(pingCtx, "media")).
					Msg("Connected to search index")
			}
			cancel()

			m := metrics.New()
			orchestrator := search.NewFromIndex(
				timeoutsFromConfig(cfg.Config),
				index.NewExecutor(client),
				providersFromConfig(cfg.Config),
			).WithMetrics(m)

			server := api.NewServer(&api.Dependencies{
				Config:       cfg.Config,
				IndexClient:  client,
				Orchestrator: orchestrator,
				Metrics:      m,
			})

			return server.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config.toml")
	return cmd
}

func timeoutsFromConfig(cfg *domain.Config) search.Timeouts {
	timeouts := search.DefaultTimeouts()
	if cfg.AutocompleteTimeoutMS > 0 {
		timeouts.AutocompleteIndex = time.Duration(cfg.AutocompleteTimeoutMS) * time.Millisecond
	}
	if cfg.SearchTimeoutMS > 0 {
		timeouts.SearchIndex = time.Duration(cfg.SearchTimeoutMS) * time.Millisecond
	}
	if cfg.BrokeredTimeoutMS > 0 {
		timeouts.Brokered = time.Duration(cfg.BrokeredTimeoutMS) * time.Millisecond
	}
	return timeouts
}

// providersFromConfig builds the adapter set for every provider with a
// configured key. Providers without credentials stay disabled.
func providersFromConfig(cfg *domain.Config) search.Providers {
	timeouts := timeoutsFromConfig(cfg)
	var providers search.Providers

	if cfg.NewsAPIKey != "" {
		client := brokered.NewNewsClient(cfg.NewsAPIKey, "", timeouts.Brokered)
		providers.News = brokered.NewAdapter(models.SourceNews, timeouts.Brokered, client.Search)
		log.Debug().Str("apiKey", domain.RedactString(cfg.NewsAPIKey)).Msg("News provider enabled")
	}
	if cfg.YouTubeAPIKey != "" {
		client := brokered.NewVideoClient(cfg.YouTubeAPIKey, "", timeouts.Brokered)
		providers.Video = brokered.NewAdapter(models.SourceVideo, timeouts.Brokered, client.Search)
		log.Debug().Str("apiKey", domain.RedactString(cfg.YouTubeAPIKey)).Msg("Video provider enabled")
	}
	if cfg.WatchmodeAPIKey != "" {
		client := brokered.NewRatingsClient(cfg.WatchmodeAPIKey, "", timeouts.Brokered)
		providers.Ratings = brokered.NewAdapter(models.SourceRatings, timeouts.Brokered, client.Search)
		log.Debug().Str("apiKey", domain.RedactString(cfg.WatchmodeAPIKey)).Msg("Ratings provider enabled")
	}
	if cfg.LastFMAPIKey != "" {
		client := brokered.NewMusicClient(cfg.LastFMAPIKey, "", timeouts.Brokered)
		providers.Artist = brokered.NewAdapter(models.SourceArtist, timeouts.Brokered, client.SearchArtists)
		providers.Album = brokered.NewAdapter(models.SourceAlbum, timeouts.Brokered, client.SearchAlbums)
		log.Debug().Str("apiKey", domain.RedactString(cfg.LastFMAPIKey)).Msg("Music provider enabled")
	}

	return providers
}
