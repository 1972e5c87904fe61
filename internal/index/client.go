// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package index executes built queries against the RediSearch inverted
// index and maps raw documents to the public item shapes.
package index

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Options configures the index connection pool.
type Options struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// Client owns the pooled connection to the inverted index.
type Client struct {
	rdb *redis.Client
}

// NewClient builds the index connection pool. PoolSize defaults to 10.
func NewClient(opts Options) *Client {
	poolSize := opts.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: poolSize,
		// RESP2 keeps FT.SEARCH replies array-shaped for the executor's
		// reply parser.
		Protocol: 2,
	})

	return &Client{rdb: rdb}
}

// Ping checks connectivity to the index. Used by readiness.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CacheVersion reads the coordinated cache-invalidation registry for the
// given key prefix. A missing entry means version 1.
func (c *Client) CacheVersion(ctx context.Context, prefix string) int {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	raw, err := c.rdb.Get(ctx, "cache_version:"+prefix).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("prefix", prefix).Msg("Failed to read cache version; assuming 1")
		}
		return 1
	}

	version, err := strconv.Atoi(raw)
	if err != nil || version < 1 {
		log.Warn().Str("prefix", prefix).Str("value", raw).Msg("Malformed cache version; assuming 1")
		return 1
	}
	return version
}
