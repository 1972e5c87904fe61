// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  Config{RedisAddr: "localhost:6379", Port: 8080},
		},
		{
			name:    "missing redis addr",
			cfg:     Config{Port: 8080},
			wantErr: true,
		},
		{
			name:    "zero port",
			cfg:     Config{RedisAddr: "localhost:6379"},
			wantErr: true,
		},
		{
			name:    "port out of range",
			cfg:     Config{RedisAddr: "localhost:6379", Port: 99999},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
