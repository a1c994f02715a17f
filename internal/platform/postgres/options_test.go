// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolOptions(t *testing.T) {
	tests := []struct {
		name    string
		options []PoolOption
		want    poolSettings
	}{
		{
			name: "defaults",
			want: defaultPoolSettings(),
		},
		{
			name:    "single connection clamps the warm minimum",
			options: []PoolOption{WithMaxConns(1)},
			want: func() poolSettings {
				settings := defaultPoolSettings()
				settings.maxConns, settings.minConns = 1, 1
				return settings
			}(),
		},
		{
			name:    "non-positive limit is ignored",
			options: []PoolOption{WithMaxConns(0)},
			want:    defaultPoolSettings(),
		},
		{
			name:    "statement timeout",
			options: []PoolOption{WithStatementTimeout(2 * time.Second)},
			want: func() poolSettings {
				settings := defaultPoolSettings()
				settings.statementTimeout = 2 * time.Second
				return settings
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := defaultPoolSettings()
			for _, option := range tt.options {
				option(&settings)
			}
			assert.Equal(t, tt.want, settings)
		})
	}
}

func TestNewPool_InvalidDSN(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewPool(context.Background(), "postgres://%zz", logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: invalid DSN")
}
