//go:build !integration

package app

import (
	"context"
	"testing"
	"time"

	"github.com/guttosm/casebreak-service/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeIdempotency(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.IdempotencyConfig
		wantTTL time.Duration
	}{
		{"memory when no address", config.IdempotencyConfig{TTL: 2 * time.Hour}, 2 * time.Hour},
		{"default TTL", config.IdempotencyConfig{}, 24 * time.Hour},
		{"falls back when redis is unreachable", config.IdempotencyConfig{RedisAddr: "127.0.0.1:1", TTL: time.Hour}, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idem := InitializeIdempotency(tt.cfg)
			t.Cleanup(func() { _ = idem.Close(context.Background()) })

			require.NotNil(t, idem.Config.Store)
			assert.Nil(t, idem.Redis)
			assert.NotNil(t, idem.memory)
			assert.Equal(t, tt.wantTTL, idem.Config.TTL)
			assert.Equal(t, time.Minute, idem.Config.LockTTL)
			assert.Nil(t, idem.RedisClient(), "rate limiters stay in memory too")
		})
	}
}

func TestIdempotencyComponents_RedisClientOnNil(t *testing.T) {
	var idem *IdempotencyComponents
	assert.Nil(t, idem.RedisClient())
}
