//go:build integration

package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/guttosm/casebreak-service/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisIdempotencyStore_Integration(t *testing.T) {
	ctx := context.Background()
	container, err := testutil.SetupRedis(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Cleanup(context.Background()) })

	client := redis.NewClient(&redis.Options{Addr: container.Addr})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisIdempotencyStore(client)
	require.NoError(t, store.Ping(ctx))

	t.Run("reserve, complete, replay", func(t *testing.T) {
		existing, reserved, err := store.Reserve(ctx, "k1", "fp", time.Minute)
		require.NoError(t, err)
		assert.True(t, reserved)
		assert.Nil(t, existing)

		existing, reserved, err = store.Reserve(ctx, "k1", "fp", time.Minute)
		require.NoError(t, err)
		assert.False(t, reserved)
		require.NotNil(t, existing)
		assert.False(t, existing.Completed)

		require.NoError(t, store.Complete(ctx, "k1", IdempotencyRecord{
			Fingerprint: "fp",
			Completed:   true,
			StatusCode:  http.StatusCreated,
			ContentType: "application/json",
			Body:        []byte(`{"id":"p-1"}`),
		}, time.Hour))

		existing, _, err = store.Reserve(ctx, "k1", "fp", time.Minute)
		require.NoError(t, err)
		assert.True(t, existing.Completed)
		assert.Equal(t, `{"id":"p-1"}`, string(existing.Body))
	})

	t.Run("release", func(t *testing.T) {
		_, _, err := store.Reserve(ctx, "k2", "fp", time.Minute)
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, "k2"))

		_, reserved, err := store.Reserve(ctx, "k2", "fp", time.Minute)
		require.NoError(t, err)
		assert.True(t, reserved)
	})

	t.Run("middleware replays across store instances", func(t *testing.T) {
		first := newIdempotencyHarness(t, NewRedisIdempotencyStore(client))
		second := newIdempotencyHarness(t, NewRedisIdempotencyStore(client))

		a := first.do(http.MethodPost, "shared", "u1", `{}`)
		b := second.do(http.MethodPost, "shared", "u1", `{}`)

		assert.Equal(t, http.StatusCreated, b.Code)
		assert.Equal(t, "true", b.Header().Get(IdempotencyReplayedHeader))
		assert.JSONEq(t, a.Body.String(), b.Body.String())
		assert.Equal(t, int32(0), second.calls.Load())
	})
}
