package repo

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/clipforge/internal/modules/model"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestSettingsRepoDefaults(t *testing.T) {
	r := NewSettingsRepo(testRedis(t))

	s, err := r.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "system", s.Theme)
	assert.False(t, s.NotificationsEnabled)
}

func TestSettingsRepoRoundTrip(t *testing.T) {
	r := NewSettingsRepo(testRedis(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, &model.Settings{Theme: "dark", NotificationsEnabled: true}))

	s, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", s.Theme)
	assert.True(t, s.NotificationsEnabled)
}
