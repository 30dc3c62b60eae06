package repo

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/clipforge/clipforge/internal/modules/model"
)

const settingsKey = "clipforge:settings"

// SettingsRepo persists user settings in Redis as a single JSON blob.
type SettingsRepo interface {
	Get(ctx context.Context) (*model.Settings, error)
	Set(ctx context.Context, s *model.Settings) error
}

type settingsRepo struct{ rdb *redis.Client }

func NewSettingsRepo(rdb *redis.Client) SettingsRepo {
	return &settingsRepo{rdb: rdb}
}

// Get returns the stored settings, or defaults when nothing was saved yet.
func (r *settingsRepo) Get(ctx context.Context) (*model.Settings, error) {
	raw, err := r.rdb.Get(ctx, settingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		s := model.DefaultSettings()
		return &s, nil
	}
	if err != nil {
		return nil, err
	}

	var s model.Settings
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepo) Set(ctx context.Context, s *model.Settings) error {
	raw, err := sonic.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, settingsKey, raw, 0).Err()
}
