package service

import (
	"context"

	"github.com/clipforge/clipforge/internal/modules/model"
	"github.com/clipforge/clipforge/internal/modules/repo"
)

// SettingsService reads and writes the user-preferences document.
type SettingsService interface {
	Get(ctx context.Context) (*model.Settings, error)
	Update(ctx context.Context, s *model.Settings) error
}

type settingsService struct {
	r repo.SettingsRepo
}

func NewSettingsService(r repo.SettingsRepo) SettingsService {
	return &settingsService{r: r}
}

func (s *settingsService) Get(ctx context.Context) (*model.Settings, error) {
	return s.r.Get(ctx)
}

func (s *settingsService) Update(ctx context.Context, in *model.Settings) error {
	return s.r.Set(ctx, in)
}
