package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/modules/model"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, p *model.Project) error
	Update(ctx context.Context, p *model.Project) error
	Get(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListWithCursor(ctx context.Context, afterUpdatedAt time.Time, afterID uuid.UUID, limit int) ([]model.Project, error)
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepo) Delete(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Delete(p).Error
}

func (r *projectRepo) Update(ctx context.Context, p *model.Project) error {
	// Save rather than Updates: the state blob must be written even when
	// it only lost fields.
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *projectRepo) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var p model.Project
	if err := r.db.WithContext(ctx).Where(&model.Project{ID: id}).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) ListWithCursor(ctx context.Context, afterUpdatedAt time.Time, afterID uuid.UUID, limit int) ([]model.Project, error) {
	q := r.db.WithContext(ctx)

	if !afterUpdatedAt.IsZero() && afterID != uuid.Nil {
		q = q.Where(
			"(updated_at < ?) OR (updated_at = ? AND id < ?)",
			afterUpdatedAt, afterUpdatedAt, afterID,
		)
	}

	var projects []model.Project
	return projects, q.Order("updated_at DESC, id DESC").Limit(limit).Find(&projects).Error
}
