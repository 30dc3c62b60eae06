package bootstrap

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/modules/model"
)

// EnsureStarterProject creates an empty first project when the store has
// none, so a fresh install opens into a usable workspace.
func EnsureStarterProject(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&model.Project{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	p := model.Project{
		Title: "My first project",
		State: datatypes.NewJSONType(model.ProjectState{
			Files:   []model.MediaFile{},
			History: []model.Message{},
		}),
	}
	if err := db.WithContext(ctx).Create(&p).Error; err != nil {
		return err
	}
	log.Sugar().Infow("starter project created", "project", p.ID)
	return nil
}
