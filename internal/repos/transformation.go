package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/visionforge/visionforge-backend/internal/platform/logger"
	"github.com/visionforge/visionforge-backend/internal/types"
)

type TransformationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, transformations []*types.Transformation) ([]*types.Transformation, error)
	GetPendingByVersion(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, version string) ([]*types.Transformation, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, releaseID uuid.UUID) error
}

type transformationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTransformationRepo(db *gorm.DB, baseLog *logger.Logger) TransformationRepo {
	return &transformationRepo{db: db, log: baseLog.With("repo", "TransformationRepo")}
}

func (r *transformationRepo) Create(ctx context.Context, tx *gorm.DB, transformations []*types.Transformation) ([]*types.Transformation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(transformations) == 0 {
		return []*types.Transformation{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&transformations).Error; err != nil {
		return nil, err
	}
	return transformations, nil
}

func (r *transformationRepo) GetPendingByVersion(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, version string) ([]*types.Transformation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Transformation
	if err := transaction.WithContext(ctx).
		Where("project_id = ? AND version = ? AND status = ? AND enabled = ?",
			projectID, version, types.TransformationStatusPending, true).
		Order("order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *transformationRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, releaseID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Transformation{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":     types.TransformationStatusCompleted,
			"release_id": releaseID,
			"updated_at": time.Now(),
		}).Error; err != nil {
		return err
	}
	return nil
}
