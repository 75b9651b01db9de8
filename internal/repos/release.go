package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/visionforge/visionforge-backend/internal/platform/logger"
	"github.com/visionforge/visionforge-backend/internal/types"
)

type ReleaseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, release *types.Release) (*types.Release, error)
	GetByID(ctx context.Context, tx *gorm.DB, releaseID uuid.UUID) (*types.Release, error)
	GetHistory(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, limit int) ([]*types.Release, error)
	FullDeleteByID(ctx context.Context, tx *gorm.DB, releaseID uuid.UUID) error
}

type releaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReleaseRepo(db *gorm.DB, baseLog *logger.Logger) ReleaseRepo {
	return &releaseRepo{db: db, log: baseLog.With("repo", "ReleaseRepo")}
}

func (r *releaseRepo) Create(ctx context.Context, tx *gorm.DB, release *types.Release) (*types.Release, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(release).Error; err != nil {
		return nil, err
	}
	return release, nil
}

func (r *releaseRepo) GetByID(ctx context.Context, tx *gorm.DB, releaseID uuid.UUID) (*types.Release, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var release types.Release
	if err := transaction.WithContext(ctx).
		Where("id = ?", releaseID).
		First(&release).Error; err != nil {
		return nil, err
	}
	return &release, nil
}

// GetHistory returns releases for a project, most recent first.
func (r *releaseRepo) GetHistory(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, limit int) ([]*types.Release, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if limit <= 0 {
		limit = 20
	}

	var results []*types.Release
	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *releaseRepo) FullDeleteByID(ctx context.Context, tx *gorm.DB, releaseID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("id = ?", releaseID).
		Delete(&types.Release{}).Error; err != nil {
		return err
	}
	return nil
}
