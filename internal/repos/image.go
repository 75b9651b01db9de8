package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/visionforge/visionforge-backend/internal/platform/logger"
	"github.com/visionforge/visionforge-backend/internal/types"
)

type ImageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, images []*types.DatasetImage) ([]*types.DatasetImage, error)
	GetByDatasetIDs(ctx context.Context, tx *gorm.DB, datasetIDs []uuid.UUID, splitSections []string) ([]*types.DatasetImage, error)
}

type imageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImageRepo(db *gorm.DB, baseLog *logger.Logger) ImageRepo {
	return &imageRepo{db: db, log: baseLog.With("repo", "ImageRepo")}
}

func (r *imageRepo) Create(ctx context.Context, tx *gorm.DB, images []*types.DatasetImage) ([]*types.DatasetImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(images) == 0 {
		return []*types.DatasetImage{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (r *imageRepo) GetByDatasetIDs(ctx context.Context, tx *gorm.DB, datasetIDs []uuid.UUID, splitSections []string) ([]*types.DatasetImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.DatasetImage
	if len(datasetIDs) == 0 {
		return results, nil
	}

	query := transaction.WithContext(ctx).Where("dataset_id IN ?", datasetIDs)
	if len(splitSections) > 0 {
		query = query.Where("split_section IN ?", splitSections)
	}
	if err := query.Order("filename ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
