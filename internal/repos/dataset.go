package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/visionforge/visionforge-backend/internal/platform/logger"
	"github.com/visionforge/visionforge-backend/internal/types"
)

type DatasetRepo interface {
	Create(ctx context.Context, tx *gorm.DB, datasets []*types.Dataset) ([]*types.Dataset, error)
	GetFinalizedByIDs(ctx context.Context, tx *gorm.DB, datasetIDs []uuid.UUID) ([]*types.Dataset, error)
}

type datasetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatasetRepo(db *gorm.DB, baseLog *logger.Logger) DatasetRepo {
	return &datasetRepo{db: db, log: baseLog.With("repo", "DatasetRepo")}
}

func (r *datasetRepo) Create(ctx context.Context, tx *gorm.DB, datasets []*types.Dataset) ([]*types.Dataset, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(datasets) == 0 {
		return []*types.Dataset{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&datasets).Error; err != nil {
		return nil, err
	}
	return datasets, nil
}

// GetFinalizedByIDs returns only datasets that have reached the "dataset"
// workflow stage; earlier-stage datasets are silently excluded.
func (r *datasetRepo) GetFinalizedByIDs(ctx context.Context, tx *gorm.DB, datasetIDs []uuid.UUID) ([]*types.Dataset, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Dataset
	if len(datasetIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ? AND workflow_stage = ?", datasetIDs, types.WorkflowStageDataset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
