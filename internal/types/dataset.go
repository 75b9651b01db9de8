package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Workflow stages a dataset moves through. Only datasets in the final
// "dataset" stage are eligible for release generation.
const (
	WorkflowStageAnnotating = "annotating"
	WorkflowStageReview     = "review"
	WorkflowStageDataset    = "dataset"
)

type Dataset struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project       *Project       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	WorkflowStage string         `gorm:"column:workflow_stage;not null;default:'annotating';index" json:"workflow_stage"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Dataset) TableName() string { return "dataset" }
