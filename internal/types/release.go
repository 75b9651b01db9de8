package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Release is the persisted history row for one packaged release. It is
// written at terminal state; live progress lives in the in-memory store.
type Release struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project         *Project       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	Name            string         `gorm:"column:name;not null" json:"name"`
	ExportFormat    string         `gorm:"column:export_format" json:"export_format"`
	TaskType        string         `gorm:"column:task_type" json:"task_type"`
	Status          string         `gorm:"column:status;not null" json:"status"`
	ArtifactPath    string         `gorm:"column:artifact_path" json:"artifact_path"`
	Config          datatypes.JSON `gorm:"column:config;type:jsonb" json:"config"`
	TotalImages     int            `gorm:"column:total_images" json:"total_images"`
	GeneratedImages int            `gorm:"column:generated_images" json:"generated_images"`
	ErrorMessage    string         `gorm:"column:error_message" json:"error_message,omitempty"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Release) TableName() string { return "release" }
