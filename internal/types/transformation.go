package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BaselineToolType is the reserved resize tool. It is applied as a baseline
// to every output and never participates in combination generation.
const BaselineToolType = "resize"

// Transformation row lifecycle. PENDING rows are consumed by the next
// release generated under their version and then marked COMPLETED with the
// release id, so a later release under the same version does not reuse them.
const (
	TransformationStatusPending   = "PENDING"
	TransformationStatusCompleted = "COMPLETED"
)

type Transformation struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project    *Project       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	ToolType   string         `gorm:"column:tool_type;not null" json:"tool_type"`
	Parameters datatypes.JSON `gorm:"column:parameters;type:jsonb" json:"parameters"`
	Enabled    bool           `gorm:"column:enabled;not null;default:true" json:"enabled"`
	OrderIndex int            `gorm:"column:order_index;not null;default:0" json:"order_index"`
	Version    string         `gorm:"column:version;not null;index" json:"version"`
	Status     string         `gorm:"column:status;not null;default:'PENDING';index" json:"status"`
	ReleaseID  *uuid.UUID     `gorm:"type:uuid;column:release_id" json:"release_id,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Transformation) TableName() string { return "transformation" }
