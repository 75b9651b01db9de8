package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Split sections of a source image. The split is authoritative: the release
// pipeline relocates images within the same split and never re-derives it.
const (
	SplitTrain = "train"
	SplitVal   = "val"
	SplitTest  = "test"
)

// Annotation geometry kinds.
const (
	GeometryBox     = "box"
	GeometryPolygon = "polygon"
)

// Annotation is one labeled region on an image. Box coordinates are pixel
// x/y/width/height; polygon points are pixel x,y pairs.
type Annotation struct {
	ClassName string       `json:"class_name"`
	Type      string       `json:"type"`
	BBox      [4]float64   `json:"bbox,omitempty"`
	Points    [][2]float64 `json:"points,omitempty"`
}

type DatasetImage struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DatasetID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"dataset_id"`
	Dataset     *Dataset       `gorm:"constraint:OnDelete:CASCADE;foreignKey:DatasetID;references:ID" json:"dataset,omitempty"`
	Filename    string         `gorm:"column:filename;not null" json:"filename"`
	FilePath    string         `gorm:"column:file_path;not null" json:"file_path"`
	SplitSection string        `gorm:"column:split_section;not null;default:'train';index" json:"split_section"`
	Width       int            `gorm:"column:width" json:"width"`
	Height      int            `gorm:"column:height" json:"height"`
	Annotations datatypes.JSON `gorm:"column:annotations;type:jsonb" json:"annotations"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (DatasetImage) TableName() string { return "dataset_image" }

// DecodeAnnotations unmarshals the stored annotation column. A null or empty
// column decodes to no annotations.
func (di *DatasetImage) DecodeAnnotations() ([]Annotation, error) {
	if len(di.Annotations) == 0 {
		return nil, nil
	}
	var anns []Annotation
	if err := json.Unmarshal(di.Annotations, &anns); err != nil {
		return nil, err
	}
	return anns, nil
}

// ImageRecord is the pipeline's view of a source image: the persisted row
// plus the owning dataset's name, which is needed for collision-proof
// staging names and per-dataset stats.
type ImageRecord struct {
	ID           uuid.UUID
	Filename     string
	FilePath     string
	DatasetID    uuid.UUID
	DatasetName  string
	SplitSection string
	Width        int
	Height       int
	Annotations  []Annotation
}
