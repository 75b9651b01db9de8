package types

import (
	"time"

	"github.com/google/uuid"
)

// Release lifecycle. A release never returns to pending.
const (
	ReleaseStatusPending    = "pending"
	ReleaseStatusProcessing = "processing"
	ReleaseStatusCompleted  = "completed"
	ReleaseStatusFailed     = "failed"
)

// Observational steps a processing release advances through.
const (
	StepLoadingData              = "loading_data"
	StepGeneratingConfigurations = "generating_configurations"
	StepProcessingImages         = "processing_images"
	StepFinalizing               = "finalizing"
	StepCreatingZipPackage       = "creating_zip_package"
	StepCompleted                = "completed"
)

// Sampling strategies for reducing an oversized combination list.
const (
	StrategyIntelligent = "intelligent"
	StrategyRandom      = "random"
	StrategyUniform     = "uniform"
)

// Priority tags carried by generated combinations for traceability.
const (
	PriorityUserValue   = "user_value"
	PriorityAutoValue   = "auto_value"
	PriorityCombination = "combination"
	PriorityRegular     = "regular"
	PrioritySingleValue = "single_value"
)

// Supported export formats. Serialization itself is delegated to the export
// package; these names select the serializer.
const (
	FormatYOLODetection    = "yolo_detection"
	FormatYOLOSegmentation = "yolo_segmentation"
	FormatCOCO             = "coco"
	FormatPascalVOC        = "pascal_voc"
	FormatCSV              = "csv"
)

// Task types a project can be configured for.
const (
	TaskObjectDetection      = "object_detection"
	TaskInstanceSegmentation = "instance_segmentation"
)

// SamplingConfig governs post-generation reduction of the combination list.
// Seed, when non-nil, makes the filler shuffle and the sampling strategies
// reproducible.
type SamplingConfig struct {
	ImagesPerOriginal int    `json:"images_per_original"`
	Strategy          string `json:"strategy"`
	FixedCombinations int    `json:"fixed_combinations"`
	Seed              *int64 `json:"random_seed,omitempty"`
}

// CombinationPlan is one generated variant configuration for one image:
// which tools to apply with which resolved parameters. Order is unique and
// sequential per image starting at 1.
type CombinationPlan struct {
	ConfigID        string            `json:"config_id"`
	ImageID         uuid.UUID         `json:"image_id"`
	Transformations map[string]Params `json:"transformations"`
	Order           int               `json:"order"`
	PriorityType    string            `json:"priority_type"`
}

// ReleaseConfig is the caller-supplied description of a release. It is
// owned by the caller and treated as immutable by the pipeline.
type ReleaseConfig struct {
	ReleaseName       string      `json:"release_name"`
	ProjectID         uuid.UUID   `json:"project_id"`
	DatasetIDs        []uuid.UUID `json:"dataset_ids"`
	ExportFormat      string      `json:"export_format"`
	TaskType          string      `json:"task_type"`
	ImagesPerOriginal int         `json:"images_per_original"`
	SamplingStrategy  string      `json:"sampling_strategy"`
	FixedCombinations int         `json:"fixed_combinations"`
	RandomSeed        *int64      `json:"random_seed,omitempty"`
	OutputFormat      string      `json:"output_format"`
	IncludeOriginal   bool        `json:"include_original"`
	SplitSections     []string    `json:"split_sections"`
}

// ReleaseProgress is the live, in-memory view of one release generation.
type ReleaseProgress struct {
	ReleaseID          uuid.UUID  `json:"release_id"`
	Status             string     `json:"status"`
	ProgressPercentage float64    `json:"progress_percentage"`
	CurrentStep        string     `json:"current_step"`
	TotalImages        int        `json:"total_images"`
	ProcessedImages    int        `json:"processed_images"`
	GeneratedImages    int        `json:"generated_images"`
	FailedImages       int        `json:"failed_images"`
	ErrorMessage       string     `json:"error_message,omitempty"`
	StartedAt          time.Time  `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// AppliedTransform records one tool application on a generated image.
type AppliedTransform struct {
	ToolType string `json:"tool_type"`
	Params   Params `json:"params"`
}

// GenerationResult is one output image of the generation step, augmented or
// original. SplitSection always equals the source image's split.
type GenerationResult struct {
	OutputFilename         string             `json:"output_filename"`
	OutputPath             string             `json:"output_path"`
	SplitSection           string             `json:"split_section"`
	IsOriginal             bool               `json:"is_original"`
	SourceImage            string             `json:"source_image"`
	SourceDataset          string             `json:"source_dataset"`
	Width                  int                `json:"width"`
	Height                 int                `json:"height"`
	Annotations            []Annotation       `json:"annotations"`
	TransformationsApplied []AppliedTransform `json:"transformations_applied"`
}
