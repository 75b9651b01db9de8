package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/visionforge/visionforge-backend/internal/augment"
	"github.com/visionforge/visionforge-backend/internal/export"
	apperrors "github.com/visionforge/visionforge-backend/internal/pkg/errors"
	"github.com/visionforge/visionforge-backend/internal/platform/logger"
	"github.com/visionforge/visionforge-backend/internal/platform/paths"
	"github.com/visionforge/visionforge-backend/internal/repos"
	"github.com/visionforge/visionforge-backend/internal/schema"
	"github.com/visionforge/visionforge-backend/internal/types"
)

// ReleaseService drives release generation end to end: loading inputs,
// per-image combination generation and transform application, annotation
// unification and export, and ZIP packaging. One call runs the whole
// pipeline synchronously; callers wanting a non-blocking trigger run it on
// their own goroutine.
type ReleaseService interface {
	RegisterRelease(releaseID uuid.UUID)
	GenerateRelease(ctx context.Context, releaseID uuid.UUID, cfg types.ReleaseConfig, transformationVersion string) error
	GetProgress(releaseID uuid.UUID) (types.ReleaseProgress, bool)
	GetHistory(ctx context.Context, projectID uuid.UUID, limit int) ([]*types.Release, error)
	CleanupFailedRelease(ctx context.Context, releaseID uuid.UUID, projectID uuid.UUID)
}

type releaseService struct {
	db              *gorm.DB
	log             *logger.Logger
	projects        repos.ProjectRepo
	datasets        repos.DatasetRepo
	images          repos.ImageRepo
	transformations repos.TransformationRepo
	releases        repos.ReleaseRepo
	store           *ProgressStore
	applier         augment.Applier
	formatter       export.Formatter
	paths           *paths.Resolver

	inFlightMu sync.Mutex
	inFlight   map[uuid.UUID]bool
}

func NewReleaseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projects repos.ProjectRepo,
	datasets repos.DatasetRepo,
	images repos.ImageRepo,
	transformations repos.TransformationRepo,
	releases repos.ReleaseRepo,
	store *ProgressStore,
	applier augment.Applier,
	formatter export.Formatter,
	resolver *paths.Resolver,
) ReleaseService {
	return &releaseService{
		db:              db,
		log:             baseLog.With("service", "ReleaseService"),
		projects:        projects,
		datasets:        datasets,
		images:          images,
		transformations: transformations,
		releases:        releases,
		store:           store,
		applier:         applier,
		formatter:       formatter,
		paths:           resolver,
		inFlight:        make(map[uuid.UUID]bool),
	}
}

// RegisterRelease creates the pending progress entry for a release id.
// Callers that run GenerateRelease on a background goroutine register first,
// so the id is pollable the moment they hand it out.
func (s *releaseService) RegisterRelease(releaseID uuid.UUID) {
	s.store.Begin(releaseID)
}

func (s *releaseService) GenerateRelease(ctx context.Context, releaseID uuid.UUID, cfg types.ReleaseConfig, transformationVersion string) error {
	if !s.markInFlight(releaseID) {
		return fmt.Errorf("release %s is already processing", releaseID)
	}
	defer s.clearInFlight(releaseID)

	log := s.log.With("release_id", releaseID, "release_name", cfg.ReleaseName)
	log.Info("Starting release generation", "version", transformationVersion)

	s.store.Begin(releaseID)

	if err := validateReleaseConfig(cfg); err != nil {
		return s.fail(ctx, log, releaseID, cfg, err)
	}

	artifact, err := s.run(ctx, log, releaseID, cfg, transformationVersion)
	if err != nil {
		return s.fail(ctx, log, releaseID, cfg, err)
	}

	log.Info("Release generation completed", "artifact", artifact)
	return nil
}

// fail records the terminal failed state in the progress store and the
// history table, then returns the error unchanged.
func (s *releaseService) fail(ctx context.Context, log *logger.Logger, releaseID uuid.UUID, cfg types.ReleaseConfig, err error) error {
	log.Error("Release generation failed", "error", err)
	now := time.Now()
	s.store.Update(releaseID, func(p *types.ReleaseProgress) {
		p.Status = types.ReleaseStatusFailed
		p.ErrorMessage = err.Error()
		p.CompletedAt = &now
	})
	s.persistHistory(ctx, releaseID, cfg, types.ReleaseStatusFailed, "", err.Error())
	return err
}

// run is the pipeline body. Any returned error marks the release failed;
// staging and PENDING transformation rows are left intact on failure.
func (s *releaseService) run(ctx context.Context, log *logger.Logger, releaseID uuid.UUID, cfg types.ReleaseConfig, version string) (string, error) {
	s.setStep(releaseID, types.StepLoadingData, 5)

	project, err := s.projects.GetByID(ctx, nil, cfg.ProjectID)
	if err != nil {
		return "", fmt.Errorf("load project %s: %w", cfg.ProjectID, err)
	}

	transformations, err := s.transformations.GetPendingByVersion(ctx, nil, cfg.ProjectID, version)
	if err != nil {
		return "", fmt.Errorf("load transformations: %w", err)
	}
	if len(transformations) == 0 {
		return "", apperrors.DataAvailability("no pending transformations for version %q", version)
	}
	if ok, problems := schema.ValidateTransformations(transformations); !ok {
		return "", apperrors.Configuration("invalid transformations: %s", strings.Join(problems, "; "))
	}

	records, err := s.loadImageRecords(ctx, log, cfg)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", apperrors.DataAvailability("no images found in datasets %v for splits %v", cfg.DatasetIDs, cfg.SplitSections)
	}

	s.store.Update(releaseID, func(p *types.ReleaseProgress) {
		p.TotalImages = len(records)
		p.ProgressPercentage = 10
	})

	s.setStep(releaseID, types.StepGeneratingConfigurations, 20)

	sampling := samplingFromConfig(cfg)
	sch, err := schema.New(transformations, sampling, s.log)
	if err != nil {
		return "", fmt.Errorf("build transformation schema: %w", err)
	}
	baseline := baselineResize(transformations)
	log.Info("Transformation schema built",
		"transformations", len(transformations),
		"estimated_combinations", sch.EstimateCombinationCount(),
		"images_per_original", sampling.ImagesPerOriginal,
	)

	stagingDir := s.paths.StagingDir(project.Name, releaseID.String())
	exportDir := s.paths.ExportDir(project.Name, releaseID.String())
	for _, dir := range []string{stagingDir, exportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create release directory %s: %w", dir, err)
		}
	}

	s.setStep(releaseID, types.StepProcessingImages, 20)

	var results []types.GenerationResult
	for i, rec := range records {
		plans := sch.Generate(rec.ID)
		imageResults, failed := s.processImage(log, rec, plans, cfg, baseline, stagingDir, exportDir)
		results = append(results, imageResults...)

		processed := i + 1
		s.store.Update(releaseID, func(p *types.ReleaseProgress) {
			p.ProcessedImages = processed
			p.GeneratedImages += len(imageResults)
			p.FailedImages += failed
			p.ProgressPercentage = 20 + 60*float64(processed)/float64(len(records))
		})
	}

	s.setStep(releaseID, types.StepFinalizing, 85)

	taskType := cfg.TaskType
	if taskType == "" {
		taskType = project.TaskType
	}
	format := export.ResolveFormat(cfg.ExportFormat, taskType, results)
	classes := export.CollectClasses(results)
	log.Info("Export format resolved", "format", format, "classes", len(classes), "results", len(results))

	if err := s.formatter.Format(exportDir, results, classes, format); err != nil {
		return "", fmt.Errorf("format annotations as %s: %w", format, err)
	}
	if err := s.writeMetadata(releaseID, cfg, format, classes, results, exportDir); err != nil {
		return "", fmt.Errorf("write release metadata: %w", err)
	}
	if err := renderPreviewSheet(results, exportDir); err != nil {
		// Preview rendering is cosmetic; a failure never blocks the release.
		log.Warn("Preview sheet rendering failed", "error", err)
	}

	s.setStep(releaseID, types.StepCreatingZipPackage, 95)

	artifact := s.paths.ArtifactPath(project.Name, cfg.ReleaseName, format)
	if err := zipDirectory(exportDir, artifact); err != nil {
		log.Error("ZIP packaging failed, falling back to flat export directory",
			"error", apperrors.Packaging(err), "export_dir", exportDir)
		artifact = exportDir
	}

	// Staged copies are safe to remove: sources were copied, never moved.
	if err := os.RemoveAll(stagingDir); err != nil {
		log.Warn("Failed to remove staging directory", "error", err, "staging_dir", stagingDir)
	}

	ids := make([]uuid.UUID, 0, len(transformations))
	for _, tr := range transformations {
		ids = append(ids, tr.ID)
	}
	if err := s.transformations.MarkCompleted(ctx, nil, ids, releaseID); err != nil {
		return "", fmt.Errorf("mark transformations completed: %w", err)
	}

	s.persistHistory(ctx, releaseID, cfg, types.ReleaseStatusCompleted, artifact, "")

	now := time.Now()
	s.store.Update(releaseID, func(p *types.ReleaseProgress) {
		p.Status = types.ReleaseStatusCompleted
		p.CurrentStep = types.StepCompleted
		p.ProgressPercentage = 100
		p.CompletedAt = &now
	})
	return artifact, nil
}

// loadImageRecords joins finalized datasets with their images and decodes
// annotations. Only datasets in the final workflow stage participate.
func (s *releaseService) loadImageRecords(ctx context.Context, log *logger.Logger, cfg types.ReleaseConfig) ([]types.ImageRecord, error) {
	datasets, err := s.datasets.GetFinalizedByIDs(ctx, nil, cfg.DatasetIDs)
	if err != nil {
		return nil, fmt.Errorf("load datasets: %w", err)
	}
	if len(datasets) == 0 {
		return nil, apperrors.DataAvailability("no finalized datasets among %v", cfg.DatasetIDs)
	}

	names := make(map[uuid.UUID]string, len(datasets))
	ids := make([]uuid.UUID, 0, len(datasets))
	for _, ds := range datasets {
		names[ds.ID] = ds.Name
		ids = append(ids, ds.ID)
	}

	rows, err := s.images.GetByDatasetIDs(ctx, nil, ids, cfg.SplitSections)
	if err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}

	records := make([]types.ImageRecord, 0, len(rows))
	for _, row := range rows {
		anns, err := row.DecodeAnnotations()
		if err != nil {
			log.Warn("Skipping image with undecodable annotations", "image_id", row.ID, "error", err)
			continue
		}
		records = append(records, types.ImageRecord{
			ID:           row.ID,
			Filename:     row.Filename,
			FilePath:     row.FilePath,
			DatasetID:    row.DatasetID,
			DatasetName:  names[row.DatasetID],
			SplitSection: row.SplitSection,
			Width:        row.Width,
			Height:       row.Height,
			Annotations:  anns,
		})
	}
	return records, nil
}

// processImage stages one source image and executes its combination plans.
// Failures here are contained: the affected unit is logged, counted and
// skipped, and the release carries on.
func (s *releaseService) processImage(
	log *logger.Logger,
	rec types.ImageRecord,
	plans []types.CombinationPlan,
	cfg types.ReleaseConfig,
	baseline types.Params,
	stagingDir, exportDir string,
) ([]types.GenerationResult, int) {
	failed := 0

	stagedName := paths.StagedName(rec.DatasetName, rec.Filename)
	if ext := augment.OutputExtension(cfg.OutputFormat); ext != "" {
		stagedName = stemOf(stagedName) + ext
	}
	stagedPath := filepath.Join(stagingDir, stagedName)

	if err := augment.ConvertTo(rec.FilePath, stagedPath, cfg.OutputFormat); err != nil {
		log.Warn("Pixel format conversion failed, staging a raw copy",
			"image_id", rec.ID, "error", apperrors.TransformApplication(err, rec.Filename))
		stagedName = paths.StagedName(rec.DatasetName, rec.Filename)
		stagedPath = filepath.Join(stagingDir, stagedName)
		if err := augment.CopyFile(rec.FilePath, stagedPath); err != nil {
			log.Error("Staging copy failed, skipping image", "image_id", rec.ID, "error", err)
			return nil, 1
		}
	}

	img, err := augment.OpenImage(stagedPath)
	if err != nil {
		log.Error("Cannot decode staged image, skipping", "image_id", rec.ID, "error", err)
		return nil, 1
	}

	imagesDir := filepath.Join(exportDir, "images", rec.SplitSection)
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		log.Error("Cannot create export images directory, skipping image", "image_id", rec.ID, "error", err)
		return nil, 1
	}

	stem := stemOf(stagedName)
	ext := filepath.Ext(stagedName)
	var results []types.GenerationResult

	for _, plan := range plans {
		outputs, err := s.applier.Apply(img, rec.Annotations, plan.Transformations)
		if err != nil {
			log.Warn("Transform application failed, skipping combination",
				"image_id", rec.ID, "config_id", plan.ConfigID,
				"error", apperrors.TransformApplication(err, rec.Filename))
			failed++
			continue
		}

		for _, out := range outputs {
			final := out.Image
			anns := out.Annotations
			if baseline != nil {
				beforeW, beforeH := final.Bounds().Dx(), final.Bounds().Dy()
				final = s.applier.ApplyBaseline(final, baseline)
				anns = augment.ScaleAnnotations(anns,
					float64(final.Bounds().Dx())/float64(beforeW),
					float64(final.Bounds().Dy())/float64(beforeH))
			}

			name := fmt.Sprintf("%s_aug%d%s", stem, plan.Order, ext)
			if out.Tag != "" {
				name = fmt.Sprintf("%s_aug%d_%s%s", stem, plan.Order, out.Tag, ext)
			}
			outPath := filepath.Join(imagesDir, name)
			if err := augment.SaveImage(final, outPath); err != nil {
				log.Warn("Saving generated image failed, skipping",
					"image_id", rec.ID, "output", name, "error", err)
				failed++
				continue
			}

			results = append(results, types.GenerationResult{
				OutputFilename:         name,
				OutputPath:             outPath,
				SplitSection:           rec.SplitSection,
				IsOriginal:             false,
				SourceImage:            rec.Filename,
				SourceDataset:          rec.DatasetName,
				Width:                  final.Bounds().Dx(),
				Height:                 final.Bounds().Dy(),
				Annotations:            anns,
				TransformationsApplied: out.Applied,
			})
		}
	}

	if cfg.IncludeOriginal {
		origPath := filepath.Join(imagesDir, stagedName)
		if err := augment.CopyFile(stagedPath, origPath); err != nil {
			log.Warn("Copying original into release failed", "image_id", rec.ID, "error", err)
			failed++
		} else {
			results = append(results, types.GenerationResult{
				OutputFilename:         stagedName,
				OutputPath:             origPath,
				SplitSection:           rec.SplitSection,
				IsOriginal:             true,
				SourceImage:            rec.Filename,
				SourceDataset:          rec.DatasetName,
				Width:                  img.Bounds().Dx(),
				Height:                 img.Bounds().Dy(),
				Annotations:            rec.Annotations,
				TransformationsApplied: []types.AppliedTransform{},
			})
		}
	}

	return results, failed
}

func (s *releaseService) GetProgress(releaseID uuid.UUID) (types.ReleaseProgress, bool) {
	return s.store.Get(releaseID)
}

func (s *releaseService) GetHistory(ctx context.Context, projectID uuid.UUID, limit int) ([]*types.Release, error) {
	return s.releases.GetHistory(ctx, nil, projectID, limit)
}

// CleanupFailedRelease removes whatever a failed release left behind. Best
// effort by contract: every step is logged and none of them propagates.
func (s *releaseService) CleanupFailedRelease(ctx context.Context, releaseID uuid.UUID, projectID uuid.UUID) {
	log := s.log.With("release_id", releaseID)

	project, err := s.projects.GetByID(ctx, nil, projectID)
	if err != nil {
		log.Warn("Cleanup could not resolve project", "project_id", projectID, "error", err)
		return
	}

	releaseDir := s.paths.ReleaseDir(project.Name, releaseID.String())
	if err := os.RemoveAll(releaseDir); err != nil {
		log.Warn("Cleanup could not remove release directory", "dir", releaseDir, "error", err)
	}

	if release, err := s.releases.GetByID(ctx, nil, releaseID); err == nil && release.ArtifactPath != "" {
		if info, statErr := os.Stat(release.ArtifactPath); statErr == nil && !info.IsDir() {
			if err := os.Remove(release.ArtifactPath); err != nil {
				log.Warn("Cleanup could not remove artifact", "path", release.ArtifactPath, "error", err)
			}
		}
	}

	if err := s.releases.FullDeleteByID(ctx, nil, releaseID); err != nil {
		log.Warn("Cleanup could not delete release history row", "error", err)
	}
	s.store.Delete(releaseID)

	log.Info("Cleaned up failed release", "dir", releaseDir)
}

func (s *releaseService) setStep(releaseID uuid.UUID, step string, pct float64) {
	s.store.Update(releaseID, func(p *types.ReleaseProgress) {
		p.Status = types.ReleaseStatusProcessing
		p.CurrentStep = step
		p.ProgressPercentage = pct
	})
}

func (s *releaseService) persistHistory(ctx context.Context, releaseID uuid.UUID, cfg types.ReleaseConfig, status, artifact, errMsg string) {
	progress, _ := s.store.Get(releaseID)
	rawCfg, _ := json.Marshal(cfg)
	_, err := s.releases.Create(ctx, nil, &types.Release{
		ID:              releaseID,
		ProjectID:       cfg.ProjectID,
		Name:            cfg.ReleaseName,
		ExportFormat:    cfg.ExportFormat,
		TaskType:        cfg.TaskType,
		Status:          status,
		ArtifactPath:    artifact,
		Config:          datatypes.JSON(rawCfg),
		TotalImages:     progress.TotalImages,
		GeneratedImages: progress.GeneratedImages,
		ErrorMessage:    errMsg,
	})
	if err != nil {
		s.log.Error("Failed to persist release history row", "release_id", releaseID, "error", err)
	}
}

func (s *releaseService) markInFlight(releaseID uuid.UUID) bool {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	if s.inFlight[releaseID] {
		return false
	}
	s.inFlight[releaseID] = true
	return true
}

func (s *releaseService) clearInFlight(releaseID uuid.UUID) {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	delete(s.inFlight, releaseID)
}

func validateReleaseConfig(cfg types.ReleaseConfig) error {
	var problems []string
	if strings.TrimSpace(cfg.ReleaseName) == "" {
		problems = append(problems, "release_name is required")
	}
	if cfg.ProjectID == uuid.Nil {
		problems = append(problems, "project_id is required")
	}
	// Empty dataset_ids is not a configuration problem. It fails inside the
	// pipeline as missing data, the same as a dataset list that resolves to
	// nothing.
	if ok, sampleProblems := schema.ValidateSampling(samplingFromConfig(cfg)); !ok {
		problems = append(problems, sampleProblems...)
	}
	if len(problems) > 0 {
		return apperrors.Configuration("%s", strings.Join(problems, "; "))
	}
	return nil
}

func samplingFromConfig(cfg types.ReleaseConfig) types.SamplingConfig {
	strategy := cfg.SamplingStrategy
	if strategy == "" {
		strategy = types.StrategyIntelligent
	}
	return types.SamplingConfig{
		ImagesPerOriginal: cfg.ImagesPerOriginal,
		Strategy:          strategy,
		FixedCombinations: cfg.FixedCombinations,
		Seed:              cfg.RandomSeed,
	}
}

// baselineResize returns the resolved parameters of an enabled resize
// transformation, or nil. Resize never joins combinations; it is applied as
// a baseline to every output.
func baselineResize(transformations []*types.Transformation) types.Params {
	for _, tr := range transformations {
		if tr != nil && tr.Enabled && tr.ToolType == types.BaselineToolType {
			value, err := types.ResolveParameters(tr.ToolType, tr.Parameters)
			if err != nil {
				return nil
			}
			return value.User
		}
	}
	return nil
}

func stemOf(filename string) string {
	ext := filepath.Ext(filename)
	return filename[:len(filename)-len(ext)]
}
