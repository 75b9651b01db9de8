package services

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/visionforge/visionforge-backend/internal/types"
)

// Metadata shapes written under metadata/ in every release.

type releaseConfigEcho struct {
	ReleaseID   string              `json:"release_id"`
	GeneratedAt string              `json:"generated_at"`
	Format      string              `json:"export_format"`
	Classes     []string            `json:"classes"`
	Config      types.ReleaseConfig `json:"config"`
}

type datasetStats struct {
	TotalImages         int            `json:"total_images"`
	OriginalImages      int            `json:"original_images"`
	AugmentedImages     int            `json:"augmented_images"`
	SplitCounts         map[string]int `json:"split_counts"`
	ClassDistribution   map[string]int `json:"class_distribution"`
	DatasetDistribution map[string]int `json:"dataset_distribution"`
}

type transformationLogEntry struct {
	SourceImage     string                   `json:"source_image"`
	Transformations []types.AppliedTransform `json:"transformations"`
}

// writeMetadata produces the fixed metadata files and the README for one
// release export directory.
func (s *releaseService) writeMetadata(releaseID uuid.UUID, cfg types.ReleaseConfig, format string, classes []string, results []types.GenerationResult, exportDir string) error {
	metaDir := filepath.Join(exportDir, "metadata")
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return fmt.Errorf("create metadata dir: %w", err)
	}

	echo := releaseConfigEcho{
		ReleaseID:   releaseID.String(),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Format:      format,
		Classes:     classes,
		Config:      cfg,
	}
	if err := writeJSON(filepath.Join(metaDir, "release_config.json"), echo); err != nil {
		return err
	}

	stats := buildDatasetStats(results)
	if err := writeJSON(filepath.Join(metaDir, "dataset_stats.json"), stats); err != nil {
		return err
	}

	logEntries := make(map[string]transformationLogEntry, len(results))
	for _, r := range results {
		logEntries[r.OutputFilename] = transformationLogEntry{
			SourceImage:     r.SourceImage,
			Transformations: r.TransformationsApplied,
		}
	}
	if err := writeJSON(filepath.Join(metaDir, "transformation_log.json"), logEntries); err != nil {
		return err
	}

	readme := buildReadme(cfg, format, stats, classes)
	if err := os.WriteFile(filepath.Join(exportDir, "README.md"), []byte(readme), 0o644); err != nil {
		return fmt.Errorf("write README: %w", err)
	}
	return nil
}

func buildDatasetStats(results []types.GenerationResult) datasetStats {
	stats := datasetStats{
		TotalImages:         len(results),
		SplitCounts:         map[string]int{},
		ClassDistribution:   map[string]int{},
		DatasetDistribution: map[string]int{},
	}
	for _, r := range results {
		stats.SplitCounts[r.SplitSection]++
		stats.DatasetDistribution[r.SourceDataset]++
		if r.IsOriginal {
			stats.OriginalImages++
		} else {
			stats.AugmentedImages++
		}
		for _, ann := range r.Annotations {
			if ann.ClassName != "" {
				stats.ClassDistribution[ann.ClassName]++
			}
		}
	}
	return stats
}

func buildReadme(cfg types.ReleaseConfig, format string, stats datasetStats, classes []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cfg.ReleaseName)
	fmt.Fprintf(&b, "Generated by visionforge on %s.\n\n", time.Now().Format("2006-01-02"))
	fmt.Fprintf(&b, "- Export format: `%s`\n", format)
	fmt.Fprintf(&b, "- Total images: %d (%d original, %d augmented)\n",
		stats.TotalImages, stats.OriginalImages, stats.AugmentedImages)
	for _, split := range []string{types.SplitTrain, types.SplitVal, types.SplitTest} {
		if n, ok := stats.SplitCounts[split]; ok {
			fmt.Fprintf(&b, "- %s: %d images\n", split, n)
		}
	}
	if len(classes) > 0 {
		fmt.Fprintf(&b, "- Classes: %s\n", strings.Join(classes, ", "))
	}
	b.WriteString("\nLayout:\n\n```\nimages/{train,val,test}/\nlabels/{train,val,test}/\nmetadata/\nREADME.md\n```\n")
	return b.String()
}

func writeJSON(path string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// zipDirectory packs the contents of dir into a ZIP at zipPath, with paths
// relative to dir.
func zipDirectory(dir, zipPath string) error {
	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer out.Close()

	w := zip.NewWriter(out)
	err = filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		entry, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(entry, f)
		return err
	})
	if err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
