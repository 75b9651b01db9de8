package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/visionforge/visionforge-backend/internal/platform/logger"
	"github.com/visionforge/visionforge-backend/internal/types"
)

// Formatter serializes unified generation results into one annotation
// format under exportDir/labels. Class IDs are the positions in the classes
// slice; unification happens before the formatter is invoked.
type Formatter interface {
	Format(exportDir string, results []types.GenerationResult, classes []string, format string) error
}

type formatter struct {
	log *logger.Logger
}

func NewFormatter(baseLog *logger.Logger) Formatter {
	return &formatter{log: baseLog.With("component", "ExportFormatter")}
}

func (f *formatter) Format(exportDir string, results []types.GenerationResult, classes []string, format string) error {
	classIDs := make(map[string]int, len(classes))
	for i, c := range classes {
		classIDs[c] = i
	}

	switch format {
	case types.FormatYOLODetection:
		return f.writeYOLO(exportDir, results, classIDs, false)
	case types.FormatYOLOSegmentation:
		return f.writeYOLO(exportDir, results, classIDs, true)
	case types.FormatCOCO:
		return f.writeCOCO(exportDir, results, classes)
	case types.FormatPascalVOC:
		return f.writePascalVOC(exportDir, results)
	case types.FormatCSV:
		return f.writeCSV(exportDir, results, classIDs)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ResolveFormat picks the annotation format for a release. An explicit
// caller choice always wins; otherwise the task type and the geometry
// observed across all results decide.
func ResolveFormat(explicit, taskType string, results []types.GenerationResult) string {
	if explicit != "" && explicit != "auto" {
		return explicit
	}

	hasPolygons := false
	for _, r := range results {
		for _, ann := range r.Annotations {
			if ann.Type == types.GeometryPolygon {
				hasPolygons = true
				break
			}
		}
		if hasPolygons {
			break
		}
	}

	switch taskType {
	case types.TaskInstanceSegmentation:
		if hasPolygons {
			return types.FormatYOLOSegmentation
		}
		return types.FormatCOCO
	case types.TaskObjectDetection:
		if hasPolygons {
			return types.FormatCOCO
		}
		return types.FormatYOLODetection
	default:
		return types.FormatCOCO
	}
}

// CollectClasses unifies class names release-wide in first-seen order over
// all results, which keeps IDs stable for a fixed generation order.
func CollectClasses(results []types.GenerationResult) []string {
	seen := make(map[string]bool)
	var classes []string
	for _, r := range results {
		for _, ann := range r.Annotations {
			if ann.ClassName == "" || seen[ann.ClassName] {
				continue
			}
			seen[ann.ClassName] = true
			classes = append(classes, ann.ClassName)
		}
	}
	return classes
}

func labelDir(exportDir, split string) (string, error) {
	dir := filepath.Join(exportDir, "labels", split)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create label dir: %w", err)
	}
	return dir, nil
}

func stemOf(filename string) string {
	ext := filepath.Ext(filename)
	return filename[:len(filename)-len(ext)]
}
