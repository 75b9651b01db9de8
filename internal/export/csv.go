package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/visionforge/visionforge-backend/internal/types"
)

// writeCSV emits a single annotations.csv for the whole release under
// labels/, one row per annotation.
func (f *formatter) writeCSV(exportDir string, results []types.GenerationResult, classIDs map[string]int) error {
	dir := filepath.Join(exportDir, "labels")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create label dir: %w", err)
	}
	path := filepath.Join(dir, "annotations.csv")

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := []string{"filename", "split", "width", "height", "class", "class_id", "xmin", "ymin", "xmax", "ymax"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range results {
		for _, ann := range r.Annotations {
			id, ok := classIDs[ann.ClassName]
			if !ok {
				continue
			}
			x, y, bw, bh := boxOf(ann)
			row := []string{
				r.OutputFilename,
				r.SplitSection,
				strconv.Itoa(r.Width),
				strconv.Itoa(r.Height),
				ann.ClassName,
				strconv.Itoa(id),
				formatCoord(x),
				formatCoord(y),
				formatCoord(x + bw),
				formatCoord(y + bh),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	w.Flush()
	return w.Error()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
