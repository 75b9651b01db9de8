package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/visionforge/visionforge-backend/internal/types"
)

// writeYOLO emits one label file per image: normalized `class cx cy w h`
// lines for detection, normalized `class x1 y1 x2 y2 ...` polygon lines for
// segmentation. Box annotations in segmentation mode degrade to their
// rectangle polygon; polygons in detection mode degrade to their bounding
// box.
func (f *formatter) writeYOLO(exportDir string, results []types.GenerationResult, classIDs map[string]int, segmentation bool) error {
	for _, r := range results {
		dir, err := labelDir(exportDir, r.SplitSection)
		if err != nil {
			return err
		}

		var lines []string
		for _, ann := range r.Annotations {
			id, ok := classIDs[ann.ClassName]
			if !ok {
				continue
			}
			if segmentation {
				lines = append(lines, yoloSegmentationLine(id, ann, r.Width, r.Height))
			} else {
				lines = append(lines, yoloDetectionLine(id, ann, r.Width, r.Height))
			}
		}

		path := filepath.Join(dir, stemOf(r.OutputFilename)+".txt")
		content := ""
		if len(lines) > 0 {
			content = strings.Join(lines, "\n") + "\n"
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write yolo label %s: %w", path, err)
		}
	}
	return nil
}

func yoloDetectionLine(classID int, ann types.Annotation, width, height int) string {
	x, y, w, h := boxOf(ann)
	cx := (x + w/2) / float64(width)
	cy := (y + h/2) / float64(height)
	return fmt.Sprintf("%d %.6f %.6f %.6f %.6f",
		classID, clip01(cx), clip01(cy), clip01(w/float64(width)), clip01(h/float64(height)))
}

func yoloSegmentationLine(classID int, ann types.Annotation, width, height int) string {
	points := ann.Points
	if ann.Type == types.GeometryBox {
		x, y, w, h := ann.BBox[0], ann.BBox[1], ann.BBox[2], ann.BBox[3]
		points = [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	}
	parts := make([]string, 0, 1+2*len(points))
	parts = append(parts, fmt.Sprintf("%d", classID))
	for _, p := range points {
		parts = append(parts,
			fmt.Sprintf("%.6f", clip01(p[0]/float64(width))),
			fmt.Sprintf("%.6f", clip01(p[1]/float64(height))))
	}
	return strings.Join(parts, " ")
}

// boxOf returns pixel x/y/w/h for any annotation, fitting a bounding box
// around polygons.
func boxOf(ann types.Annotation) (x, y, w, h float64) {
	if ann.Type == types.GeometryBox || len(ann.Points) == 0 {
		return ann.BBox[0], ann.BBox[1], ann.BBox[2], ann.BBox[3]
	}
	minX, minY := ann.Points[0][0], ann.Points[0][1]
	maxX, maxY := minX, minY
	for _, p := range ann.Points[1:] {
		if p[0] < minX {
			minX = p[0]
		}
		if p[0] > maxX {
			maxX = p[0]
		}
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	return minX, minY, maxX - minX, maxY - minY
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
