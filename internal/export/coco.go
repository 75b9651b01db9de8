package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/visionforge/visionforge-backend/internal/types"
)

type cocoFile struct {
	Info        cocoInfo         `json:"info"`
	Images      []cocoImage      `json:"images"`
	Annotations []cocoAnnotation `json:"annotations"`
	Categories  []cocoCategory   `json:"categories"`
}

type cocoInfo struct {
	Description string `json:"description"`
	DateCreated string `json:"date_created"`
}

type cocoImage struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type cocoAnnotation struct {
	ID           int         `json:"id"`
	ImageID      int         `json:"image_id"`
	CategoryID   int         `json:"category_id"`
	BBox         [4]float64  `json:"bbox"`
	Area         float64     `json:"area"`
	Segmentation [][]float64 `json:"segmentation"`
	IsCrowd      int         `json:"iscrowd"`
}

type cocoCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// writeCOCO emits one _annotations.coco.json per split under labels/{split}.
func (f *formatter) writeCOCO(exportDir string, results []types.GenerationResult, classes []string) error {
	classIDs := make(map[string]int, len(classes))
	categories := make([]cocoCategory, 0, len(classes))
	for i, c := range classes {
		classIDs[c] = i
		categories = append(categories, cocoCategory{ID: i, Name: c})
	}

	bySplit := make(map[string][]types.GenerationResult)
	for _, r := range results {
		bySplit[r.SplitSection] = append(bySplit[r.SplitSection], r)
	}

	for split, splitResults := range bySplit {
		file := cocoFile{
			Info: cocoInfo{
				Description: "visionforge release export",
				DateCreated: time.Now().Format(time.RFC3339),
			},
			Images:      []cocoImage{},
			Annotations: []cocoAnnotation{},
			Categories:  categories,
		}

		annID := 1
		for imgID, r := range splitResults {
			file.Images = append(file.Images, cocoImage{
				ID:       imgID,
				FileName: r.OutputFilename,
				Width:    r.Width,
				Height:   r.Height,
			})
			for _, ann := range r.Annotations {
				catID, ok := classIDs[ann.ClassName]
				if !ok {
					continue
				}
				x, y, w, h := boxOf(ann)
				entry := cocoAnnotation{
					ID:           annID,
					ImageID:      imgID,
					CategoryID:   catID,
					BBox:         [4]float64{x, y, w, h},
					Area:         w * h,
					Segmentation: [][]float64{},
				}
				if ann.Type == types.GeometryPolygon && len(ann.Points) > 0 {
					flat := make([]float64, 0, 2*len(ann.Points))
					for _, p := range ann.Points {
						flat = append(flat, p[0], p[1])
					}
					entry.Segmentation = [][]float64{flat}
				}
				file.Annotations = append(file.Annotations, entry)
				annID++
			}
		}

		dir, err := labelDir(exportDir, split)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, "_annotations.coco.json")
		raw, err := json.MarshalIndent(file, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal coco annotations: %w", err)
		}
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return fmt.Errorf("write coco annotations %s: %w", path, err)
		}
	}
	return nil
}
