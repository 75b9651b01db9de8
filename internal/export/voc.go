package export

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/visionforge/visionforge-backend/internal/types"
)

type vocAnnotation struct {
	XMLName  xml.Name  `xml:"annotation"`
	Folder   string    `xml:"folder"`
	Filename string    `xml:"filename"`
	Source   vocSource `xml:"source"`
	Size     vocSize   `xml:"size"`
	Objects  []vocObj  `xml:"object"`
}

type vocSource struct {
	Database string `xml:"database"`
}

type vocSize struct {
	Width  int `xml:"width"`
	Height int `xml:"height"`
	Depth  int `xml:"depth"`
}

type vocObj struct {
	Name      string  `xml:"name"`
	Pose      string  `xml:"pose"`
	Truncated int     `xml:"truncated"`
	Difficult int     `xml:"difficult"`
	BndBox    vocBBox `xml:"bndbox"`
}

type vocBBox struct {
	XMin int `xml:"xmin"`
	YMin int `xml:"ymin"`
	XMax int `xml:"xmax"`
	YMax int `xml:"ymax"`
}

// writePascalVOC emits one XML file per image. Polygons are exported as
// their bounding boxes; VOC has no polygon geometry.
func (f *formatter) writePascalVOC(exportDir string, results []types.GenerationResult) error {
	for _, r := range results {
		doc := vocAnnotation{
			Folder:   r.SplitSection,
			Filename: r.OutputFilename,
			Source:   vocSource{Database: "visionforge"},
			Size:     vocSize{Width: r.Width, Height: r.Height, Depth: 3},
		}
		for _, ann := range r.Annotations {
			x, y, w, h := boxOf(ann)
			doc.Objects = append(doc.Objects, vocObj{
				Name: ann.ClassName,
				Pose: "Unspecified",
				BndBox: vocBBox{
					XMin: int(x),
					YMin: int(y),
					XMax: int(x + w),
					YMax: int(y + h),
				},
			})
		}

		dir, err := labelDir(exportDir, r.SplitSection)
		if err != nil {
			return err
		}
		raw, err := xml.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal voc annotation: %w", err)
		}
		path := filepath.Join(dir, stemOf(r.OutputFilename)+".xml")
		if err := os.WriteFile(path, append([]byte(xml.Header), raw...), 0o644); err != nil {
			return fmt.Errorf("write voc annotation %s: %w", path, err)
		}
	}
	return nil
}
