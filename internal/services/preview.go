package services

import (
	"image"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/visionforge/visionforge-backend/internal/augment"
	"github.com/visionforge/visionforge-backend/internal/types"
)

const (
	previewGrid = 3
	previewCell = 256
)

// renderPreviewSheet draws up to nine generated images into a contact sheet
// with their annotation geometry stroked on top, written to
// metadata/previews.png. Purely informational output for whoever opens the
// release bundle.
func renderPreviewSheet(results []types.GenerationResult, exportDir string) error {
	if len(results) == 0 {
		return nil
	}

	count := len(results)
	if count > previewGrid*previewGrid {
		count = previewGrid * previewGrid
	}

	dc := gg.NewContext(previewGrid*previewCell, previewGrid*previewCell)
	dc.SetRGB(0.12, 0.12, 0.12)
	dc.Clear()

	for i := 0; i < count; i++ {
		r := results[i]
		img, err := augment.OpenImage(r.OutputPath)
		if err != nil {
			continue
		}

		cellX := (i % previewGrid) * previewCell
		cellY := (i / previewGrid) * previewCell
		scaled, offsetX, offsetY, scale := fitToCell(img)

		dc.DrawImage(scaled, cellX+offsetX, cellY+offsetY)
		drawAnnotations(dc, r.Annotations, float64(cellX+offsetX), float64(cellY+offsetY), scale)
	}

	return dc.SavePNG(filepath.Join(exportDir, "metadata", "previews.png"))
}

func fitToCell(img image.Image) (image.Image, int, int, float64) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	scale := float64(previewCell) / w
	if s := float64(previewCell) / h; s < scale {
		scale = s
	}
	scaled := scaleImage(img, int(w*scale), int(h*scale))
	offsetX := (previewCell - scaled.Bounds().Dx()) / 2
	offsetY := (previewCell - scaled.Bounds().Dy()) / 2
	return scaled, offsetX, offsetY, scale
}

func scaleImage(img image.Image, w, h int) image.Image {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	dc := gg.NewContext(w, h)
	b := img.Bounds()
	dc.Scale(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	dc.DrawImage(img, 0, 0)
	return dc.Image()
}

func drawAnnotations(dc *gg.Context, anns []types.Annotation, offsetX, offsetY, scale float64) {
	dc.SetRGB(0.2, 0.9, 0.3)
	dc.SetLineWidth(2)
	for _, ann := range anns {
		switch ann.Type {
		case types.GeometryBox:
			dc.DrawRectangle(
				offsetX+ann.BBox[0]*scale,
				offsetY+ann.BBox[1]*scale,
				ann.BBox[2]*scale,
				ann.BBox[3]*scale,
			)
			dc.Stroke()
		case types.GeometryPolygon:
			if len(ann.Points) < 2 {
				continue
			}
			dc.MoveTo(offsetX+ann.Points[0][0]*scale, offsetY+ann.Points[0][1]*scale)
			for _, p := range ann.Points[1:] {
				dc.LineTo(offsetX+p[0]*scale, offsetY+p[1]*scale)
			}
			dc.ClosePath()
			dc.Stroke()
		}
	}
}
