package augment

import (
	"math"

	"github.com/visionforge/visionforge-backend/internal/types"
)

// Annotation geometry mapping for the transforms that move pixels. All
// coordinates are pixel-space with the origin at the top-left and y growing
// downward.

func flipAnnotationsH(anns []types.Annotation, width int) []types.Annotation {
	w := float64(width)
	out := cloneAnnotations(anns)
	for i := range out {
		switch out[i].Type {
		case types.GeometryBox:
			out[i].BBox[0] = w - out[i].BBox[0] - out[i].BBox[2]
		case types.GeometryPolygon:
			for j := range out[i].Points {
				out[i].Points[j][0] = w - out[i].Points[j][0]
			}
		}
	}
	return out
}

func flipAnnotationsV(anns []types.Annotation, height int) []types.Annotation {
	h := float64(height)
	out := cloneAnnotations(anns)
	for i := range out {
		switch out[i].Type {
		case types.GeometryBox:
			out[i].BBox[1] = h - out[i].BBox[1] - out[i].BBox[3]
		case types.GeometryPolygon:
			for j := range out[i].Points {
				out[i].Points[j][1] = h - out[i].Points[j][1]
			}
		}
	}
	return out
}

// ScaleAnnotations scales annotation geometry by independent x/y factors.
// Used when the baseline resize changes output dimensions.
func ScaleAnnotations(anns []types.Annotation, sx, sy float64) []types.Annotation {
	if sx == 1 && sy == 1 {
		return anns
	}
	out := cloneAnnotations(anns)
	for i := range out {
		switch out[i].Type {
		case types.GeometryBox:
			out[i].BBox[0] *= sx
			out[i].BBox[1] *= sy
			out[i].BBox[2] *= sx
			out[i].BBox[3] *= sy
		case types.GeometryPolygon:
			for j := range out[i].Points {
				out[i].Points[j][0] *= sx
				out[i].Points[j][1] *= sy
			}
		}
	}
	return out
}

// rotateAnnotations maps annotations through a counter-clockwise rotation of
// angle degrees about the image center, onto the expanded destination
// canvas. Boxes are rotated corner-wise and re-fit as axis-aligned boxes.
func rotateAnnotations(anns []types.Annotation, angle float64, srcW, srcH, dstW, dstH int) []types.Annotation {
	rad := angle * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	scx, scy := float64(srcW)/2, float64(srcH)/2
	dcx, dcy := float64(dstW)/2, float64(dstH)/2

	rotate := func(x, y float64) (float64, float64) {
		dx, dy := x-scx, y-scy
		// y grows downward, so a visually counter-clockwise rotation negates
		// the usual sign on sin.
		return dcx + dx*cos + dy*sin, dcy - dx*sin + dy*cos
	}

	out := cloneAnnotations(anns)
	for i := range out {
		switch out[i].Type {
		case types.GeometryBox:
			x, y, w, h := out[i].BBox[0], out[i].BBox[1], out[i].BBox[2], out[i].BBox[3]
			corners := [4][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
			minX, minY := math.Inf(1), math.Inf(1)
			maxX, maxY := math.Inf(-1), math.Inf(-1)
			for _, c := range corners {
				rx, ry := rotate(c[0], c[1])
				minX, maxX = math.Min(minX, rx), math.Max(maxX, rx)
				minY, maxY = math.Min(minY, ry), math.Max(maxY, ry)
			}
			out[i].BBox = [4]float64{minX, minY, maxX - minX, maxY - minY}
		case types.GeometryPolygon:
			for j := range out[i].Points {
				rx, ry := rotate(out[i].Points[j][0], out[i].Points[j][1])
				out[i].Points[j] = [2]float64{rx, ry}
			}
		}
	}
	return out
}
