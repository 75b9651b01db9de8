package augment

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/visionforge/visionforge-backend/internal/platform/logger"
	"github.com/visionforge/visionforge-backend/internal/types"
)

func testImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 20), G: uint8(y * 20), B: 90, A: 255})
		}
	}
	return img
}

func TestApplySingleCombinationYieldsOneOutput(t *testing.T) {
	a := NewApplier(logger.NewNop())
	outputs, err := a.Apply(testImage(8, 8), nil, map[string]types.Params{
		"brightness": {"percent": 20.0},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(outputs))
	}
	if len(outputs[0].Applied) != 1 || outputs[0].Applied[0].ToolType != "brightness" {
		t.Fatalf("applied = %#v", outputs[0].Applied)
	}
}

func TestApplyBothAxisFlipYieldsThreeVariants(t *testing.T) {
	a := NewApplier(logger.NewNop())
	outputs, err := a.Apply(testImage(8, 6), nil, map[string]types.Params{
		"flip": {"horizontal": true, "vertical": true},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(outputs) != 3 {
		t.Fatalf("expected horizontal, vertical and both variants, got %d", len(outputs))
	}
	tags := map[string]bool{}
	for _, out := range outputs {
		tags[out.Tag] = true
	}
	for _, want := range []string{"fliph", "flipv", "fliphv"} {
		if !tags[want] {
			t.Fatalf("missing variant %s in %v", want, tags)
		}
	}
}

func TestApplyUnknownToolFails(t *testing.T) {
	a := NewApplier(logger.NewNop())
	if _, err := a.Apply(testImage(4, 4), nil, map[string]types.Params{"teleport": {}}); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
}

func TestFlipAnnotationsHorizontal(t *testing.T) {
	anns := []types.Annotation{
		{ClassName: "cat", Type: types.GeometryBox, BBox: [4]float64{10, 20, 30, 40}},
	}
	out := flipAnnotationsH(anns, 100)
	// x' = width - x - w = 100 - 10 - 30.
	if out[0].BBox[0] != 60 {
		t.Fatalf("flipped x = %v", out[0].BBox[0])
	}
	if out[0].BBox[1] != 20 || out[0].BBox[2] != 30 || out[0].BBox[3] != 40 {
		t.Fatalf("flip changed unrelated fields: %v", out[0].BBox)
	}
	// Source annotations stay untouched.
	if anns[0].BBox[0] != 10 {
		t.Fatalf("source mutated: %v", anns[0].BBox)
	}
}

func TestFlipAnnotationsVerticalPolygon(t *testing.T) {
	anns := []types.Annotation{
		{ClassName: "dog", Type: types.GeometryPolygon, Points: [][2]float64{{5, 10}, {20, 30}}},
	}
	out := flipAnnotationsV(anns, 50)
	if out[0].Points[0][1] != 40 || out[0].Points[1][1] != 20 {
		t.Fatalf("flipped points = %v", out[0].Points)
	}
	if out[0].Points[0][0] != 5 || out[0].Points[1][0] != 20 {
		t.Fatalf("x coordinates must not change: %v", out[0].Points)
	}
}

func TestRotateAnnotationsQuarterTurn(t *testing.T) {
	// A 90 degree counter-clockwise rotation of a 100x50 image produces a
	// 50x100 canvas; a box hugging the top-left corner ends up hugging the
	// bottom-left corner.
	anns := []types.Annotation{
		{ClassName: "cat", Type: types.GeometryBox, BBox: [4]float64{0, 0, 10, 20}},
	}
	out := rotateAnnotations(anns, 90, 100, 50, 50, 100)
	box := out[0].BBox
	if math.Abs(box[0]-0) > 1e-6 || math.Abs(box[1]-90) > 1e-6 {
		t.Fatalf("rotated origin = (%v, %v)", box[0], box[1])
	}
	if math.Abs(box[2]-20) > 1e-6 || math.Abs(box[3]-10) > 1e-6 {
		t.Fatalf("rotated size = (%v, %v)", box[2], box[3])
	}
}

func TestScaleAnnotations(t *testing.T) {
	anns := []types.Annotation{
		{ClassName: "cat", Type: types.GeometryBox, BBox: [4]float64{10, 20, 30, 40}},
		{ClassName: "dog", Type: types.GeometryPolygon, Points: [][2]float64{{4, 8}}},
	}
	out := ScaleAnnotations(anns, 0.5, 2)
	if out[0].BBox != [4]float64{5, 40, 15, 80} {
		t.Fatalf("scaled box = %v", out[0].BBox)
	}
	if out[1].Points[0] != [2]float64{2, 16} {
		t.Fatalf("scaled point = %v", out[1].Points[0])
	}
}

func TestApplyDeterministic(t *testing.T) {
	a := NewApplier(logger.NewNop())
	combo := map[string]types.Params{
		"rotate":     {"angle": 15.0},
		"brightness": {"percent": 10.0},
	}
	img := testImage(16, 16)

	first, err := a.Apply(img, nil, combo)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	second, err := a.Apply(img, nil, combo)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	b1, b2 := first[0].Image.Bounds(), second[0].Image.Bounds()
	if b1 != b2 {
		t.Fatalf("bounds differ: %v vs %v", b1, b2)
	}
	for y := b1.Min.Y; y < b1.Max.Y; y++ {
		for x := b1.Min.X; x < b1.Max.X; x++ {
			if first[0].Image.At(x, y) != second[0].Image.At(x, y) {
				t.Fatalf("pixel (%d,%d) differs between runs", x, y)
			}
		}
	}
}

func TestApplyBaselineResize(t *testing.T) {
	a := NewApplier(logger.NewNop())
	out := a.ApplyBaseline(testImage(64, 32), types.Params{"width": 16.0, "height": 8.0})
	if out.Bounds().Dx() != 16 || out.Bounds().Dy() != 8 {
		t.Fatalf("resized to %v", out.Bounds())
	}
	// Without dimensions the baseline is a no-op.
	same := a.ApplyBaseline(testImage(10, 10), types.Params{})
	if same.Bounds().Dx() != 10 {
		t.Fatalf("no-op baseline resized to %v", same.Bounds())
	}
}
