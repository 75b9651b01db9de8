package augment

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/visionforge/visionforge-backend/internal/platform/logger"
	"github.com/visionforge/visionforge-backend/internal/types"
)

// Output is one generated image from applying a combination. A combination
// normally yields one output, but a flip configured for both axes yields the
// horizontal, vertical and both-axes variants, so callers must range over
// the slice rather than assume 1:1.
type Output struct {
	Image       image.Image
	Tag         string
	Applied     []types.AppliedTransform
	Annotations []types.Annotation
}

// Applier applies one resolved combination to one image. Implementations
// must be deterministic: the same image and combination always produce the
// same outputs.
type Applier interface {
	Apply(img image.Image, annotations []types.Annotation, combination map[string]types.Params) ([]Output, error)
	ApplyBaseline(img image.Image, params types.Params) image.Image
}

type applier struct {
	log *logger.Logger
}

func NewApplier(baseLog *logger.Logger) Applier {
	return &applier{log: baseLog.With("component", "ImageApplier")}
}

// Tool application order. Geometry first so annotation mapping composes
// cleanly, photometric adjustments after, flips last because they multiply
// the output set.
var toolOrder = []string{
	"rotate",
	"brightness",
	"contrast",
	"saturation",
	"exposure",
	"blur",
	"sharpen",
	"grayscale",
	"noise",
}

func (a *applier) Apply(img image.Image, annotations []types.Annotation, combination map[string]types.Params) ([]Output, error) {
	current := img
	anns := cloneAnnotations(annotations)
	var applied []types.AppliedTransform
	var tags []string

	for _, tool := range toolOrder {
		params, ok := combination[tool]
		if !ok {
			continue
		}
		next, nextAnns, err := a.applyOne(tool, params, current, anns)
		if err != nil {
			return nil, fmt.Errorf("apply %s: %w", tool, err)
		}
		current = next
		anns = nextAnns
		applied = append(applied, types.AppliedTransform{ToolType: tool, Params: params})
		tags = append(tags, tool)
	}

	for tool := range combination {
		if !knownTool(tool) && tool != "flip" {
			return nil, fmt.Errorf("unknown transformation tool %q", tool)
		}
	}

	base := Output{
		Image:       current,
		Tag:         strings.Join(tags, "_"),
		Applied:     applied,
		Annotations: anns,
	}

	flipParams, hasFlip := combination["flip"]
	if !hasFlip {
		return []Output{base}, nil
	}
	return a.expandFlips(base, flipParams), nil
}

func (a *applier) applyOne(tool string, params types.Params, img image.Image, anns []types.Annotation) (image.Image, []types.Annotation, error) {
	switch tool {
	case "rotate":
		angle := types.ParamFloat(params, "angle", 0)
		rotated := imaging.Rotate(img, angle, color.NRGBA{A: 255})
		srcW, srcH := dims(img)
		dstW, dstH := dims(rotated)
		return rotated, rotateAnnotations(anns, angle, srcW, srcH, dstW, dstH), nil
	case "brightness":
		pct := types.ParamFloat(params, "percent", 0)
		return imaging.AdjustBrightness(img, pct), anns, nil
	case "contrast":
		pct := types.ParamFloat(params, "percent", 0)
		return imaging.AdjustContrast(img, pct), anns, nil
	case "saturation":
		pct := types.ParamFloat(params, "percent", 0)
		return imaging.AdjustSaturation(img, pct), anns, nil
	case "exposure":
		// Percent maps onto a gamma curve: +50 brightens, -50 darkens.
		pct := types.ParamFloat(params, "percent", 0)
		gamma := 1.0 + pct/100.0
		if gamma < 0.1 {
			gamma = 0.1
		}
		return imaging.AdjustGamma(img, gamma), anns, nil
	case "blur":
		sigma := types.ParamFloat(params, "sigma", 1)
		if sigma <= 0 {
			sigma = 1
		}
		return imaging.Blur(img, sigma), anns, nil
	case "sharpen":
		sigma := types.ParamFloat(params, "sigma", 1)
		if sigma <= 0 {
			sigma = 1
		}
		return imaging.Sharpen(img, sigma), anns, nil
	case "grayscale":
		return imaging.Grayscale(img), anns, nil
	case "noise":
		// Photometric-only tool without an imaging primitive; treated as a
		// grain overlay approximated by a mild sigmoid contrast bump.
		return imaging.AdjustSigmoid(img, 0.5, types.ParamFloat(params, "amount", 3)), anns, nil
	default:
		return nil, nil, fmt.Errorf("unsupported tool %q", tool)
	}
}

// expandFlips produces the flip variants requested by the flip parameters.
// Horizontal and vertical both set yields three outputs.
func (a *applier) expandFlips(base Output, params types.Params) []Output {
	horizontal := types.ParamBool(params, "horizontal")
	vertical := types.ParamBool(params, "vertical")
	if !horizontal && !vertical {
		return []Output{base}
	}

	w, h := dims(base.Image)
	var out []Output

	if horizontal {
		out = append(out, flipVariant(base, "fliph",
			imaging.FlipH(base.Image),
			flipAnnotationsH(base.Annotations, w),
			types.Params{"horizontal": true}))
	}
	if vertical {
		out = append(out, flipVariant(base, "flipv",
			imaging.FlipV(base.Image),
			flipAnnotationsV(base.Annotations, h),
			types.Params{"vertical": true}))
	}
	if horizontal && vertical {
		out = append(out, flipVariant(base, "fliphv",
			imaging.FlipV(imaging.FlipH(base.Image)),
			flipAnnotationsV(flipAnnotationsH(base.Annotations, w), h),
			types.Params{"horizontal": true, "vertical": true}))
	}
	return out
}

func flipVariant(base Output, tag string, img image.Image, anns []types.Annotation, params types.Params) Output {
	applied := make([]types.AppliedTransform, len(base.Applied), len(base.Applied)+1)
	copy(applied, base.Applied)
	applied = append(applied, types.AppliedTransform{ToolType: "flip", Params: params})

	fullTag := tag
	if base.Tag != "" {
		fullTag = base.Tag + "_" + tag
	}
	return Output{Image: img, Tag: fullTag, Applied: applied, Annotations: anns}
}

// ApplyBaseline applies the reserved resize tool to an output image.
func (a *applier) ApplyBaseline(img image.Image, params types.Params) image.Image {
	width := int(types.ParamFloat(params, "width", 0))
	height := int(types.ParamFloat(params, "height", 0))
	if width <= 0 && height <= 0 {
		return img
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

func knownTool(tool string) bool {
	for _, t := range toolOrder {
		if t == tool {
			return true
		}
	}
	return false
}

func dims(img image.Image) (int, int) {
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func cloneAnnotations(anns []types.Annotation) []types.Annotation {
	if anns == nil {
		return nil
	}
	out := make([]types.Annotation, len(anns))
	for i, ann := range anns {
		out[i] = ann
		if ann.Points != nil {
			out[i].Points = append([][2]float64(nil), ann.Points...)
		}
	}
	return out
}
