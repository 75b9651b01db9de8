package schema

import (
	"fmt"

	"github.com/visionforge/visionforge-backend/internal/types"
)

// ValidateSampling checks a sampling config for structural problems. It
// returns all findings at once and never fails mid-pipeline; callers decide
// whether to reject the release up front.
func ValidateSampling(cfg types.SamplingConfig) (bool, []string) {
	var problems []string

	if cfg.ImagesPerOriginal <= 0 {
		problems = append(problems, fmt.Sprintf("images_per_original must be positive, got %d", cfg.ImagesPerOriginal))
	}
	if cfg.FixedCombinations < 0 {
		problems = append(problems, fmt.Sprintf("fixed_combinations must not be negative, got %d", cfg.FixedCombinations))
	}
	if cfg.ImagesPerOriginal > 0 && cfg.FixedCombinations > cfg.ImagesPerOriginal {
		problems = append(problems, fmt.Sprintf("fixed_combinations (%d) exceeds images_per_original (%d)",
			cfg.FixedCombinations, cfg.ImagesPerOriginal))
	}
	switch cfg.Strategy {
	case "", types.StrategyIntelligent, types.StrategyRandom, types.StrategyUniform:
	default:
		// Unknown strategies fall back to intelligent at sampling time, so
		// this is informational rather than fatal.
	}

	return len(problems) == 0, problems
}

// ValidateTransformations checks the transformation rows a schema would be
// built from.
func ValidateTransformations(transformations []*types.Transformation) (bool, []string) {
	var problems []string
	for i, tr := range transformations {
		if tr == nil {
			problems = append(problems, fmt.Sprintf("transformation %d is nil", i))
			continue
		}
		if tr.ToolType == "" {
			problems = append(problems, fmt.Sprintf("transformation %d has no tool_type", i))
		}
	}
	return len(problems) == 0, problems
}
