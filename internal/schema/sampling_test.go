package schema

import (
	"fmt"
	"testing"

	"github.com/visionforge/visionforge-backend/internal/platform/logger"
	"github.com/visionforge/visionforge-backend/internal/types"
)

func testCandidates(n int) []candidate {
	out := make([]candidate, n)
	for i := range out {
		out[i] = candidate{
			transformations: map[string]types.Params{
				fmt.Sprintf("tool%d", i): {"value": float64(i)},
			},
			priority: types.PriorityCombination,
		}
	}
	return out
}

func samplingSchema(t *testing.T, cfg types.SamplingConfig) *Schema {
	t.Helper()
	s, err := New(nil, cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func candidateIndex(t *testing.T, c candidate) int {
	t.Helper()
	for tool := range c.transformations {
		var idx int
		if _, err := fmt.Sscanf(tool, "tool%d", &idx); err == nil {
			return idx
		}
	}
	t.Fatalf("candidate without index: %#v", c)
	return -1
}

func TestSampleNoOpWhenUnderTarget(t *testing.T) {
	s := samplingSchema(t, types.SamplingConfig{ImagesPerOriginal: 10, Strategy: types.StrategyRandom, Seed: seeded(1)})
	in := testCandidates(5)
	out := s.sample(in)
	if len(out) != 5 {
		t.Fatalf("expected no-op, got %d of 5", len(out))
	}
}

func TestSampleIntelligentKeepsFixedPrefix(t *testing.T) {
	s := samplingSchema(t, types.SamplingConfig{
		ImagesPerOriginal: 5,
		Strategy:          types.StrategyIntelligent,
		FixedCombinations: 3,
		Seed:              seeded(9),
	})
	out := s.sample(testCandidates(20))
	if len(out) != 5 {
		t.Fatalf("expected 5, got %d", len(out))
	}
	for i := 0; i < 3; i++ {
		if candidateIndex(t, out[i]) != i {
			t.Fatalf("fixed prefix broken at %d: got index %d", i, candidateIndex(t, out[i]))
		}
	}
	// The sampled remainder keeps generation order.
	if candidateIndex(t, out[3]) >= candidateIndex(t, out[4]) {
		t.Fatalf("sampled remainder out of order: %d then %d",
			candidateIndex(t, out[3]), candidateIndex(t, out[4]))
	}
}

func TestSampleRandomSizeAndOrder(t *testing.T) {
	s := samplingSchema(t, types.SamplingConfig{
		ImagesPerOriginal: 4,
		Strategy:          types.StrategyRandom,
		Seed:              seeded(2),
	})
	out := s.sample(testCandidates(12))
	if len(out) != 4 {
		t.Fatalf("expected 4, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if candidateIndex(t, out[i-1]) >= candidateIndex(t, out[i]) {
			t.Fatalf("random sample should preserve relative order")
		}
	}
}

func TestSampleUniformStride(t *testing.T) {
	s := samplingSchema(t, types.SamplingConfig{
		ImagesPerOriginal: 4,
		Strategy:          types.StrategyUniform,
	})
	out := s.sample(testCandidates(12))
	if len(out) != 4 {
		t.Fatalf("expected 4, got %d", len(out))
	}
	// stride = floor(12/4) = 3: indices 0, 3, 6, 9.
	want := []int{0, 3, 6, 9}
	for i, w := range want {
		if candidateIndex(t, out[i]) != w {
			t.Fatalf("uniform index %d = %d, want %d", i, candidateIndex(t, out[i]), w)
		}
	}
}

func TestSampleUnknownStrategyFallsBackToIntelligent(t *testing.T) {
	s := samplingSchema(t, types.SamplingConfig{
		ImagesPerOriginal: 3,
		Strategy:          "definitely_not_a_strategy",
		FixedCombinations: 2,
		Seed:              seeded(4),
	})
	out := s.sample(testCandidates(10))
	if len(out) != 3 {
		t.Fatalf("expected 3, got %d", len(out))
	}
	if candidateIndex(t, out[0]) != 0 || candidateIndex(t, out[1]) != 1 {
		t.Fatalf("fallback should keep the fixed prefix")
	}
}

func TestValidateSampling(t *testing.T) {
	if ok, _ := ValidateSampling(types.SamplingConfig{ImagesPerOriginal: 4, FixedCombinations: 2}); !ok {
		t.Fatalf("valid config rejected")
	}
	if ok, problems := ValidateSampling(types.SamplingConfig{ImagesPerOriginal: 0}); ok || len(problems) == 0 {
		t.Fatalf("non-positive count accepted")
	}
	if ok, _ := ValidateSampling(types.SamplingConfig{ImagesPerOriginal: 2, FixedCombinations: 5}); ok {
		t.Fatalf("fixed > target accepted")
	}
	if ok, _ := ValidateSampling(types.SamplingConfig{ImagesPerOriginal: 2, FixedCombinations: -1}); ok {
		t.Fatalf("negative fixed accepted")
	}
}
