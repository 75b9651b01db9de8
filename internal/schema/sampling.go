package schema

import (
	"sort"

	"github.com/visionforge/visionforge-backend/internal/types"
)

// sample reduces an oversized candidate list to the images-per-original
// target. Generation order is priority order, and every strategy preserves
// the relative order of whatever it keeps.
func (s *Schema) sample(candidates []candidate) []candidate {
	target := s.sampling.ImagesPerOriginal
	if target <= 0 || len(candidates) <= target {
		return candidates
	}

	switch s.sampling.Strategy {
	case types.StrategyIntelligent:
		return s.sampleIntelligent(candidates, target)
	case types.StrategyRandom:
		return s.sampleRandom(candidates, target)
	case types.StrategyUniform:
		return s.sampleUniform(candidates, target)
	default:
		s.log.Warn("Unknown sampling strategy, falling back to intelligent",
			"strategy", s.sampling.Strategy)
		return s.sampleIntelligent(candidates, target)
	}
}

// sampleIntelligent keeps the first FixedCombinations entries verbatim and
// fills the rest of the target with a uniform random pick of the remainder.
func (s *Schema) sampleIntelligent(candidates []candidate, target int) []candidate {
	fixed := s.sampling.FixedCombinations
	if fixed < 0 {
		fixed = 0
	}
	if fixed > target {
		fixed = target
	}
	if fixed > len(candidates) {
		fixed = len(candidates)
	}

	out := make([]candidate, 0, target)
	out = append(out, candidates[:fixed]...)

	rest := candidates[fixed:]
	picked := s.pickIndices(len(rest), target-fixed)
	for _, idx := range picked {
		out = append(out, rest[idx])
	}
	return out
}

func (s *Schema) sampleRandom(candidates []candidate, target int) []candidate {
	picked := s.pickIndices(len(candidates), target)
	out := make([]candidate, 0, len(picked))
	for _, idx := range picked {
		out = append(out, candidates[idx])
	}
	return out
}

// sampleUniform strides through the list, taking every k-th entry with
// k = floor(available / target), truncated to the target.
func (s *Schema) sampleUniform(candidates []candidate, target int) []candidate {
	stride := len(candidates) / target
	if stride < 1 {
		stride = 1
	}
	out := make([]candidate, 0, target)
	for i := 0; i < len(candidates) && len(out) < target; i += stride {
		out = append(out, candidates[i])
	}
	return out
}

// pickIndices draws count distinct indices from [0,n) uniformly at random
// and returns them in ascending order.
func (s *Schema) pickIndices(n, count int) []int {
	if count >= n {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	if count <= 0 {
		return nil
	}
	perm := s.rng.Perm(n)[:count]
	sort.Ints(perm)
	return perm
}
