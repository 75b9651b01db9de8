package schema

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/visionforge/visionforge-backend/internal/platform/logger"
	"github.com/visionforge/visionforge-backend/internal/types"
)

// Schema turns a project's enabled transformations into an ordered, bounded
// list of combination plans per image. Generation runs in priority tiers
// (user/single values, auto values, random filler) and the result is sampled
// down to the configured images-per-original target.
type Schema struct {
	tools    []tool
	dual     []tool
	single   []tool
	sampling types.SamplingConfig
	rng      *rand.Rand
	log      *logger.Logger
}

// tool is one enabled, non-baseline transformation with its parameter column
// resolved into the fixed/dual tagged union.
type tool struct {
	toolType   string
	orderIndex int
	value      types.ParameterValue
}

// New resolves and classifies the given transformations. The baseline resize
// tool and disabled rows are excluded up front, so no generated combination
// can ever contain them.
func New(transformations []*types.Transformation, sampling types.SamplingConfig, log *logger.Logger) (*Schema, error) {
	s := &Schema{
		sampling: sampling,
		log:      log.With("component", "TransformationSchema"),
	}

	for _, tr := range transformations {
		if tr == nil || !tr.Enabled || tr.ToolType == types.BaselineToolType {
			continue
		}
		value, err := types.ResolveParameters(tr.ToolType, tr.Parameters)
		if err != nil {
			return nil, fmt.Errorf("resolve parameters for %s: %w", tr.ToolType, err)
		}
		s.tools = append(s.tools, tool{
			toolType:   tr.ToolType,
			orderIndex: tr.OrderIndex,
			value:      value,
		})
	}
	sort.SliceStable(s.tools, func(i, j int) bool {
		return s.tools[i].orderIndex < s.tools[j].orderIndex
	})

	for _, t := range s.tools {
		if t.value.IsDual() {
			s.dual = append(s.dual, t)
		} else {
			s.single = append(s.single, t)
		}
	}

	if sampling.Seed != nil {
		s.rng = rand.New(rand.NewSource(*sampling.Seed))
	} else {
		s.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return s, nil
}

// candidate is a combination before sampling assigns order numbers.
type candidate struct {
	transformations map[string]types.Params
	priority        string
}

// Generate produces the sampled, ordered combination plans for one image.
// With no enabled transformations it returns a single empty combination so
// the caller still emits the original image.
func (s *Schema) Generate(imageID uuid.UUID) []types.CombinationPlan {
	var candidates []candidate
	if len(s.dual) > 0 {
		candidates = s.generateDualValue()
	} else {
		candidates = s.generateSingleValue()
	}

	if len(candidates) == 0 {
		candidates = []candidate{{
			transformations: map[string]types.Params{},
			priority:        types.PriorityRegular,
		}}
	}

	candidates = s.sample(candidates)

	plans := make([]types.CombinationPlan, 0, len(candidates))
	for i, c := range candidates {
		plans = append(plans, types.CombinationPlan{
			ConfigID:        fmt.Sprintf("%s-c%d", shortID(imageID), i+1),
			ImageID:         imageID,
			Transformations: c.transformations,
			Order:           i + 1,
			PriorityType:    c.priority,
		})
	}
	return plans
}

// generateDualValue builds the three priority tiers of dual-value mode:
// user/single values first, derived auto values second, then random filler
// drawn from mixed combinations while slots remain.
func (s *Schema) generateDualValue() []candidate {
	var out []candidate

	// Tier 1: the user value of every tool, dual and single alike, in
	// order_index order.
	for _, t := range s.tools {
		priority := types.PrioritySingleValue
		if t.value.IsDual() {
			priority = types.PriorityUserValue
		}
		out = append(out, candidate{
			transformations: map[string]types.Params{t.toolType: t.value.User},
			priority:        priority,
		})
	}

	// Tier 2: the derived opposite of every dual tool, same ordering.
	for _, t := range s.dual {
		out = append(out, candidate{
			transformations: map[string]types.Params{t.toolType: t.value.Auto},
			priority:        types.PriorityAutoValue,
		})
	}

	// Tier 3: random filler, only while slots remain below the target.
	remaining := s.sampling.ImagesPerOriginal - len(out)
	if remaining > 0 {
		pool := s.fillerPool()
		s.rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
		if remaining < len(pool) {
			pool = pool[:remaining]
		}
		out = append(out, pool...)
	}
	return out
}

// fillerPool enumerates the tier-3 candidate combinations in their defined
// build order. The all-user, all-auto and mixed-pair branches require at
// least two dual tools; the dual-with-single branch has no such threshold.
func (s *Schema) fillerPool() []candidate {
	var pool []candidate

	if len(s.dual) >= 2 {
		allUser := make(map[string]types.Params, len(s.dual))
		allAuto := make(map[string]types.Params, len(s.dual))
		for _, t := range s.dual {
			allUser[t.toolType] = t.value.User
			allAuto[t.toolType] = t.value.Auto
		}
		pool = append(pool,
			candidate{transformations: allUser, priority: types.PriorityCombination},
			candidate{transformations: allAuto, priority: types.PriorityCombination},
		)

		for i, ti := range s.dual {
			for j, tj := range s.dual {
				if i == j {
					continue
				}
				pool = append(pool, candidate{
					transformations: map[string]types.Params{
						ti.toolType: ti.value.User,
						tj.toolType: tj.value.Auto,
					},
					priority: types.PriorityCombination,
				})
			}
		}
	}

	for _, d := range s.dual {
		for _, sg := range s.single {
			pool = append(pool, candidate{
				transformations: map[string]types.Params{
					d.toolType:  d.value.User,
					sg.toolType: sg.value.User,
				},
				priority: types.PriorityCombination,
			})
			pool = append(pool, candidate{
				transformations: map[string]types.Params{
					d.toolType:  d.value.Auto,
					sg.toolType: sg.value.User,
				},
				priority: types.PriorityCombination,
			})
		}
	}
	return pool
}

// generateSingleValue builds single-value mode: each tool alone, then every
// multi-tool subset of size 2..N.
func (s *Schema) generateSingleValue() []candidate {
	var out []candidate
	for _, t := range s.tools {
		out = append(out, candidate{
			transformations: map[string]types.Params{t.toolType: t.value.User},
			priority:        types.PrioritySingleValue,
		})
	}

	n := len(s.tools)
	for r := 2; r <= n; r++ {
		forEachSubset(n, r, func(indices []int) {
			combo := make(map[string]types.Params, r)
			for _, idx := range indices {
				t := s.tools[idx]
				combo[t.toolType] = t.value.User
			}
			out = append(out, candidate{
				transformations: combo,
				priority:        types.PriorityCombination,
			})
		})
	}
	return out
}

// forEachSubset visits every r-subset of {0..n-1} in lexicographic order.
func forEachSubset(n, r int, visit func(indices []int)) {
	if r > n || r <= 0 {
		return
	}
	indices := make([]int, r)
	for i := range indices {
		indices[i] = i
	}
	for {
		visit(indices)
		// Advance to the next subset.
		i := r - 1
		for i >= 0 && indices[i] == n-r+i {
			i--
		}
		if i < 0 {
			return
		}
		indices[i]++
		for j := i + 1; j < r; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
}

func shortID(id uuid.UUID) string {
	str := id.String()
	if len(str) > 8 {
		return str[:8]
	}
	return str
}
