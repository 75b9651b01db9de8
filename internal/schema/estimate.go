package schema

// EstimateCombinationCount predicts the number of combinations Generate
// would produce before sampling. It matches len(Generate(...)) exactly
// whenever the images-per-original target is large enough that sampling and
// the filler slot bound are no-ops. Used for capacity display and tests.
func (s *Schema) EstimateCombinationCount() int {
	if len(s.tools) == 0 {
		return 1
	}

	if len(s.dual) > 0 {
		count := len(s.tools) + len(s.dual)
		count += s.fillerPoolSize()
		return count
	}

	// Single-value mode: every tool alone plus every subset of size 2..N,
	// which together enumerate all non-empty subsets.
	n := len(s.tools)
	return (1 << n) - 1
}

func (s *Schema) fillerPoolSize() int {
	d, sg := len(s.dual), len(s.single)
	size := 0
	if d >= 2 {
		size += 2          // all-user and all-auto combos
		size += d * (d - 1) // ordered mixed pairs
	}
	size += 2 * d * sg
	return size
}
