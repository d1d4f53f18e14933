// Package rank orders scored candidates and truncates to the review budget.
package rank

import (
	"sort"

	"xscout/internal/core"
)

// Select sorts candidates by score descending and keeps the top n. The sort
// is stable: ties keep their original input order, so runs are reproducible.
// The input slice is not modified.
func Select(candidates []core.ScoredCandidate, n int) []core.ScoredCandidate {
	sorted := make([]core.ScoredCandidate, len(candidates))
	copy(sorted, candidates)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
