package progression

import (
	"slices"
	"strings"

	"github.com/cory-johannsen/rpgrules/internal/game/stats"
)

// Distribute splits pool points across stats in proportion to weights.
// Each stat first receives floor(pool × weight / total); leftover points are
// handed out one at a time by descending weight, ties broken by stat name.
// Stats with no positive weight receive nothing. When no stat carries a
// positive weight the pool is spread evenly across all six.
//
// Postcondition: the returned values sum to pool (for pool >= 0).
func Distribute(pool int, weights map[stats.Name]int) map[stats.Name]int {
	out := make(map[stats.Name]int)
	if pool <= 0 {
		return out
	}

	var names []stats.Name
	total := 0
	for n, w := range weights {
		if w > 0 {
			names = append(names, n)
			total += w
		}
	}
	if total == 0 {
		weights = make(map[stats.Name]int, len(stats.Names))
		for _, n := range stats.Names {
			weights[n] = 1
		}
		names = slices.Clone(stats.Names)
		total = len(names)
	}

	slices.SortFunc(names, func(a, b stats.Name) int {
		if wa, wb := weights[a], weights[b]; wa != wb {
			return wb - wa
		}
		return strings.Compare(string(a), string(b))
	})

	given := 0
	for _, n := range names {
		share := pool * weights[n] / total
		if share > 0 {
			out[n] = share
			given += share
		}
	}
	for i := 0; given < pool; i = (i + 1) % len(names) {
		out[names[i]]++
		given++
	}
	return out
}
