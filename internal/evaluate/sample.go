package evaluate

import (
	"math/rand"
	"sort"
)

// BalancedSample draws a dataset of at most size pairs with equal numbers
// of same and different pairs. Same pairs are spread evenly over pose
// categories and different pairs over category combinations; groups that
// run short are topped up round robin from the others. Pairs comparing an
// image with itself are dropped. The result is shuffled with rng.
func BalancedSample(pairs []LabeledPair, size int, rng *rand.Rand) []LabeledPair {
	var same, diff []LabeledPair
	for _, p := range pairs {
		if p.Image1.Path != "" && p.Image1.Path == p.Image2.Path {
			continue
		}
		if p.Same {
			same = append(same, p)
		} else {
			diff = append(diff, p)
		}
	}

	sameGroups := groupBy(same, func(p LabeledPair) string {
		return p.Image1.PoseAnswer
	})
	picked := allocate(sameGroups, min(size/2, len(same)), rng)

	diffGroups := groupBy(diff, func(p LabeledPair) string {
		a, b := p.Image1.PoseAnswer, p.Image2.PoseAnswer
		if b < a {
			a, b = b, a
		}
		return a + "|" + b
	})
	picked = append(picked, allocate(diffGroups, min(len(picked), len(diff)), rng)...)

	rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked
}

// groupBy buckets pairs by key, returning buckets in key order.
func groupBy(pairs []LabeledPair, key func(LabeledPair) string) [][]LabeledPair {
	buckets := make(map[string][]LabeledPair)
	for _, p := range pairs {
		k := key(p)
		buckets[k] = append(buckets[k], p)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][]LabeledPair, 0, len(keys))
	for _, k := range keys {
		out = append(out, buckets[k])
	}
	return out
}

// allocate takes an equal random share from each group, then fills up to
// target round robin from what is left.
func allocate(groups [][]LabeledPair, target int, rng *rand.Rand) []LabeledPair {
	if target <= 0 || len(groups) == 0 {
		return nil
	}

	share := max(1, target/len(groups))
	pools := make([][]LabeledPair, len(groups))
	out := make([]LabeledPair, 0, target)

	for i, g := range groups {
		pool := append([]LabeledPair(nil), g...)
		rng.Shuffle(len(pool), func(a, b int) {
			pool[a], pool[b] = pool[b], pool[a]
		})

		take := min(share, len(pool), target-len(out))
		out = append(out, pool[:take]...)
		pools[i] = pool[take:]
	}

	for len(out) < target {
		progressed := false
		for i := range pools {
			if len(out) == target {
				break
			}
			if len(pools[i]) == 0 {
				continue
			}
			out = append(out, pools[i][0])
			pools[i] = pools[i][1:]
			progressed = true
		}
		if !progressed {
			break
		}
	}

	return out
}
