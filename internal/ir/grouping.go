package ir

import (
	"slices"
)

// DefaultTolerance is the relative tolerance used to decide whether two
// adjacent sorted durations belong to the same signal class.
const DefaultTolerance = 0.1

// GroupSignals partitions same-kind raw durations into groups of lengths
// close enough to count as one logical signal. The input is sorted ascending
// and scanned greedily: a candidate joins the current group when it is within
// tolerance of the immediately preceding sorted value, otherwise it opens a
// new group.
//
// The comparison is deliberately against the preceding element rather than
// the group minimum, so tolerance chains across a group: a run of closely
// spaced samples can drift well past (1+tolerance) of the group's first
// member as long as every adjacent step stays in tolerance. Replay timing of
// previously stored captures depends on this chaining; anchoring the
// comparison to the group minimum is a breaking change.
//
// The concatenation of the returned groups is exactly the sorted input.
// Empty input is rejected; a single duration yields one singleton group.
func GroupSignals(lengths []int64, tolerance float64) ([][]int64, error) {
	if len(lengths) == 0 {
		return nil, &ValidationError{Reason: "no signal lengths to group", Index: -1}
	}

	sorted := slices.Clone(lengths)
	slices.Sort(sorted)

	maxTol := 1 + tolerance
	groups := [][]int64{{sorted[0]}}
	for i := 1; i < len(sorted); i++ {
		a, b := sorted[i-1], sorted[i]
		if float64(b) < float64(a)*maxTol {
			last := len(groups) - 1
			groups[last] = append(groups[last], b)
		} else {
			groups = append(groups, []int64{b})
		}
	}
	return groups, nil
}
