package ir

// classIDAllocator hands out sequential class ids per kind for a single
// classification pass. Each ParseSequence call uses its own allocator, so
// concurrent classifications never share id state.
type classIDAllocator struct {
	next [2]int
}

func (a *classIDAllocator) nextID(k Kind) int {
	id := a.next[k]
	a.next[k]++
	return id
}

// matchPolicy controls which containing class wins when the chained
// tolerance of GroupSignals produces overlapping class intervals.
type matchPolicy int

const (
	// matchLastContaining keeps the long-standing scan behavior: the last
	// containing class in list order wins.
	matchLastContaining matchPolicy = iota
	// matchFirstContaining stops at the first containing class. Not used
	// as a default; kept so the alternative is nameable in tests.
	matchFirstContaining
)

// defaultMatchPolicy is pinned by TestNormalizeOverlappingClassesLastWins.
// Switching it to matchFirstContaining would silently change the replay
// timing of any capture whose class intervals overlap.
const defaultMatchPolicy = matchLastContaining

// ParseSequence splits an alternating capture into its pulse and gap
// subsequences, clusters each independently with the same tolerance, and
// wraps the groups into signal classes. The returned lists are ordered
// ascending by representative value, with ids assigned sequentially per
// kind within this call.
func ParseSequence(seq []Signal, tolerance float64) (pulses, gaps []*SignalClass, err error) {
	if err := ValidateSequence(seq); err != nil {
		return nil, nil, err
	}

	var pulseLens, gapLens []int64
	for _, s := range seq {
		if s.Kind == Pulse {
			pulseLens = append(pulseLens, s.Length)
		} else {
			gapLens = append(gapLens, s.Length)
		}
	}

	var alloc classIDAllocator

	pulseGroups, err := GroupSignals(pulseLens, tolerance)
	if err != nil {
		return nil, nil, err
	}
	for _, group := range pulseGroups {
		c, err := NewSignalClass(Pulse, alloc.nextID(Pulse), group)
		if err != nil {
			return nil, nil, err
		}
		pulses = append(pulses, c)
	}

	// A single-pulse capture has no gaps to classify.
	if len(gapLens) > 0 {
		gapGroups, err := GroupSignals(gapLens, tolerance)
		if err != nil {
			return nil, nil, err
		}
		for _, group := range gapGroups {
			c, err := NewSignalClass(Gap, alloc.nextID(Gap), group)
			if err != nil {
				return nil, nil, err
			}
			gaps = append(gaps, c)
		}
	}

	return pulses, gaps, nil
}

// NormalizeSequence rewrites a raw capture onto class representatives. Each
// signal is matched against the class list of its kind by interval
// containment; the class lists may come from a different capture than seq,
// in which case a duration outside every known interval fails with a
// ClassificationError naming the offending signal.
//
// Returns the normalized sequence and the parallel class assignment list.
func NormalizeSequence(seq []Signal, pulses, gaps []*SignalClass, policy RepresentativePolicy) ([]Signal, []*SignalClass, error) {
	if err := ValidateSequence(seq); err != nil {
		return nil, nil, err
	}

	normalized := make([]Signal, len(seq))
	assigned := make([]*SignalClass, len(seq))

	for i, s := range seq {
		classes := pulses
		if s.Kind == Gap {
			classes = gaps
		}

		var match *SignalClass
		for _, c := range classes {
			if !c.Contains(s.Length) {
				continue
			}
			match = c
			if defaultMatchPolicy == matchFirstContaining {
				break
			}
		}
		if match == nil {
			return nil, nil, &ClassificationError{Signal: s, Index: i}
		}

		rep, err := match.RepresentativeLength(policy)
		if err != nil {
			return nil, nil, err
		}
		normalized[i] = Signal{Kind: s.Kind, Length: rep}
		assigned[i] = match
	}

	return normalized, assigned, nil
}
