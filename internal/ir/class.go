package ir

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// RepresentativePolicy selects which summary statistic of a class stands in
// for its members when a capture is normalized.
type RepresentativePolicy string

const (
	// PolicyIntMean is the integer floor of the class mean. Default.
	PolicyIntMean RepresentativePolicy = "int_mean"
	// PolicyMean is the unrounded arithmetic mean. Representative exposes
	// it exactly; materializing it into an integer signal length floors it.
	PolicyMean RepresentativePolicy = "mean"
	// PolicyMode is the most frequent member duration.
	PolicyMode RepresentativePolicy = "mode"
	// PolicyMin is the shortest member duration.
	PolicyMin RepresentativePolicy = "min"
	// PolicyMax is the longest member duration.
	PolicyMax RepresentativePolicy = "max"
)

// DefaultPolicy is the representative policy used when none is specified.
const DefaultPolicy = PolicyIntMean

// SignalClass is a cluster of same-kind durations treated as one logical
// symbol. A class is constructed once and never mutated; membership is pure
// interval containment over [Min, Max].
//
// Lengths holds the grouped raw members in ascending order. Classes decoded
// from a stored record carry only the summary statistics (Lengths is nil,
// Count preserved); that is enough for containment tests and every
// representative policy, so decoded classes remain usable for normalizing
// fresh captures.
type SignalClass struct {
	Kind    Kind
	ID      int
	Lengths []int64
	Count   int
	Mean    float64
	Mode    int64
	Min     int64
	Max     int64
}

// NewSignalClass builds a class of the given kind from grouped raw
// durations. The id must be unique per kind within one classification pass.
func NewSignalClass(kind Kind, id int, lengths []int64) (*SignalClass, error) {
	if len(lengths) == 0 {
		return nil, &ValidationError{Reason: "signal class needs at least one member", Index: -1}
	}

	members := slices.Clone(lengths)
	slices.Sort(members)

	floats := make([]float64, len(members))
	for i, l := range members {
		floats[i] = float64(l)
	}
	mode, _ := stat.Mode(floats, nil)

	return &SignalClass{
		Kind:    kind,
		ID:      id,
		Lengths: members,
		Count:   len(members),
		Mean:    stat.Mean(floats, nil),
		Mode:    int64(mode),
		Min:     members[0],
		Max:     members[len(members)-1],
	}, nil
}

// Contains reports whether a duration falls inside the class interval.
func (c *SignalClass) Contains(length int64) bool {
	return length >= c.Min && length <= c.Max
}

// Range is the spread of the class interval in microseconds.
func (c *SignalClass) Range() int64 {
	return c.Max - c.Min
}

// Representative returns the canonical value of the class under the given
// policy. PolicyMean is the only policy that can produce a non-integer.
func (c *SignalClass) Representative(policy RepresentativePolicy) (float64, error) {
	switch policy {
	case PolicyIntMean:
		return math.Floor(c.Mean), nil
	case PolicyMean:
		return c.Mean, nil
	case PolicyMode:
		return float64(c.Mode), nil
	case PolicyMin:
		return float64(c.Min), nil
	case PolicyMax:
		return float64(c.Max), nil
	default:
		return 0, fmt.Errorf("unrecognized representative policy %q", policy)
	}
}

// RepresentativeLength is Representative floored into an integer
// microsecond length, as stored in normalized sequences.
func (c *SignalClass) RepresentativeLength(policy RepresentativePolicy) (int64, error) {
	rep, err := c.Representative(policy)
	if err != nil {
		return 0, err
	}
	return int64(math.Floor(rep)), nil
}

func (c *SignalClass) String() string {
	return fmt.Sprintf("%s-class(id=%d, %d..%dus, n=%d)", c.Kind, c.ID, c.Min, c.Max, c.Count)
}
