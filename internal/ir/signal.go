// Package ir implements the classification and normalization engine for
// captured infrared remote-control signals. A capture is an alternating
// sequence of carrier-active ("pulse") and silent ("gap") intervals measured
// in microseconds. Repeated presses of the same button produce durations
// that vary with measurement jitter, so the engine clusters same-kind
// durations into signal classes and rewrites captures onto canonical class
// representatives for compact storage and consistent replay.
package ir

import (
	"fmt"
)

// Kind distinguishes the two interval types in an IR transmission.
type Kind int8

const (
	// Pulse is an interval where the IR carrier is active.
	Pulse Kind = iota
	// Gap is a silent interval between pulses.
	Gap
)

// String returns the lowercase wire name of the kind.
func (k Kind) String() string {
	switch k {
	case Pulse:
		return "pulse"
	case Gap:
		return "gap"
	default:
		return fmt.Sprintf("kind(%d)", int8(k))
	}
}

// ParseKind converts a wire name back into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "pulse":
		return Pulse, nil
	case "gap":
		return Gap, nil
	default:
		return 0, fmt.Errorf("unknown signal kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so Kind serializes as
// "pulse"/"gap" in both JSON and YAML records.
func (k Kind) MarshalText() ([]byte, error) {
	if k != Pulse && k != Gap {
		return nil, fmt.Errorf("cannot marshal unknown signal kind %d", int8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalYAML keeps the YAML encoding aligned with the JSON one.
func (k Kind) MarshalYAML() (interface{}, error) {
	if k != Pulse && k != Gap {
		return nil, fmt.Errorf("cannot marshal unknown signal kind %d", int8(k))
	}
	return k.String(), nil
}

// UnmarshalYAML implements the yaml.v3 obsolete-style unmarshaler, which
// keeps this package free of a direct yaml dependency.
func (k *Kind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := ParseKind(name)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Signal is one timed interval of a capture: a pulse or gap with a length in
// microseconds. Signals are plain values and are never mutated in place.
type Signal struct {
	Kind   Kind  `json:"kind" yaml:"kind"`
	Length int64 `json:"length" yaml:"length"`
}

func (s Signal) String() string {
	return fmt.Sprintf("%s(%dus)", s.Kind, s.Length)
}

// KindAt returns the kind expected at position i of a well-formed capture:
// even positions are pulses, odd positions are gaps.
func KindAt(i int) Kind {
	if i%2 == 0 {
		return Pulse
	}
	return Gap
}

// SignalsFromLengths converts a raw alternating duration list (as delivered
// by a capture source, starting on a pulse) into a typed signal sequence.
func SignalsFromLengths(lengths []int64) []Signal {
	seq := make([]Signal, len(lengths))
	for i, l := range lengths {
		seq[i] = Signal{Kind: KindAt(i), Length: l}
	}
	return seq
}

// ValidateSequence checks the shape invariant for a raw capture: the
// sequence alternates pulse, gap, ..., pulse (odd total count, starting and
// ending on a pulse) and every length is positive. Malformed sequences are
// rejected here, before any grouping or classification is attempted.
func ValidateSequence(seq []Signal) error {
	if len(seq) == 0 {
		return &ValidationError{Reason: "empty signal sequence", Index: -1}
	}
	if len(seq)%2 == 0 {
		return &ValidationError{
			Reason: fmt.Sprintf("sequence has even length %d; must start and end on a pulse", len(seq)),
			Index:  -1,
		}
	}
	for i, s := range seq {
		if want := KindAt(i); s.Kind != want {
			return &ValidationError{
				Reason: fmt.Sprintf("expected %s at position %d, got %s", want, i, s.Kind),
				Index:  i,
			}
		}
		if s.Length <= 0 {
			return &ValidationError{
				Reason: fmt.Sprintf("non-positive length %d at position %d", s.Length, i),
				Index:  i,
			}
		}
	}
	return nil
}
