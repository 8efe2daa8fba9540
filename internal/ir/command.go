package ir

import (
	"context"
	"fmt"
)

// CaptureSource delivers one completed alternating raw capture, starting on
// a pulse, as microsecond durations. Implementations own all hardware
// concerns (edge detection, glitch filtering, frame termination); the
// engine only sees the materialized sequence.
type CaptureSource interface {
	Capture(ctx context.Context) ([]int64, error)
}

// Emitter plays back a signal sequence on an opaque output channel at the
// given carrier frequency. Implementations own wave scheduling and timing;
// the engine never interprets the channel identifier.
type Emitter interface {
	Emit(channel string, seq []Signal, carrierKHz float64) error
}

// Command is one captured, replayable IR command: the raw capture, and once
// normalized, the canonical sequence with its class assignments. The
// transition from raw to normalized is one-way but can be re-run, for
// example with a different tolerance or reference profile.
type Command struct {
	Name        string
	Description string

	// Raw is the capture as measured, validated to alternate
	// pulse, gap, ..., pulse.
	Raw []Signal

	// Normalized, Classes, PulseClasses and GapClasses are populated by
	// Normalize or NormalizeWith. Classes is parallel to Raw; an
	// assignment list is only meaningful next to the class lists it was
	// produced from.
	Normalized   []Signal
	Classes      []*SignalClass
	PulseClasses []*SignalClass
	GapClasses   []*SignalClass
}

// NewCommand validates the raw duration list and wraps it into a command.
func NewCommand(name string, lengths []int64, description string) (*Command, error) {
	seq := SignalsFromLengths(lengths)
	if err := ValidateSequence(seq); err != nil {
		return nil, fmt.Errorf("command %q: %w", name, err)
	}
	return &Command{Name: name, Description: description, Raw: seq}, nil
}

// Receive captures a fresh command from a capture source and validates it.
func Receive(ctx context.Context, name, description string, src CaptureSource) (*Command, error) {
	lengths, err := src.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture command %q: %w", name, err)
	}
	return NewCommand(name, lengths, description)
}

// Normalize classifies this command's own capture with the given tolerance
// and rewrites it onto class representatives under the default policy. The
// classes are local to this call; nothing leaks between commands.
func (c *Command) Normalize(tolerance float64) error {
	pulses, gaps, err := ParseSequence(c.Raw, tolerance)
	if err != nil {
		return fmt.Errorf("command %q: %w", c.Name, err)
	}
	return c.NormalizeWith(pulses, gaps)
}

// NormalizeWith applies an externally supplied reference profile, for
// example classes built once from a known-good capture of the same remote,
// to this command's raw sequence. Durations outside every reference class
// fail with a ClassificationError.
func (c *Command) NormalizeWith(pulses, gaps []*SignalClass) error {
	normalized, assigned, err := NormalizeSequence(c.Raw, pulses, gaps, DefaultPolicy)
	if err != nil {
		return fmt.Errorf("command %q: %w", c.Name, err)
	}
	c.Normalized = normalized
	c.Classes = assigned
	c.PulseClasses = pulses
	c.GapClasses = gaps
	return nil
}

// IsNormalized reports whether the command carries a normalized sequence.
func (c *Command) IsNormalized() bool {
	return len(c.Normalized) > 0
}

// ReplaySequence is the sequence an emitter should play: the normalized
// sequence when present, otherwise the raw capture.
func (c *Command) ReplaySequence() []Signal {
	if c.IsNormalized() {
		return c.Normalized
	}
	return c.Raw
}

func (c *Command) String() string {
	state := "raw"
	if c.IsNormalized() {
		state = "normalized"
	}
	return fmt.Sprintf("Command(%q, %d signals, %s)", c.Name, len(c.Raw), state)
}
