// Package capture materializes raw IR timing sequences from hardware
// sources. The classification engine consumes completed sequences only;
// everything about how edges were measured stays on this side of the
// boundary.
package capture

import (
	"context"
	"errors"
)

// Source delivers one completed alternating raw capture, starting on a
// pulse, as microsecond durations.
type Source interface {
	Capture(ctx context.Context) ([]int64, error)
}

// ErrNoCapture is returned when a source runs out of input before a
// complete frame arrives.
var ErrNoCapture = errors.New("no capture received")

// MockSource replays canned sequences, one per Capture call. Used in tests
// and dev mode.
type MockSource struct {
	Sequences [][]int64
	calls     int
}

// Capture returns the next canned sequence, or ErrNoCapture when exhausted.
func (m *MockSource) Capture(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.calls >= len(m.Sequences) {
		return nil, ErrNoCapture
	}
	seq := m.Sequences[m.calls]
	m.calls++
	return append([]int64(nil), seq...), nil
}
