package playback

import (
	"log"

	"github.com/banshee-data/ircodec/internal/ir"
)

// EmitCall records one Emit invocation on a MockEmitter.
type EmitCall struct {
	Channel    string
	Seq        []ir.Signal
	CarrierKHz float64
}

// MockEmitter validates sequences into wave plans but drives no hardware.
// Used in tests and dev mode.
type MockEmitter struct {
	Calls []EmitCall
	Err   error
}

// Emit implements ir.Emitter.
func (m *MockEmitter) Emit(channel string, seq []ir.Signal, carrierKHz float64) error {
	if m.Err != nil {
		return m.Err
	}
	if _, err := WavePlan(seq, carrierKHz); err != nil {
		return err
	}
	m.Calls = append(m.Calls, EmitCall{
		Channel:    channel,
		Seq:        append([]ir.Signal(nil), seq...),
		CarrierKHz: carrierKHz,
	})
	return nil
}

// LogEmitter computes the wave plan and logs a summary instead of
// transmitting. Useful on machines without an attached transmit daemon.
type LogEmitter struct{}

// Emit implements ir.Emitter.
func (LogEmitter) Emit(channel string, seq []ir.Signal, carrierKHz float64) error {
	steps, err := WavePlan(seq, carrierKHz)
	if err != nil {
		return err
	}
	log.Printf("would emit %d signals (%d wave steps, %dus total) on %s at %.1fkHz",
		len(seq), len(steps), PlanDuration(steps), channel, carrierKHz)
	return nil
}
