// Package playback turns normalized signal sequences into the wave plans a
// transmit daemon schedules onto hardware. Pulses become modulated carrier
// square waves at the requested frequency; gaps become flat off delays. The
// package computes plans only; pin modes, wave caching and timing chains
// belong to the daemon consuming them.
package playback

import (
	"fmt"
	"math"

	"github.com/banshee-data/ircodec/internal/ir"
)

// DefaultCarrierKHz is the carrier frequency of most consumer IR remotes.
const DefaultCarrierKHz = 38.0

// WaveStep is one output step: drive the emitter on or off for Micros
// microseconds.
type WaveStep struct {
	On     bool
	Micros int64
}

// CarrierWave expands one pulse of the given length into alternating on/off
// half-cycles of the carrier. Cycle boundaries are rounded to integer
// microsecond targets cycle by cycle, so rounding error does not accumulate
// across a long pulse: the steps always sum to the rounded cycle grid, not
// to cycles * floor(cycle length).
func CarrierWave(carrierKHz float64, lengthMicros int64) ([]WaveStep, error) {
	if carrierKHz <= 0 {
		return nil, fmt.Errorf("carrier frequency must be positive, got %v kHz", carrierKHz)
	}
	if lengthMicros <= 0 {
		return nil, fmt.Errorf("pulse length must be positive, got %d", lengthMicros)
	}

	microsPerCycle := 1000.0 / carrierKHz
	cycles := int(math.Round(float64(lengthMicros) / microsPerCycle))
	on := int64(math.Round(microsPerCycle / 2))

	steps := make([]WaveStep, 0, 2*cycles)
	var sofar int64
	for c := 0; c < cycles; c++ {
		target := int64(math.Round(float64(c+1) * microsPerCycle))
		sofar += on
		off := target - sofar
		sofar += off

		steps = append(steps, WaveStep{On: true, Micros: on})
		steps = append(steps, WaveStep{On: false, Micros: off})
	}
	return steps, nil
}

// WavePlan expands a full signal sequence into output steps: carrier bursts
// for pulses, flat off delays for gaps.
func WavePlan(seq []ir.Signal, carrierKHz float64) ([]WaveStep, error) {
	if err := ir.ValidateSequence(seq); err != nil {
		return nil, err
	}

	var steps []WaveStep
	for _, s := range seq {
		if s.Kind == ir.Pulse {
			burst, err := CarrierWave(carrierKHz, s.Length)
			if err != nil {
				return nil, err
			}
			steps = append(steps, burst...)
		} else {
			steps = append(steps, WaveStep{On: false, Micros: s.Length})
		}
	}
	return steps, nil
}

// PlanDuration sums a plan's step delays in microseconds.
func PlanDuration(steps []WaveStep) int64 {
	var total int64
	for _, s := range steps {
		total += s.Micros
	}
	return total
}
