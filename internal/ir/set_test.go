package ir

import (
	"context"
	"reflect"
	"testing"
)

type recordingEmitter struct {
	channel    string
	seq        []Signal
	carrierKHz float64
	calls      int
}

func (e *recordingEmitter) Emit(channel string, seq []Signal, carrierKHz float64) error {
	e.channel = channel
	e.seq = seq
	e.carrierKHz = carrierKHz
	e.calls++
	return nil
}

func TestCommandSetAddGetRemove(t *testing.T) {
	set := NewCommandSet("tv", "living room TV", "gpio:17", "gpio:27")

	power, err := NewCommand("power", testLengths, "")
	if err != nil {
		t.Fatal(err)
	}
	mute, err := NewCommand("mute", testLengths, "")
	if err != nil {
		t.Fatal(err)
	}
	set.Add(power)
	set.Add(mute)

	if got, ok := set.Get("power"); !ok || got != power {
		t.Errorf("Get(power) = %v, %v", got, ok)
	}
	if want := []string{"mute", "power"}; !reflect.DeepEqual(set.Names(), want) {
		t.Errorf("Names() = %v, want %v", set.Names(), want)
	}

	if err := set.Remove("mute"); err != nil {
		t.Errorf("Remove(mute) error = %v", err)
	}
	if err := set.Remove("mute"); err == nil {
		t.Error("Remove of absent command must fail")
	}
	if _, ok := set.Get("mute"); ok {
		t.Error("mute still present after Remove")
	}
}

func TestCommandSetRecord(t *testing.T) {
	set := NewCommandSet("tv", "", "gpio:17", "gpio:27")

	cmd, err := set.Record(context.Background(), "power", "power toggle", &stubSource{lengths: testLengths}, DefaultTolerance)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if !cmd.IsNormalized() {
		t.Error("recorded command must come back normalized")
	}
	if got, ok := set.Get("power"); !ok || got != cmd {
		t.Error("recorded command not stored in set")
	}
}

func TestCommandSetEmit(t *testing.T) {
	set := NewCommandSet("tv", "", "gpio:17", "gpio:27")
	cmd, err := NewCommand("power", testLengths, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Normalize(DefaultTolerance); err != nil {
		t.Fatal(err)
	}
	set.Add(cmd)

	emitter := &recordingEmitter{}
	if err := set.Emit("power", emitter, 38.0); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if emitter.calls != 1 {
		t.Fatalf("emitter calls = %d, want 1", emitter.calls)
	}
	if emitter.channel != "gpio:17" {
		t.Errorf("emitted on channel %q, want gpio:17", emitter.channel)
	}
	if emitter.carrierKHz != 38.0 {
		t.Errorf("carrier = %v, want 38.0", emitter.carrierKHz)
	}
	if !reflect.DeepEqual(emitter.seq, cmd.Normalized) {
		t.Error("emitted sequence is not the normalized sequence")
	}

	if err := set.Emit("absent", emitter, 38.0); err == nil {
		t.Error("Emit of absent command must fail")
	}
}
