package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func normalizedTestCommand(t *testing.T) *Command {
	t.Helper()
	cmd, err := NewCommand("power", testLengths, "power toggle")
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Normalize(DefaultTolerance); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestCommandRecordRoundTrip(t *testing.T) {
	cmd := normalizedTestCommand(t)

	rec := cmd.Record()
	if len(rec.SignalClassList) != len(cmd.Raw) {
		t.Fatalf("class list length = %d, want %d (parallel to signals)", len(rec.SignalClassList), len(cmd.Raw))
	}

	decoded, err := CommandFromRecord(rec)
	if err != nil {
		t.Fatalf("CommandFromRecord() error = %v", err)
	}

	if decoded.Name != cmd.Name || decoded.Description != cmd.Description {
		t.Errorf("metadata = %q/%q, want %q/%q", decoded.Name, decoded.Description, cmd.Name, cmd.Description)
	}
	if diff := cmp.Diff(cmd.Raw, decoded.Raw); diff != "" {
		t.Errorf("raw sequence mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(cmd.Normalized, decoded.Normalized); diff != "" {
		t.Errorf("normalized sequence mismatch (-want +got):\n%s", diff)
	}

	// Repeated descriptors collapse back to one shared class per (kind, id).
	seen := map[*SignalClass]bool{}
	for i, cls := range decoded.Classes {
		orig := cmd.Classes[i]
		if cls.Kind != orig.Kind || cls.ID != orig.ID {
			t.Errorf("position %d: class %v/%d, want %v/%d", i, cls.Kind, cls.ID, orig.Kind, orig.ID)
		}
		if cls.Min != orig.Min || cls.Max != orig.Max || cls.Mean != orig.Mean ||
			cls.Mode != orig.Mode || cls.Count != orig.Count {
			t.Errorf("position %d: class stats %+v, want %+v", i, cls, orig)
		}
		seen[cls] = true
	}
	if want := len(cmd.PulseClasses) + len(cmd.GapClasses); len(seen) != want {
		t.Errorf("decoded unique classes = %d, want %d", len(seen), want)
	}
	if len(decoded.PulseClasses) != len(cmd.PulseClasses) {
		t.Errorf("pulse classes = %d, want %d", len(decoded.PulseClasses), len(cmd.PulseClasses))
	}
	if len(decoded.GapClasses) != len(cmd.GapClasses) {
		t.Errorf("gap classes = %d, want %d", len(decoded.GapClasses), len(cmd.GapClasses))
	}
}

// TestDecodedClassesNormalizeFreshCapture is the point of the serialization
// contract: a profile decoded from storage, without the original raw
// capture, cleans a fresh capture of the same remote.
func TestDecodedClassesNormalizeFreshCapture(t *testing.T) {
	decoded, err := CommandFromRecord(normalizedTestCommand(t).Record())
	if err != nil {
		t.Fatal(err)
	}

	fresh, err := NewCommand("power-again", []int64{
		9000, 4500,
		560, 1690, 560, 560, 560, 1700, 555, 562,
		566,
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := fresh.NormalizeWith(decoded.PulseClasses, decoded.GapClasses); err != nil {
		t.Fatalf("NormalizeWith(decoded profile) error = %v", err)
	}
}

func TestRawCommandRecordRoundTrip(t *testing.T) {
	cmd, err := NewCommand("unprocessed", testLengths, "")
	if err != nil {
		t.Fatal(err)
	}

	rec := cmd.Record()
	if rec.SignalClassList != nil {
		t.Error("raw command record must carry a null class list")
	}
	if rec.NormalizedList != nil {
		t.Error("raw command record must carry no normalized list")
	}

	decoded, err := CommandFromRecord(rec)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.IsNormalized() {
		t.Error("decoded raw command reports normalized")
	}
	if diff := cmp.Diff(cmd.Raw, decoded.Raw); diff != "" {
		t.Errorf("raw sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestCommandFromRecordRejectsCorrupt(t *testing.T) {
	good := normalizedTestCommand(t).Record()

	t.Run("truncated class list", func(t *testing.T) {
		rec := good
		rec.SignalClassList = rec.SignalClassList[:len(rec.SignalClassList)-1]
		if _, err := CommandFromRecord(rec); err == nil {
			t.Error("expected error for truncated class list")
		}
	})

	t.Run("kind mismatch", func(t *testing.T) {
		rec := good
		list := append([]ClassRecord(nil), good.SignalClassList...)
		list[0].Kind = Gap
		rec.SignalClassList = list
		if _, err := CommandFromRecord(rec); err == nil {
			t.Error("expected error for gap class at pulse position")
		}
	})

	t.Run("malformed signal list", func(t *testing.T) {
		rec := good
		rec.SignalList = rec.SignalList[:2]
		if _, err := CommandFromRecord(rec); err == nil {
			t.Error("expected error for even-length signal list")
		}
	})
}

func TestCommandSetRecordRoundTrip(t *testing.T) {
	set := NewCommandSet("tv", "living room TV", "gpio:17", "gpio:27")
	set.Add(normalizedTestCommand(t))
	raw, err := NewCommand("mute", testLengths, "mute toggle")
	if err != nil {
		t.Fatal(err)
	}
	set.Add(raw)

	decoded, err := CommandSetFromRecord(set.ToRecord())
	if err != nil {
		t.Fatalf("CommandSetFromRecord() error = %v", err)
	}

	if decoded.Name != set.Name || decoded.Description != set.Description {
		t.Errorf("metadata = %q/%q", decoded.Name, decoded.Description)
	}
	if decoded.EmitterChannel != "gpio:17" || decoded.ReceiverChannel != "gpio:27" {
		t.Errorf("channels = %q/%q", decoded.EmitterChannel, decoded.ReceiverChannel)
	}
	if diff := cmp.Diff(set.Names(), decoded.Names()); diff != "" {
		t.Errorf("command ids mismatch (-want +got):\n%s", diff)
	}

	power, ok := decoded.Get("power")
	if !ok {
		t.Fatal("decoded set lost command power")
	}
	if !power.IsNormalized() {
		t.Error("decoded power command lost its normalized sequence")
	}
	mute, ok := decoded.Get("mute")
	if !ok {
		t.Fatal("decoded set lost command mute")
	}
	if mute.IsNormalized() {
		t.Error("decoded mute command gained a normalized sequence")
	}
}
