package irdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/banshee-data/ircodec/internal/ir"
)

var captureLengths = []int64{
	9000, 4500,
	560, 1690, 548, 565, 571, 1702, 553, 560,
	560,
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ircodec.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testSet(t *testing.T, name string) *ir.CommandSet {
	t.Helper()
	set := ir.NewCommandSet(name, "test remote", "gpio:17", "gpio:27")
	power, err := ir.NewCommand("power", captureLengths, "power toggle")
	if err != nil {
		t.Fatal(err)
	}
	if err := power.Normalize(ir.DefaultTolerance); err != nil {
		t.Fatal(err)
	}
	set.Add(power)
	return set
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	set := testSet(t, "tv")
	if err := store.SaveSet(ctx, set); err != nil {
		t.Fatalf("SaveSet() error = %v", err)
	}

	loaded, err := store.LoadSet(ctx, "tv")
	if err != nil {
		t.Fatalf("LoadSet() error = %v", err)
	}

	if loaded.Name != set.Name || loaded.Description != set.Description {
		t.Errorf("metadata = %q/%q", loaded.Name, loaded.Description)
	}
	if loaded.EmitterChannel != "gpio:17" || loaded.ReceiverChannel != "gpio:27" {
		t.Errorf("channels = %q/%q", loaded.EmitterChannel, loaded.ReceiverChannel)
	}

	power, ok := loaded.Get("power")
	if !ok {
		t.Fatal("loaded set lost command power")
	}
	if !power.IsNormalized() {
		t.Error("loaded command lost its normalized sequence")
	}
	if len(power.Raw) != len(captureLengths) {
		t.Errorf("raw length = %d, want %d", len(power.Raw), len(captureLengths))
	}
}

func TestSaveSetReplacesContents(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	set := testSet(t, "tv")
	if err := store.SaveSet(ctx, set); err != nil {
		t.Fatal(err)
	}

	infos, err := store.ListSets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	firstID := infos[0].SetID

	// Drop the only command and add another; re-save must replace, not merge.
	if err := set.Remove("power"); err != nil {
		t.Fatal(err)
	}
	mute, err := ir.NewCommand("mute", captureLengths, "")
	if err != nil {
		t.Fatal(err)
	}
	set.Add(mute)
	set.Description = "updated"
	if err := store.SaveSet(ctx, set); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadSet(ctx, "tv")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := loaded.Get("power"); ok {
		t.Error("replaced save kept stale command power")
	}
	if _, ok := loaded.Get("mute"); !ok {
		t.Error("replaced save lost command mute")
	}
	if loaded.Description != "updated" {
		t.Errorf("description = %q, want updated", loaded.Description)
	}

	infos, err = store.ListSets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 {
		t.Fatalf("ListSets() count = %d, want 1", len(infos))
	}
	if infos[0].SetID != firstID {
		t.Error("set id changed across saves")
	}
	if infos[0].CommandCount != 1 {
		t.Errorf("command count = %d, want 1", infos[0].CommandCount)
	}
}

func TestListSetsOrdered(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"stereo", "aircon", "tv"} {
		if err := store.SaveSet(ctx, testSet(t, name)); err != nil {
			t.Fatal(err)
		}
	}

	infos, err := store.ListSets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"aircon", "stereo", "tv"}
	if len(infos) != len(want) {
		t.Fatalf("count = %d, want %d", len(infos), len(want))
	}
	for i, info := range infos {
		if info.Name != want[i] {
			t.Errorf("position %d: name = %q, want %q", i, info.Name, want[i])
		}
		if info.SetID == "" {
			t.Errorf("set %q has empty id", info.Name)
		}
	}
}

func TestLoadMissingSet(t *testing.T) {
	store := openTestStore(t)
	_, err := store.LoadSet(context.Background(), "absent")
	if !errors.Is(err, ErrSetNotFound) {
		t.Errorf("LoadSet(absent) error = %v, want ErrSetNotFound", err)
	}
}

func TestDeleteSet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveSet(ctx, testSet(t, "tv")); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteSet(ctx, "tv"); err != nil {
		t.Fatalf("DeleteSet() error = %v", err)
	}
	if _, err := store.LoadSet(ctx, "tv"); !errors.Is(err, ErrSetNotFound) {
		t.Errorf("LoadSet after delete error = %v, want ErrSetNotFound", err)
	}
	if err := store.DeleteSet(ctx, "tv"); !errors.Is(err, ErrSetNotFound) {
		t.Errorf("second DeleteSet error = %v, want ErrSetNotFound", err)
	}
}

// TestOpenIsIdempotent re-opens an existing database; migrations must not
// fail on an already-migrated schema.
func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ircodec.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SaveSet(context.Background(), testSet(t, "tv")); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer store.Close()
	if _, err := store.LoadSet(context.Background(), "tv"); err != nil {
		t.Errorf("LoadSet after reopen error = %v", err)
	}
}
