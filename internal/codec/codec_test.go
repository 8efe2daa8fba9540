package codec

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/ircodec/internal/ir"
)

var captureLengths = []int64{
	9000, 4500,
	560, 1690, 548, 565, 571, 1702, 553, 560,
	560,
}

func testSet(t *testing.T) *ir.CommandSet {
	t.Helper()
	set := ir.NewCommandSet("tv", "living room TV", "gpio:17", "gpio:27")

	power, err := ir.NewCommand("power", captureLengths, "power toggle")
	require.NoError(t, err)
	require.NoError(t, power.Normalize(ir.DefaultTolerance))
	set.Add(power)

	mute, err := ir.NewCommand("mute", captureLengths, "mute toggle")
	require.NoError(t, err)
	set.Add(mute)

	return set
}

func TestRoundTrip(t *testing.T) {
	for _, format := range Formats() {
		t.Run(format, func(t *testing.T) {
			set := testSet(t)

			var buf bytes.Buffer
			require.NoError(t, EncodeSet(&buf, set, format))

			decoded, err := DecodeSet(&buf, format)
			require.NoError(t, err)

			assert.Equal(t, set.Name, decoded.Name)
			assert.Equal(t, set.Description, decoded.Description)
			assert.Equal(t, set.EmitterChannel, decoded.EmitterChannel)
			assert.Equal(t, set.ReceiverChannel, decoded.ReceiverChannel)
			assert.Equal(t, set.Names(), decoded.Names())

			origPower, _ := set.Get("power")
			power, ok := decoded.Get("power")
			require.True(t, ok)
			assert.Equal(t, origPower.Raw, power.Raw)
			assert.Equal(t, origPower.Normalized, power.Normalized)
			assert.True(t, power.IsNormalized())
			require.Len(t, power.Classes, len(origPower.Classes))
			for i, cls := range power.Classes {
				orig := origPower.Classes[i]
				assert.Equal(t, orig.Kind, cls.Kind)
				assert.Equal(t, orig.ID, cls.ID)
				assert.Equal(t, orig.Min, cls.Min)
				assert.Equal(t, orig.Max, cls.Max)
				assert.Equal(t, orig.Mean, cls.Mean)
				assert.Equal(t, orig.Mode, cls.Mode)
				assert.Equal(t, orig.Count, cls.Count)
			}

			mute, ok := decoded.Get("mute")
			require.True(t, ok)
			assert.False(t, mute.IsNormalized())
		})
	}
}

func TestKindNamesOnTheWire(t *testing.T) {
	for _, format := range Formats() {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, EncodeSet(&buf, testSet(t), format))
			out := buf.String()
			assert.Contains(t, out, "pulse")
			assert.Contains(t, out, "gap")
			assert.Contains(t, out, "emitter_channel")
		})
	}
}

func TestUnsupportedFormat(t *testing.T) {
	for _, name := range []string{"xml", "toml", "", "pickle"} {
		t.Run("format "+name, func(t *testing.T) {
			_, err := ForFormat(name)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedFormat))
		})
	}

	// No partial writes or reads for unknown formats.
	var buf bytes.Buffer
	err := EncodeSet(&buf, testSet(t), "xml")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Zero(t, buf.Len())

	_, err = DecodeSet(strings.NewReader("<set/>"), "xml")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatNameIsCaseInsensitive(t *testing.T) {
	for _, name := range []string{"JSON", "Yaml", "YML"} {
		if _, err := ForFormat(name); err != nil {
			t.Errorf("ForFormat(%q) error = %v", name, err)
		}
	}
}

func TestSaveLoadFile(t *testing.T) {
	set := testSet(t)
	path := filepath.Join(t.TempDir(), "tv.json")

	require.NoError(t, SaveSet(path, set, "json"))
	loaded, err := LoadSet(path, "json")
	require.NoError(t, err)
	assert.Equal(t, set.Names(), loaded.Names())

	_, err = LoadSet(filepath.Join(t.TempDir(), "missing.json"), "json")
	assert.Error(t, err)

	require.ErrorIs(t, SaveSet(path, set, "csv"), ErrUnsupportedFormat)
	_, err = LoadSet(path, "csv")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
