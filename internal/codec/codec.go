// Package codec persists command sets in a closed set of formats. A format
// outside the set is an explicit error; there is no best-effort decoding.
package codec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/banshee-data/ircodec/internal/ir"
)

// ErrUnsupportedFormat is returned for any format outside the supported set.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Codec encodes and decodes command set records in one format.
type Codec interface {
	Format() string
	Encode(w io.Writer, rec ir.CommandSetRecord) error
	Decode(r io.Reader) (ir.CommandSetRecord, error)
}

// ForFormat resolves a format name (case-insensitive) to its codec.
func ForFormat(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "json":
		return jsonCodec{}, nil
	case "yaml", "yml":
		return yamlCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Formats lists the supported format names.
func Formats() []string {
	return []string{"json", "yaml"}
}

// EncodeSet writes a command set to w in the given format.
func EncodeSet(w io.Writer, set *ir.CommandSet, format string) error {
	c, err := ForFormat(format)
	if err != nil {
		return err
	}
	if err := c.Encode(w, set.ToRecord()); err != nil {
		return fmt.Errorf("encode command set %q as %s: %w", set.Name, c.Format(), err)
	}
	return nil
}

// DecodeSet reads a command set from r in the given format.
func DecodeSet(r io.Reader, format string) (*ir.CommandSet, error) {
	c, err := ForFormat(format)
	if err != nil {
		return nil, err
	}
	rec, err := c.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s command set: %w", c.Format(), err)
	}
	return ir.CommandSetFromRecord(rec)
}

// SaveSet writes a command set to path. The format must be named
// explicitly; it is not inferred from the file extension.
func SaveSet(path string, set *ir.CommandSet, format string) error {
	if _, err := ForFormat(format); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save command set %q: %w", set.Name, err)
	}
	defer f.Close()

	if err := EncodeSet(f, set, format); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save command set %q: %w", set.Name, err)
	}
	return nil
}

// LoadSet reads a command set from path in the given format.
func LoadSet(path, format string) (*ir.CommandSet, error) {
	if _, err := ForFormat(format); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load command set: %w", err)
	}
	defer f.Close()

	return DecodeSet(f, format)
}
