package codec

import (
	"encoding/json"
	"io"

	"github.com/banshee-data/ircodec/internal/ir"
)

type jsonCodec struct{}

func (jsonCodec) Format() string { return "json" }

func (jsonCodec) Encode(w io.Writer, rec ir.CommandSetRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func (jsonCodec) Decode(r io.Reader) (ir.CommandSetRecord, error) {
	var rec ir.CommandSetRecord
	dec := json.NewDecoder(r)
	if err := dec.Decode(&rec); err != nil {
		return ir.CommandSetRecord{}, err
	}
	return rec, nil
}
