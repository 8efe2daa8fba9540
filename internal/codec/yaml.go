package codec

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/ircodec/internal/ir"
)

type yamlCodec struct{}

func (yamlCodec) Format() string { return "yaml" }

func (yamlCodec) Encode(w io.Writer, rec ir.CommandSetRecord) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return err
	}
	return enc.Close()
}

func (yamlCodec) Decode(r io.Reader) (ir.CommandSetRecord, error) {
	var rec ir.CommandSetRecord
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&rec); err != nil {
		return ir.CommandSetRecord{}, err
	}
	return rec, nil
}
