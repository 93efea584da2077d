package jsonfile

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/tidwall/jsonc"
)

// Codec encodes a whole collection file.
type Codec interface {
	Name() string
	Ext() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// NewCodec returns the codec registered under name: "json" or "cbor".
func NewCodec(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "cbor":
		return newCBORCodec()
	default:
		return nil, fmt.Errorf("unknown store encoding %q", name)
	}
}

// JSONCodec writes indented JSON. Reads tolerate comments and trailing
// commas, so hand-edited files still load.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }
func (JSONCodec) Ext() string  { return ".json" }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(jsonc.ToJSON(data), v)
}

// CBORCodec writes deterministic CBOR with RFC 3339 timestamps.
type CBORCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORCodec() (CBORCodec, error) {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	enc, err := opts.EncMode()
	if err != nil {
		return CBORCodec{}, fmt.Errorf("cbor encoder: %w", err)
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return CBORCodec{}, fmt.Errorf("cbor decoder: %w", err)
	}
	return CBORCodec{enc: enc, dec: dec}, nil
}

func (CBORCodec) Name() string { return "cbor" }
func (CBORCodec) Ext() string  { return ".cbor" }

func (c CBORCodec) Marshal(v any) ([]byte, error)      { return c.enc.Marshal(v) }
func (c CBORCodec) Unmarshal(data []byte, v any) error { return c.dec.Unmarshal(data, v) }
