package codec

import gojson "github.com/goccy/go-json"

// GoJSON writes snapshot payloads with github.com/goccy/go-json. It is the
// Default codec, and its bytes decode under JSON as well.
type GoJSON struct{}

// Marshal encodes a snapshot payload.
func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

// Unmarshal decodes a snapshot payload into v.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name is the codec tag stored in a snapshot header.
func (GoJSON) Name() string { return "go-json" }
