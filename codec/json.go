package codec

import "encoding/json"

// JSON writes snapshot payloads with encoding/json.
//
// Pick it with vecdb.WithCodec when a snapshot has to be read by tools
// that only speak encoding/json semantics.
type JSON struct{}

// Marshal encodes a snapshot payload.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes a snapshot payload into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name is the codec tag stored in a snapshot header.
func (JSON) Name() string { return "json" }
