// Package codec provides the serializers used for database snapshots.
//
// Snapshots record the codec name in their header, so a file written with
// one codec is always read back with the same one.
package codec

import "fmt"

// Codec marshals snapshot payloads.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used for new snapshots.
var Default Codec = GoJSON{}

// ByName returns the codec registered under name.
func ByName(name string) (Codec, bool) {
	switch name {
	case JSON{}.Name():
		return JSON{}, true
	case GoJSON{}.Name():
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustByName is like ByName but panics for unknown names.
func MustByName(name string) Codec {
	c, ok := ByName(name)
	if !ok {
		panic(fmt.Errorf("codec: unknown codec %q", name))
	}
	return c
}
