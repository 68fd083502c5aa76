package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/hupe1980/vecdb/codec"
)

// Magic identifies a snapshot stream.
const Magic = "VDBS"

// Version is the current envelope version. Version 1 payloads carry no
// IndexedPoints; their indexes are taken to cover every vector.
const Version uint16 = 2

var (
	// ErrBadMagic is returned when a stream does not start with Magic.
	ErrBadMagic = errors.New("snapshot: not a vecdb snapshot")

	// ErrUnsupportedVersion is returned for envelopes newer than Version.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")

	// ErrChecksum is returned when the payload checksum does not match.
	ErrChecksum = errors.New("snapshot: checksum mismatch")

	// ErrUnknownCodec is returned when the header names an unknown codec.
	ErrUnknownCodec = errors.New("snapshot: unknown codec")

	// ErrUnknownCompression is returned for unknown compression identifiers.
	ErrUnknownCompression = errors.New("snapshot: unknown compression")
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// SourceRun records that Count consecutive vectors came from Source.
type SourceRun struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// Collection is the persisted form of one collection, in insertion order.
type Collection struct {
	Name      string      `json:"name"`
	Dimension int         `json:"dimension"`
	Vectors   [][]float32 `json:"vectors"`
	Values    []string    `json:"values"`
	Sources   []SourceRun `json:"sources"`
	Indexed   bool        `json:"indexed"`

	// IndexedPoints is how many leading vectors the index covered. Vectors
	// after it were appended since the last build.
	IndexedPoints int `json:"indexed_points"`
}

// Len returns the number of stored vectors.
func (c *Collection) Len() int { return len(c.Vectors) }

// Validate checks the structural invariants of the collection.
func (c *Collection) Validate() error {
	if c.Name == "" {
		return errors.New("snapshot: collection without name")
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("snapshot: collection %q: invalid dimension %d", c.Name, c.Dimension)
	}
	if len(c.Vectors) != len(c.Values) {
		return fmt.Errorf("snapshot: collection %q: %d vectors but %d values", c.Name, len(c.Vectors), len(c.Values))
	}
	for i, v := range c.Vectors {
		if len(v) != c.Dimension {
			return fmt.Errorf("snapshot: collection %q: vector %d has dimension %d, want %d", c.Name, i, len(v), c.Dimension)
		}
	}

	total := 0
	for _, r := range c.Sources {
		if r.Count < 0 {
			return fmt.Errorf("snapshot: collection %q: negative source run", c.Name)
		}
		total += r.Count
	}
	if total != len(c.Vectors) {
		return fmt.Errorf("snapshot: collection %q: source runs cover %d of %d vectors", c.Name, total, len(c.Vectors))
	}

	if c.IndexedPoints < 0 || c.IndexedPoints > len(c.Vectors) {
		return fmt.Errorf("snapshot: collection %q: index covers %d of %d vectors", c.Name, c.IndexedPoints, len(c.Vectors))
	}
	if !c.Indexed && c.IndexedPoints != 0 {
		return fmt.Errorf("snapshot: collection %q: indexed points without index", c.Name)
	}

	return nil
}

// State is the persisted form of a database.
type State struct {
	Collections []Collection `json:"collections"`
}

// Header describes an encoded snapshot.
type Header struct {
	Version     uint16
	Compression Compression
	Codec       string
	RawLength   uint64
	Length      uint64
	Checksum    uint32
}

// Options configures Encode.
type Options struct {
	Codec       codec.Codec
	Compression Compression
}

// Encode writes st to w.
func Encode(w io.Writer, st *State, optFns ...func(o *Options)) (Header, error) {
	opts := Options{
		Codec:       codec.Default,
		Compression: CompressionNone,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	name := opts.Codec.Name()
	if len(name) > 255 {
		return Header{}, fmt.Errorf("snapshot: codec name too long: %q", name)
	}

	raw, err := opts.Codec.Marshal(st)
	if err != nil {
		return Header{}, fmt.Errorf("snapshot: marshal: %w", err)
	}

	payload, used, err := compress(raw, opts.Compression)
	if err != nil {
		return Header{}, fmt.Errorf("snapshot: compress: %w", err)
	}

	h := Header{
		Version:     Version,
		Compression: used,
		Codec:       name,
		RawLength:   uint64(len(raw)),
		Length:      uint64(len(payload)),
		Checksum:    crc32.Checksum(raw, castagnoli),
	}

	buf := make([]byte, 0, 4+2+1+1+len(name)+8+8+4)
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint16(buf, h.Version)
	buf = append(buf, byte(h.Compression), byte(len(name)))
	buf = append(buf, name...)
	buf = binary.LittleEndian.AppendUint64(buf, h.RawLength)
	buf = binary.LittleEndian.AppendUint64(buf, h.Length)
	buf = binary.LittleEndian.AppendUint32(buf, h.Checksum)

	if _, err := w.Write(buf); err != nil {
		return Header{}, fmt.Errorf("snapshot: write header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return Header{}, fmt.Errorf("snapshot: write payload: %w", err)
	}

	return h, nil
}

// ReadHeader reads and validates the envelope header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var fixed [8]byte // magic, version, compression, codecLen
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, ErrBadMagic
		}
		return Header{}, err
	}

	if string(fixed[:4]) != Magic {
		return Header{}, ErrBadMagic
	}

	h := Header{
		Version:     binary.LittleEndian.Uint16(fixed[4:6]),
		Compression: Compression(fixed[6]),
	}
	if h.Version == 0 || h.Version > Version {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Compression > CompressionZstd {
		return Header{}, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(h.Compression))
	}

	rest := make([]byte, int(fixed[7])+8+8+4)
	if _, err := io.ReadFull(r, rest); err != nil {
		return Header{}, fmt.Errorf("snapshot: read header: %w", err)
	}

	n := int(fixed[7])
	h.Codec = string(rest[:n])
	h.RawLength = binary.LittleEndian.Uint64(rest[n:])
	h.Length = binary.LittleEndian.Uint64(rest[n+8:])
	h.Checksum = binary.LittleEndian.Uint32(rest[n+16:])

	return h, nil
}

// Decode reads a snapshot from r.
func Decode(r io.Reader) (*State, Header, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, Header{}, err
	}

	c, ok := codec.ByName(h.Codec)
	if !ok {
		return nil, h, fmt.Errorf("%w: %q", ErrUnknownCodec, h.Codec)
	}

	payload, err := io.ReadAll(io.LimitReader(r, int64(h.Length)))
	if err != nil {
		return nil, h, fmt.Errorf("snapshot: read payload: %w", err)
	}
	if uint64(len(payload)) != h.Length {
		return nil, h, fmt.Errorf("snapshot: truncated payload: %w", io.ErrUnexpectedEOF)
	}

	raw, err := decompress(payload, h.Compression, h.RawLength)
	if err != nil {
		return nil, h, fmt.Errorf("snapshot: decompress: %w", err)
	}

	if crc32.Checksum(raw, castagnoli) != h.Checksum {
		return nil, h, ErrChecksum
	}

	st := &State{}
	if err := c.Unmarshal(raw, st); err != nil {
		return nil, h, fmt.Errorf("snapshot: unmarshal: %w", err)
	}

	for i := range st.Collections {
		c := &st.Collections[i]
		if h.Version < 2 && c.Indexed {
			c.IndexedPoints = c.Len()
		}
		if err := c.Validate(); err != nil {
			return nil, h, err
		}
	}

	return st, h, nil
}
