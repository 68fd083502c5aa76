// Package snapshot implements the binary envelope used to persist a
// database.
//
// # Format
//
// All integers are little endian.
//
//	magic        [4]byte  "VDBS"
//	version      uint16
//	compression  uint8    (0 none, 1 lz4, 2 zstd)
//	codecLen     uint8
//	codec        [codecLen]byte
//	rawLength    uint64   uncompressed payload size
//	length       uint64   stored payload size
//	checksum     uint32   CRC-32 (Castagnoli) of the uncompressed payload
//	payload      [length]byte
//
// The payload is a State marshaled with the named codec. Indexes are not
// part of the payload; collections flagged as indexed are rebuilt on load.
package snapshot
