package filter

import "fmt"

// Well-known filter identifiers.
const (
	IDDeflate     uint32 = 1
	IDShuffle     uint32 = 2
	IDFletcher32  uint32 = 3
	IDSzip        uint32 = 4
	IDNBit        uint32 = 5
	IDScaleOffset uint32 = 6
	IDZstd        uint32 = 32015
)

// Codec is the interface implemented by all filter codecs.
type Codec interface {
	// ID returns the filter identifier.
	ID() uint32

	// Encode transforms raw chunk bytes to their stored form.
	Encode(input []byte) ([]byte, error)

	// Decode transforms stored chunk bytes back to raw form.
	Decode(input []byte) ([]byte, error)
}

// Factory builds a codec from a filter's parameter words.
type Factory func(params []uint32) (Codec, error)

// Builtin maps the identifiers this package implements to their factories.
var Builtin = map[uint32]Factory{
	IDDeflate:    func(p []uint32) (Codec, error) { return NewDeflate(p) },
	IDShuffle:    func(p []uint32) (Codec, error) { return NewShuffle(p), nil },
	IDFletcher32: func(p []uint32) (Codec, error) { return NewFletcher32(p), nil },
	IDZstd:       func(p []uint32) (Codec, error) { return NewZstd(p), nil },
}

// names maps known filter IDs to their names for better error messages.
var names = map[uint32]string{
	IDDeflate:     "deflate",
	IDShuffle:     "shuffle",
	IDFletcher32:  "fletcher32",
	IDSzip:        "szip",
	IDNBit:        "nbit",
	IDScaleOffset: "scaleoffset",
	IDZstd:        "zstd",
}

// Name returns the conventional name of a filter, or "" if unknown.
func Name(id uint32) string {
	return names[id]
}

// New creates a builtin codec.
func New(id uint32, params []uint32) (Codec, error) {
	factory, ok := Builtin[id]
	if !ok {
		if name, known := names[id]; known {
			return nil, fmt.Errorf("%s filter (ID %d) has no codec", name, id)
		}
		return nil, fmt.Errorf("unsupported filter ID: %d", id)
	}
	return factory(params)
}
