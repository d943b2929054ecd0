package filter

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// DefaultZstdLevel is used when no level parameter is given.
const DefaultZstdLevel = 3

// Zstd implements the Zstandard compression filter.
type Zstd struct {
	level int
}

// NewZstd creates a new Zstandard filter.
// Params: [0] = compression level, read as a signed 32-bit value
func NewZstd(params []uint32) *Zstd {
	level := DefaultZstdLevel
	if len(params) > 0 {
		level = int(int32(params[0]))
	}
	return &Zstd{level: level}
}

func (f *Zstd) ID() uint32 {
	return IDZstd
}

// Level returns the requested compression level.
func (f *Zstd) Level() int {
	return f.level
}

func (f *Zstd) Encode(input []byte) ([]byte, error) {
	// Levels at or below zero select the fastest encoder.
	level := zstd.SpeedFastest
	if f.level > 0 {
		level = zstd.EncoderLevelFromZstd(f.level)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	defer enc.Close()

	return enc.EncodeAll(input, make([]byte, 0, len(input))), nil
}

func (f *Zstd) Decode(input []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	output, err := dec.DecodeAll(input, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return output, nil
}
