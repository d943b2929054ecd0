package filter

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// DefaultDeflateLevel is used when no level parameter is given.
const DefaultDeflateLevel = 6

// Deflate implements the DEFLATE filter (zlib compression).
type Deflate struct {
	level int
}

// NewDeflate creates a new DEFLATE filter.
// Params: [0] = compression level (0-9, or default if empty)
func NewDeflate(params []uint32) (*Deflate, error) {
	level := DefaultDeflateLevel
	if len(params) > 0 {
		if params[0] > 9 {
			return nil, fmt.Errorf("deflate level %d out of range 0-9", params[0])
		}
		level = int(params[0])
	}
	return &Deflate{level: level}, nil
}

func (f *Deflate) ID() uint32 {
	return IDDeflate
}

// Level returns the compression level.
func (f *Deflate) Level() int {
	return f.level
}

func (f *Deflate) Encode(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, f.level)
	if err != nil {
		return nil, fmt.Errorf("zlib writer: %w", err)
	}
	if _, err := w.Write(input); err != nil {
		w.Close()
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	return buf.Bytes(), nil
}

func (f *Deflate) Decode(input []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("zlib reader: %w", err)
	}
	defer r.Close()

	output, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zlib decompress: %w", err)
	}

	return output, nil
}
