package param

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortWords is returned when too few words remain to decode a value.
var ErrShortWords = errors.New("not enough parameter words")

// Scalar is the set of Go types that can be carried as filter parameters.
type Scalar interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

// Codec converts scalars to and from parameter words for one host byte order.
type Codec struct {
	Order binary.ByteOrder
}

// Host is the codec for the byte order of the running process.
var Host = Codec{Order: binary.NativeEndian}

// EncodeWide splits an 8-byte value into its (low, high) parameter words.
func (c Codec) EncodeWide(v uint64) (lo, hi uint32) {
	var mem [8]byte
	c.Order.PutUint64(mem[:], v)
	mem = Fix8(mem, c.Order, false)
	return c.Order.Uint32(mem[0:4]), c.Order.Uint32(mem[4:8])
}

// DecodeWide joins a (low, high) word pair back into an 8-byte value.
func (c Codec) DecodeWide(lo, hi uint32) uint64 {
	var mem [8]byte
	c.Order.PutUint32(mem[0:4], lo)
	c.Order.PutUint32(mem[4:8], hi)
	mem = Fix8(mem, c.Order, true)
	return c.Order.Uint64(mem[:])
}

// Encode converts v to parameter words using the host codec.
func Encode[T Scalar](v T) []uint32 {
	return EncodeWith(Host, v)
}

// Decode reads a value of type T from the front of words using the host codec.
func Decode[T Scalar](words []uint32) (T, error) {
	return DecodeWith[T](Host, words)
}

// EncodeWith converts v to parameter words using codec c.
func EncodeWith[T Scalar](c Codec, v T) []uint32 {
	switch x := any(v).(type) {
	case int8:
		return []uint32{uint32(uint8(x))}
	case uint8:
		return []uint32{uint32(x)}
	case int16:
		return []uint32{uint32(uint16(x))}
	case uint16:
		return []uint32{uint32(x)}
	case int32:
		return []uint32{uint32(x)}
	case uint32:
		return []uint32{x}
	case float32:
		return []uint32{math.Float32bits(x)}
	case int64:
		lo, hi := c.EncodeWide(uint64(x))
		return []uint32{lo, hi}
	case uint64:
		lo, hi := c.EncodeWide(x)
		return []uint32{lo, hi}
	case float64:
		lo, hi := c.EncodeWide(math.Float64bits(x))
		return []uint32{lo, hi}
	}
	return nil
}

// DecodeWith reads a value of type T from the front of words using codec c.
func DecodeWith[T Scalar](c Codec, words []uint32) (T, error) {
	var zero T
	need := 1
	switch any(zero).(type) {
	case int64, uint64, float64:
		need = 2
	}
	if len(words) < need {
		return zero, fmt.Errorf("decoding %T: %w (have %d, need %d)", zero, ErrShortWords, len(words), need)
	}

	var out any
	switch any(zero).(type) {
	case int8:
		out = int8(uint8(words[0]))
	case uint8:
		out = uint8(words[0])
	case int16:
		out = int16(uint16(words[0]))
	case uint16:
		out = uint16(words[0])
	case int32:
		out = int32(words[0])
	case uint32:
		out = words[0]
	case float32:
		out = math.Float32frombits(words[0])
	case int64:
		out = int64(c.DecodeWide(words[0], words[1]))
	case uint64:
		out = c.DecodeWide(words[0], words[1])
	case float64:
		out = math.Float64frombits(c.DecodeWide(words[0], words[1]))
	}
	return out.(T), nil
}
