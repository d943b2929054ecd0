// Package param encodes typed scalars into filter parameter words.
//
// Filter parameters travel as a sequence of unsigned 32-bit words. Values up
// to 32 bits wide occupy a single word; 8-byte values (int64, uint64,
// float64) occupy two adjacent words.
//
// # Narrow Values
//
// 8- and 16-bit values are masked to their declared width before widening,
// so a signed byte -17 becomes 0x000000EF rather than the sign-extended
// 0xFFFFFFEF:
//
//	words := param.Encode(int8(-17)) // []uint32{0x000000EF}
//
// # Wide Values
//
// An 8-byte value is placed in memory in host order, passed through [Fix8]
// and then read back as two host-order words. The result is always
// (low 32 bits, high 32 bits) regardless of host byte order, which is the
// layout filter implementations expect to find on disk.
//
// The byte order is a field of [Codec] so both layouts can be exercised on
// any build host. [Host] uses [binary.NativeEndian].
//
// # Key Types
//
//   - [Kind]: the scalar type named by a filter-spec suffix
//   - [Codec]: byte-order aware encoder/decoder
//   - [Scalar]: type constraint accepted by [Encode] and [Decode]
package param
