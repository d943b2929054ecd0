package param

import "encoding/binary"

// Fix8 converts an 8-byte value between host memory layout and the
// canonical parameter layout.
//
// For little-endian hosts the two layouts are identical. For big-endian
// hosts encoding first reverses all eight bytes into little-endian order and
// then byte-swaps each 4-byte half; decoding swaps each half back and then
// reverses the eight bytes. The steps must run in exactly that order for
// Fix8(Fix8(x, o, false), o, true) to return x.
func Fix8(b [8]byte, order binary.ByteOrder, decode bool) [8]byte {
	if !isBigEndian(order) {
		return b
	}
	if decode {
		b = swap4(b)
		return reverse8(b)
	}
	b = reverse8(b)
	return swap4(b)
}

// isBigEndian reports whether order lays out the most significant byte first.
func isBigEndian(order binary.ByteOrder) bool {
	var probe [2]byte
	order.PutUint16(probe[:], 0x0102)
	return probe[0] == 0x01
}

func reverse8(b [8]byte) [8]byte {
	for i, j := 0, 7; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// swap4 byte-swaps each 4-byte half in place.
func swap4(b [8]byte) [8]byte {
	b[0], b[3] = b[3], b[0]
	b[1], b[2] = b[2], b[1]
	b[4], b[7] = b[7], b[4]
	b[5], b[6] = b[6], b[5]
	return b
}
