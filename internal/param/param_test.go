package param

import (
	"encoding/binary"
	"math"
	"testing"
	"testing/quick"
)

var orders = []struct {
	name  string
	order binary.ByteOrder
}{
	{"little", binary.LittleEndian},
	{"big", binary.BigEndian},
}

func TestFix8Involution(t *testing.T) {
	for _, o := range orders {
		t.Run(o.name, func(t *testing.T) {
			f := func(x [8]byte) bool {
				return Fix8(Fix8(x, o.order, false), o.order, true) == x
			}
			if err := quick.Check(f, nil); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestFix8LittleEndianIsIdentity(t *testing.T) {
	x := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	if got := Fix8(x, binary.LittleEndian, false); got != x {
		t.Errorf("encode: got %v, want %v", got, x)
	}
	if got := Fix8(x, binary.LittleEndian, true); got != x {
		t.Errorf("decode: got %v, want %v", got, x)
	}
}

func TestFix8BigEndianEncode(t *testing.T) {
	// Host memory of 0x1122334455667788 on a big-endian machine.
	native := [8]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	got := Fix8(native, binary.BigEndian, false)
	// Low word first, each word still in host (big-endian) order.
	want := [8]byte{0x55, 0x66, 0x77, 0x88, 0x11, 0x22, 0x33, 0x44}
	if got != want {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestFix8BigEndianDecode(t *testing.T) {
	canonical := [8]byte{0x55, 0x66, 0x77, 0x88, 0x11, 0x22, 0x33, 0x44}
	got := Fix8(canonical, binary.BigEndian, true)
	want := [8]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	if got != want {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestFix8BigEndianIsNotPlainByteReversal(t *testing.T) {
	// A plain 8-byte reversal yields the little-endian image of the value,
	// whose words read back on a big-endian host are byte-swapped.
	x := [8]byte{0, 1, 2, 3, 4, 5, 6, 7}
	if Fix8(x, binary.BigEndian, false) == reverse8(x) {
		t.Error("encode must byte-swap each half after reversing")
	}
	if Fix8(x, binary.BigEndian, true) == reverse8(x) {
		t.Error("decode must byte-swap each half before reversing")
	}
}

func TestEncodeWideIsHostIndependent(t *testing.T) {
	const v = uint64(0x8000000000000001)
	for _, o := range orders {
		t.Run(o.name, func(t *testing.T) {
			lo, hi := Codec{Order: o.order}.EncodeWide(v)
			if lo != 1 || hi != 0x80000000 {
				t.Errorf("got (0x%08x, 0x%08x), want (0x00000001, 0x80000000)", lo, hi)
			}
		})
	}
}

func TestWideRoundTrip(t *testing.T) {
	for _, o := range orders {
		c := Codec{Order: o.order}
		t.Run(o.name, func(t *testing.T) {
			f := func(v uint64) bool {
				return c.DecodeWide(c.EncodeWide(v)) == v
			}
			if err := quick.Check(f, nil); err != nil {
				t.Error(err)
			}
		})
	}
}

func roundTrip[T Scalar](t *testing.T, c Codec, values ...T) {
	t.Helper()
	for _, v := range values {
		words := EncodeWith(c, v)
		got, err := DecodeWith[T](c, words)
		if err != nil {
			t.Fatalf("DecodeWith(%v): %v", v, err)
		}
		if got != v && !(isNaN(got) && isNaN(v)) {
			t.Errorf("round trip %T: got %v, want %v", v, got, v)
		}
	}
}

func isNaN[T Scalar](v T) bool {
	switch x := any(v).(type) {
	case float32:
		return x != x
	case float64:
		return math.IsNaN(x)
	}
	return false
}

func TestScalarRoundTrip(t *testing.T) {
	for _, o := range orders {
		c := Codec{Order: o.order}
		t.Run(o.name, func(t *testing.T) {
			roundTrip(t, c, int8(math.MinInt8), int8(-17), int8(0), int8(math.MaxInt8))
			roundTrip(t, c, uint8(0), uint8(23), uint8(math.MaxUint8))
			roundTrip(t, c, int16(math.MinInt16), int16(-25), int16(math.MaxInt16))
			roundTrip(t, c, uint16(0), uint16(27), uint16(math.MaxUint16))
			roundTrip(t, c, int32(math.MinInt32), int32(77), int32(math.MaxInt32))
			roundTrip(t, c, uint32(0), uint32(93), uint32(math.MaxUint32))
			roundTrip(t, c, int64(math.MinInt64), int64(-9223372036854775807), int64(math.MaxInt64))
			roundTrip(t, c, uint64(0), uint64(math.MaxUint64))
			roundTrip(t, c, float32(789), float32(-0.5), float32(math.MaxFloat32), float32(math.NaN()))
			roundTrip(t, c, 12345678.12345678, math.Inf(-1), math.SmallestNonzeroFloat64, math.NaN())
		})
	}
}

func TestQuickRoundTripInt64AndFloat64(t *testing.T) {
	for _, o := range orders {
		c := Codec{Order: o.order}
		fi := func(v int64) bool {
			got, err := DecodeWith[int64](c, EncodeWith(c, v))
			return err == nil && got == v
		}
		ff := func(v float64) bool {
			got, err := DecodeWith[float64](c, EncodeWith(c, v))
			return err == nil && math.Float64bits(got) == math.Float64bits(v)
		}
		if err := quick.Check(fi, nil); err != nil {
			t.Errorf("%s int64: %v", o.name, err)
		}
		if err := quick.Check(ff, nil); err != nil {
			t.Errorf("%s float64: %v", o.name, err)
		}
	}
}

func TestNarrowValuesAreMasked(t *testing.T) {
	tests := []struct {
		name string
		got  []uint32
		want uint32
	}{
		{"int8 -17", Encode(int8(-17)), 0x000000EF},
		{"int8 -1", Encode(int8(-1)), 0x000000FF},
		{"int16 -25", Encode(int16(-25)), 0x0000FFE7},
		{"uint8 23", Encode(uint8(23)), 23},
		{"int32 -1", Encode(int32(-1)), 0xFFFFFFFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.got) != 1 || tt.got[0] != tt.want {
				t.Errorf("got %#v, want [0x%08x]", tt.got, tt.want)
			}
		})
	}
}

func TestDoubleMatchesReferenceWords(t *testing.T) {
	// Reference words produced for 12345678.12345678d.
	words := Encode(12345678.12345678)
	if len(words) != 2 || words[0] != 3287505826 || words[1] != 1097305129 {
		t.Errorf("got %v, want [3287505826 1097305129]", words)
	}
}

func TestDecodeShortWords(t *testing.T) {
	if _, err := Decode[float64]([]uint32{1}); err == nil {
		t.Error("expected error decoding float64 from one word")
	}
	if _, err := Decode[int8](nil); err == nil {
		t.Error("expected error decoding int8 from no words")
	}
}

func TestKindSuffixes(t *testing.T) {
	for suffix, kind := range suffixes {
		if suffix == "l" || suffix == "ul" {
			continue
		}
		if kind.Suffix() != suffix {
			t.Errorf("%v.Suffix() = %q, want %q", kind, kind.Suffix(), suffix)
		}
	}
	if KindFloat64.Words() != 2 || KindInt8.Words() != 1 {
		t.Error("unexpected word counts")
	}
	if KindInt16.Bits() != 16 {
		t.Errorf("KindInt16.Bits() = %d", KindInt16.Bits())
	}
}
