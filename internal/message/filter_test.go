package message

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"testing"

	binpkg "github.com/robert-malhotra/go-ncfilter/internal/binary"
)

func parse(t *testing.T, data []byte) *FilterPipeline {
	t.Helper()
	msg, err := Decode(TypeFilterPipeline, data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	fp, ok := msg.(*FilterPipeline)
	if !ok {
		t.Fatalf("expected *FilterPipeline, got %T", msg)
	}
	return fp
}

func TestFilterPipelineV2Bytes(t *testing.T) {
	fp := &FilterPipeline{}
	if err := fp.AddFilter(2, 0, "", []uint32{4}); err != nil {
		t.Fatal(err)
	}
	if err := fp.AddFilter(1, 0, "", []uint32{6}); err != nil {
		t.Fatal(err)
	}

	data, err := Encode(fp)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := []byte{
		2, 2, // version, count
		2, 0, 0, 0, 1, 0, 4, 0, 0, 0, // shuffle: id, flags, ncd, cd[0]
		1, 0, 0, 0, 1, 0, 6, 0, 0, 0, // deflate
	}
	if !bytes.Equal(data, want) {
		t.Errorf("encoded bytes:\ngot:  %v\nwant: %v", data, want)
	}
	if fp.SerializedSize() != len(want) {
		t.Errorf("SerializedSize = %d, want %d", fp.SerializedSize(), len(want))
	}
}

func TestFilterPipelineNamedRoundTrip(t *testing.T) {
	fp := &FilterPipeline{}
	if err := fp.AddFilter(32015, FilterFlagOptional, "zstd", []uint32{3}); err != nil {
		t.Fatal(err)
	}
	if err := fp.AddFilter(3, 0, "", nil); err != nil {
		t.Fatal(err)
	}

	data, err := Encode(fp)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) != fp.SerializedSize() {
		t.Errorf("len = %d, SerializedSize = %d", len(data), fp.SerializedSize())
	}

	got := parse(t, data)
	if got.Version != FilterPipelineV2 {
		t.Errorf("version = %d", got.Version)
	}
	if len(got.Filters) != 2 {
		t.Fatalf("expected 2 filters, got %d", len(got.Filters))
	}
	z := got.Filters[0]
	if z.ID != 32015 || z.Name != "zstd" || z.Flags != FilterFlagOptional || !reflect.DeepEqual(z.ClientData, []uint32{3}) {
		t.Errorf("unexpected zstd entry %+v", z)
	}
	f := got.Filters[1]
	if f.ID != 3 || f.Name != "" || f.Flags != 0 || len(f.ClientData) != 0 {
		t.Errorf("unexpected fletcher32 entry %+v", f)
	}
}

func TestFilterPipelineRejectsWideID(t *testing.T) {
	fp := &FilterPipeline{}
	if err := fp.AddFilter(70000, 0, "", nil); err == nil {
		t.Error("expected error for ID above 65535")
	}
	if len(fp.Filters) != 0 {
		t.Error("rejected filter must not be added")
	}
}

func TestParseFilterPipelineV1(t *testing.T) {
	var buf binpkg.Buffer
	w := binpkg.NewWriter(&buf, binary.LittleEndian)
	w.WriteUint8(1)
	w.WriteUint8(1)
	w.WriteBytes(make([]byte, 6))
	w.WriteUint16(1) // id
	w.WriteUint16(8) // name length
	w.WriteUint16(0) // flags
	w.WriteUint16(1) // client data count
	w.WriteBytes([]byte("deflate\x00"))
	w.WriteWords([]uint32{9})
	w.WriteBytes(make([]byte, 4)) // odd client data padding

	fp := parse(t, buf.Bytes())
	if fp.Version != FilterPipelineV1 || len(fp.Filters) != 1 {
		t.Fatalf("unexpected pipeline %+v", fp)
	}
	f := fp.Filters[0]
	if f.ID != 1 || f.Name != "deflate" || !reflect.DeepEqual(f.ClientData, []uint32{9}) {
		t.Errorf("unexpected filter %+v", f)
	}
}

func TestParseFilterPipelineV1NamePadding(t *testing.T) {
	var buf binpkg.Buffer
	w := binpkg.NewWriter(&buf, binary.LittleEndian)
	w.WriteUint8(1)
	w.WriteUint8(2)
	w.WriteBytes(make([]byte, 6))
	w.WriteUint16(32015) // id
	w.WriteUint16(5)     // name length, padded to 8 on disk
	w.WriteUint16(FilterFlagOptional)
	w.WriteUint16(2)
	w.WriteBytes([]byte("zstd\x00\x00\x00\x00"))
	w.WriteWords([]uint32{3, 0})
	w.WriteUint16(2) // id
	w.WriteUint16(0)
	w.WriteUint16(0)
	w.WriteUint16(1)
	w.WriteWords([]uint32{4})
	w.WriteBytes(make([]byte, 4))

	fp := parse(t, buf.Bytes())
	if len(fp.Filters) != 2 {
		t.Fatalf("expected 2 filters, got %d", len(fp.Filters))
	}
	z := fp.Filters[0]
	if z.ID != 32015 || z.Name != "zstd" || z.Flags != FilterFlagOptional || !reflect.DeepEqual(z.ClientData, []uint32{3, 0}) {
		t.Errorf("unexpected zstd entry %+v", z)
	}
	s := fp.Filters[1]
	if s.ID != 2 || s.Name != "" || !reflect.DeepEqual(s.ClientData, []uint32{4}) {
		t.Errorf("unexpected shuffle entry %+v", s)
	}
}

func TestParseFilterPipelineErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad version", []byte{3, 0}},
		{"truncated entry", []byte{2, 1, 1, 0}},
		{"truncated client data", []byte{2, 1, 1, 0, 0, 0, 2, 0, 6, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(TypeFilterPipeline, tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDecodeUnknown(t *testing.T) {
	msg, err := Decode(TypeDataLayout, []byte{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	u, ok := msg.(*Unknown)
	if !ok || u.Type() != TypeDataLayout {
		t.Errorf("expected Unknown layout message, got %#v", msg)
	}
}
