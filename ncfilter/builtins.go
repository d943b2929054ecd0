package ncfilter

import (
	"errors"

	"github.com/robert-malhotra/go-ncfilter/internal/filter"
)

type builtin struct {
	id       FilterID
	hdf5Name string
	zarrName string
}

var builtins = []builtin{
	{FilterDeflate, "deflate", "zlib"},
	{FilterShuffle, "shuffle", "shuffle"},
	{FilterFletcher32, "fletcher32", "fletcher32"},
	{FilterSzip, "szip", ""},
	{FilterZstd, "zstd", "zstd"},
}

// builtinDescriptors returns the descriptors for both formats.
func builtinDescriptors() []Descriptor {
	var descs []Descriptor
	for _, b := range builtins {
		descs = append(descs, newBuiltinDescriptor(FormatHDF5, b.id, b.hdf5Name))
		if b.zarrName != "" {
			descs = append(descs, newBuiltinDescriptor(FormatZarr, b.id, b.zarrName))
		}
	}
	return descs
}

func newBuiltinDescriptor(tag FormatTag, id FilterID, name string) Descriptor {
	d := Descriptor{ID: id, Format: tag, Name: name}
	if factory, ok := filter.Builtin[uint32(id)]; ok {
		d.HasEncoder = true
		d.HasDecoder = true
		d.Callback = func(params []uint32) (Codec, error) {
			return factory(params)
		}
	}
	return d
}

// RegisterBuiltins registers the builtin filters under FormatHDF5 and
// FormatZarr. Filters already registered are left alone.
func RegisterBuiltins(r *Registry) error {
	for _, d := range builtinDescriptors() {
		err := r.Register(d.Format, d.ID, d)
		if err != nil && !errors.Is(err, ErrAlreadyRegistered) {
			return err
		}
	}
	return nil
}
