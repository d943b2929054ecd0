package ncfilter

import (
	"fmt"
	"slices"
	"sync"

	"github.com/robert-malhotra/go-ncfilter/internal/filter"
	"github.com/robert-malhotra/go-ncfilter/internal/message"
)

// Backend is the per-format capability set a Registry drives.
type Backend interface {
	// Format returns the tag the backend serves.
	Format() FormatTag

	// Initialize prepares the backend. It is called once, before any
	// other method.
	Initialize() error

	// Finalize releases the backend's state.
	Finalize() error

	// PluginPath returns the backend's plugin directory list.
	PluginPath() ([]string, error)

	// SetPluginPath replaces the backend's plugin directory list.
	SetPluginPath(dirs []string) error
}

// PipelineEncoder is implemented by backends that can render a filter list
// in their on-disk form.
type PipelineEncoder interface {
	EncodeFilters(specs []FilterSpec) ([]byte, error)
}

// PipelineDecoder is implemented by backends that can read a filter list
// back from its on-disk form.
type PipelineDecoder interface {
	DecodeFilters(data []byte) ([]FilterSpec, error)
}

// pathBackend keeps a plugin directory list for one format.
type pathBackend struct {
	format FormatTag

	mu          sync.Mutex
	initialized bool
	dirs        []string
}

func (b *pathBackend) Format() FormatTag {
	return b.format
}

func (b *pathBackend) Initialize() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return fmt.Errorf("%s backend already initialized", b.format)
	}
	b.initialized = true
	b.dirs = nil
	return nil
}

func (b *pathBackend) Finalize() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return fmt.Errorf("%s backend: %w", b.format, ErrNotInitialized)
	}
	b.initialized = false
	b.dirs = nil
	return nil
}

func (b *pathBackend) PluginPath() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, fmt.Errorf("%s backend: %w", b.format, ErrNotInitialized)
	}
	return slices.Clone(b.dirs), nil
}

func (b *pathBackend) SetPluginPath(dirs []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return fmt.Errorf("%s backend: %w", b.format, ErrNotInitialized)
	}
	b.dirs = slices.Clone(dirs)
	return nil
}

// HDF5Backend serves FormatHDF5 and encodes filter pipeline messages.
type HDF5Backend struct {
	pathBackend
}

// NewHDF5Backend creates an uninitialized HDF5 backend.
func NewHDF5Backend() *HDF5Backend {
	return &HDF5Backend{pathBackend{format: FormatHDF5}}
}

// EncodeFilters returns the version 2 filter pipeline message for specs.
// HDF5 stores filter ids in 16 bits, so larger ids are rejected.
func (b *HDF5Backend) EncodeFilters(specs []FilterSpec) ([]byte, error) {
	var fp message.FilterPipeline
	for _, s := range specs {
		id := uint32(s.ID)
		if err := fp.AddFilter(id, hdf5FilterFlags(s.ID), filter.Name(id), s.Params); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
		}
	}
	return message.Encode(&fp)
}

// DecodeFilters parses a version 1 or 2 filter pipeline message.
func (b *HDF5Backend) DecodeFilters(data []byte) ([]FilterSpec, error) {
	msg, err := message.Decode(message.TypeFilterPipeline, data)
	if err != nil {
		return nil, fmt.Errorf("decoding filter pipeline: %w", err)
	}
	fp := msg.(*message.FilterPipeline)

	specs := make([]FilterSpec, len(fp.Filters))
	for i, f := range fp.Filters {
		specs[i] = FilterSpec{ID: FilterID(f.ID), Params: slices.Clone(f.ClientData)}
		if specs[i].Params == nil {
			specs[i].Params = []uint32{}
		}
	}
	return specs, nil
}

// hdf5FilterFlags mirrors the flags HDF5's own setters use: deflate,
// shuffle and szip may be skipped for a chunk they do not shrink.
func hdf5FilterFlags(id FilterID) uint16 {
	switch id {
	case FilterDeflate, FilterShuffle, FilterSzip:
		return message.FilterFlagOptional
	}
	return 0
}

// ZarrBackend serves FormatZarr and encodes filter lists as JSON codec
// lists (see zarr.go).
type ZarrBackend struct {
	pathBackend
}

// NewZarrBackend creates an uninitialized Zarr backend.
func NewZarrBackend() *ZarrBackend {
	return &ZarrBackend{pathBackend{format: FormatZarr}}
}
