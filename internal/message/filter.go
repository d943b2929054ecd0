package message

import (
	"fmt"
	"math"

	binpkg "github.com/robert-malhotra/go-ncfilter/internal/binary"
)

// FilterFlagOptional marks a filter whose failure does not fail the write.
const FilterFlagOptional uint16 = 0x0001

// Pipeline message versions.
const (
	FilterPipelineV1 uint8 = 1
	FilterPipelineV2 uint8 = 2
)

// reservedFilterIDs is the first ID that carries a name in version 2.
const reservedFilterIDs = 256

// FilterInfo describes a single filter in the pipeline.
type FilterInfo struct {
	ID         uint16   // Filter identifier
	Flags      uint16   // Filter flags (bit 0: optional)
	Name       string   // Filter name (optional)
	ClientData []uint32 // Filter parameters
}

// hasName reports whether a version 2 entry carries a name field.
func (f *FilterInfo) hasName() bool {
	return f.ID >= reservedFilterIDs
}

// FilterPipeline represents a filter pipeline message (type 0x000B).
type FilterPipeline struct {
	Version uint8
	Filters []FilterInfo
}

func (m *FilterPipeline) Type() Type { return TypeFilterPipeline }

// AddFilter appends a filter, rejecting identifiers that do not fit the
// 16-bit on-disk field.
func (m *FilterPipeline) AddFilter(id uint32, flags uint16, name string, params []uint32) error {
	if id > math.MaxUint16 {
		return fmt.Errorf("filter ID %d exceeds the HDF5 limit of %d", id, math.MaxUint16)
	}
	m.Filters = append(m.Filters, FilterInfo{
		ID:         uint16(id),
		Flags:      flags,
		Name:       name,
		ClientData: append([]uint32(nil), params...),
	})
	return nil
}

// SerializedSize returns the version 2 encoded size.
func (m *FilterPipeline) SerializedSize() int {
	size := 2 // version + number of filters
	for i := range m.Filters {
		f := &m.Filters[i]
		size += 6 // id + flags + number of client data values
		if f.hasName() {
			size += 2 + len(f.Name) + 1
		}
		size += 4 * len(f.ClientData)
	}
	return size
}

// Serialize writes the pipeline as a version 2 message.
func (m *FilterPipeline) Serialize(w *binpkg.Writer) error {
	if len(m.Filters) > math.MaxUint8 {
		return fmt.Errorf("filter pipeline has %d filters, limit is %d", len(m.Filters), math.MaxUint8)
	}

	if err := w.WriteUint8(FilterPipelineV2); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(len(m.Filters))); err != nil {
		return err
	}

	for i := range m.Filters {
		f := &m.Filters[i]
		if len(f.ClientData) > math.MaxUint16 {
			return fmt.Errorf("filter %d: too many client data values (%d)", f.ID, len(f.ClientData))
		}

		if err := w.WriteUint16(f.ID); err != nil {
			return err
		}
		if f.hasName() {
			// Name length includes the null terminator.
			if err := w.WriteUint16(uint16(len(f.Name) + 1)); err != nil {
				return err
			}
		}
		if err := w.WriteUint16(f.Flags); err != nil {
			return err
		}
		if err := w.WriteUint16(uint16(len(f.ClientData))); err != nil {
			return err
		}
		if f.hasName() {
			if err := w.WriteBytes(append([]byte(f.Name), 0)); err != nil {
				return err
			}
		}
		if err := w.WriteWords(f.ClientData); err != nil {
			return err
		}
	}
	return nil
}

// ParseFilterPipeline reads a version 1 or version 2 filter pipeline message.
func ParseFilterPipeline(r *binpkg.Reader) (*FilterPipeline, error) {
	version, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("filter pipeline message too short: %w", err)
	}
	if version != FilterPipelineV1 && version != FilterPipelineV2 {
		return nil, fmt.Errorf("unsupported filter pipeline version %d", version)
	}
	count, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("filter pipeline message too short: %w", err)
	}

	fp := &FilterPipeline{
		Version: version,
		Filters: make([]FilterInfo, count),
	}

	// Version 1 has 6 reserved bytes
	if version == FilterPipelineV1 {
		r.Skip(6)
	}

	for i := range fp.Filters {
		if err := parseFilterInfo(r, version, &fp.Filters[i]); err != nil {
			return nil, fmt.Errorf("parsing filter %d: %w", i, err)
		}
	}

	return fp, nil
}

func parseFilterInfo(r *binpkg.Reader, version uint8, f *FilterInfo) error {
	var err error
	if f.ID, err = r.ReadUint16(); err != nil {
		return err
	}

	// Name length field only present in v1 or for custom filters (ID >= 256)
	var nameLen uint16
	if version == FilterPipelineV1 || f.hasName() {
		if nameLen, err = r.ReadUint16(); err != nil {
			return err
		}
	}

	if f.Flags, err = r.ReadUint16(); err != nil {
		return err
	}
	numCD, err := r.ReadUint16()
	if err != nil {
		return err
	}

	if nameLen > 0 {
		raw, err := r.ReadBytes(int(nameLen))
		if err != nil {
			return fmt.Errorf("filter name truncated: %w", err)
		}
		end := 0
		for end < len(raw) && raw[end] != 0 {
			end++
		}
		f.Name = string(raw[:end])

		// v1: names are padded to an 8-byte boundary
		if version == FilterPipelineV1 {
			r.Align(8)
		}
	}

	if f.ClientData, err = r.ReadWords(int(numCD)); err != nil {
		return fmt.Errorf("client data truncated: %w", err)
	}

	// v1: client data is padded to an 8-byte boundary
	if version == FilterPipelineV1 {
		r.Align(8)
	}

	return nil
}
