package ncfilter

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Zarr codec ids for the builtin filters.
const (
	zarrZlib       = "zlib"
	zarrShuffle    = "shuffle"
	zarrFletcher32 = "fletcher32"
	zarrZstd       = "zstd"
)

// zarrCodec is one entry of a Zarr codec list. Filters without a known
// codec use their decimal id and carry the raw parameter words.
type zarrCodec struct {
	ID          string       `json:"id"`
	Level       *codecNumber `json:"level,omitempty"`
	ElementSize codecNumber  `json:"elementsize,omitempty"`
	Params      []uint32     `json:"params,omitempty"`
}

// codecNumber is an integer codec field. Some writers quote numbers, so
// both forms are accepted.
type codecNumber int64

func (n *codecNumber) UnmarshalJSON(data []byte) error {
	text := string(data)
	if text == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("codec field %s: not an integer", data)
	}
	*n = codecNumber(v)
	return nil
}

// EncodeFilters returns specs as a JSON codec list, e.g.
// [{"id":"shuffle","elementsize":4},{"id":"zlib","level":5}].
func (b *ZarrBackend) EncodeFilters(specs []FilterSpec) ([]byte, error) {
	codecs := make([]zarrCodec, 0, len(specs))
	for _, s := range specs {
		c, err := zarrCodecFor(s)
		if err != nil {
			return nil, err
		}
		codecs = append(codecs, c)
	}
	return json.Marshal(codecs)
}

func zarrCodecFor(s FilterSpec) (zarrCodec, error) {
	first := func() (uint32, error) {
		if len(s.Params) != 1 {
			return 0, fmt.Errorf("filter %d takes 1 parameter, got %d: %w", s.ID, len(s.Params), ErrInvalidParams)
		}
		return s.Params[0], nil
	}

	switch s.ID {
	case FilterDeflate:
		w, err := first()
		if err != nil {
			return zarrCodec{}, err
		}
		level := codecNumber(w)
		return zarrCodec{ID: zarrZlib, Level: &level}, nil
	case FilterShuffle:
		c := zarrCodec{ID: zarrShuffle}
		if len(s.Params) > 0 {
			c.ElementSize = codecNumber(s.Params[0])
		}
		return c, nil
	case FilterFletcher32:
		return zarrCodec{ID: zarrFletcher32}, nil
	case FilterZstd:
		w, err := first()
		if err != nil {
			return zarrCodec{}, err
		}
		level := codecNumber(int32(w))
		return zarrCodec{ID: zarrZstd, Level: &level}, nil
	}
	return zarrCodec{ID: strconv.FormatUint(uint64(s.ID), 10), Params: s.Params}, nil
}

// DecodeFilters parses a JSON codec list written by EncodeFilters or by
// another Zarr writer.
func (b *ZarrBackend) DecodeFilters(data []byte) ([]FilterSpec, error) {
	var codecs []zarrCodec
	if err := json.Unmarshal(data, &codecs); err != nil {
		return nil, fmt.Errorf("decoding codec list: %w", err)
	}

	specs := make([]FilterSpec, len(codecs))
	for i, c := range codecs {
		s, err := c.spec()
		if err != nil {
			return nil, fmt.Errorf("codec %d: %w", i, err)
		}
		specs[i] = s
	}
	return specs, nil
}

func (c zarrCodec) spec() (FilterSpec, error) {
	switch c.ID {
	case zarrZlib:
		level := codecNumber(1)
		if c.Level != nil {
			level = *c.Level
		}
		if level < 0 || level > math.MaxUint32 {
			return FilterSpec{}, fmt.Errorf("zlib level %d: %w", level, ErrInvalidParams)
		}
		return FilterSpec{ID: FilterDeflate, Params: []uint32{uint32(level)}}, nil
	case zarrShuffle:
		if c.ElementSize < 0 || c.ElementSize > math.MaxUint32 {
			return FilterSpec{}, fmt.Errorf("shuffle element size %d: %w", c.ElementSize, ErrInvalidParams)
		}
		if c.ElementSize == 0 {
			return FilterSpec{ID: FilterShuffle, Params: []uint32{}}, nil
		}
		return FilterSpec{ID: FilterShuffle, Params: []uint32{uint32(c.ElementSize)}}, nil
	case zarrFletcher32:
		return FilterSpec{ID: FilterFletcher32, Params: []uint32{}}, nil
	case zarrZstd:
		var level codecNumber
		if c.Level != nil {
			level = *c.Level
		}
		if level < math.MinInt32 || level > math.MaxInt32 {
			return FilterSpec{}, fmt.Errorf("zstd level %d: %w", level, ErrInvalidParams)
		}
		return FilterSpec{ID: FilterZstd, Params: []uint32{uint32(int32(level))}}, nil
	}

	id, err := strconv.ParseUint(c.ID, 10, 32)
	if err != nil {
		return FilterSpec{}, fmt.Errorf("unknown codec %q: %w", c.ID, ErrNotFound)
	}
	params := c.Params
	if params == nil {
		params = []uint32{}
	}
	return FilterSpec{ID: FilterID(id), Params: params}, nil
}
