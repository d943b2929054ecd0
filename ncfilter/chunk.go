package ncfilter

import (
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-ncfilter/internal/layout"
)

// DimensionInfo describes one dimension of a variable.
type DimensionInfo struct {
	Name      string `yaml:"name"`
	Length    int    `yaml:"length"`
	Unlimited bool   `yaml:"unlimited,omitempty"`
}

// ChunkSpec is a chunk shape, one size per dimension. It is immutable.
type ChunkSpec struct {
	sizes []int
}

// NewChunkSpec creates a chunk shape. A zero size means "not specified".
func NewChunkSpec(sizes ...int) ChunkSpec {
	return ChunkSpec{sizes: slices.Clone(sizes)}
}

// Rank returns the number of dimensions.
func (c ChunkSpec) Rank() int {
	return len(c.sizes)
}

// Sizes returns a copy of the chunk sizes.
func (c ChunkSpec) Sizes() []int {
	return slices.Clone(c.sizes)
}

// Size returns the chunk size along dimension i.
func (c ChunkSpec) Size(i int) int {
	return c.sizes[i]
}

// Bytes returns the size of one chunk in bytes.
func (c ChunkSpec) Bytes(elementSize int) uint64 {
	return layout.ChunkBytes(c.sizes, elementSize)
}

// Count returns how many chunks of this shape cover dims at their current
// lengths.
func (c ChunkSpec) Count(dims []DimensionInfo) (uint64, error) {
	geometry := make([]layout.Dim, len(dims))
	for i, d := range dims {
		geometry[i] = layout.Dim{Len: d.Length, Unlimited: d.Unlimited}
	}
	grid, err := layout.GridShape(geometry, c.sizes)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
	}
	return layout.Elements(grid), nil
}

func (c ChunkSpec) String() string {
	parts := make([]string, len(c.sizes))
	for i, s := range c.sizes {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, "x")
}

// MarshalYAML renders the shape as a flow sequence.
func (c ChunkSpec) MarshalYAML() (any, error) {
	return c.Sizes(), nil
}

// UnmarshalYAML reads a sequence of sizes.
func (c *ChunkSpec) UnmarshalYAML(unmarshal func(any) error) error {
	var sizes []int
	if err := unmarshal(&sizes); err != nil {
		return err
	}
	*c = NewChunkSpec(sizes...)
	return nil
}

// ChunkOption configures ResolveChunks.
type ChunkOption func(*chunkOptions)

type chunkOptions struct {
	windowBytes   int
	balancedBytes int
	logger        *slog.Logger
}

// WithUnlimitedWindow sets the byte budget of an unlimited dimension's
// default chunk length. The default is 4096 bytes.
func WithUnlimitedWindow(bytes int) ChunkOption {
	return func(o *chunkOptions) {
		if bytes > 0 {
			o.windowBytes = bytes
		}
	}
}

// WithBalancedDefaults derives unspecified chunk sizes by sharing a byte
// budget across all dimensions instead of using whole dimension lengths.
func WithBalancedDefaults(budgetBytes int) ChunkOption {
	return func(o *chunkOptions) {
		if budgetBytes <= 0 {
			budgetBytes = layout.DefaultChunkBytes
		}
		o.balancedBytes = budgetBytes
	}
}

// WithChunkLogger sets the logger for resolution decisions.
func WithChunkLogger(logger *slog.Logger) ChunkOption {
	return func(o *chunkOptions) {
		o.logger = logger
	}
}

// ResolveChunks computes the chunk shape and storage mode of a variable.
//
// Each dimension takes the first of: a non-zero explicit size, a non-zero
// inherited size, or a default. The default is the dimension length, or
// for unlimited dimensions as many elements as fit the unlimited window.
// Explicit sizes may not exceed the length of a fixed dimension; inherited
// sizes are clamped to it.
//
// Any unlimited dimension forces Chunked. Otherwise, when the variable has
// no filters and one chunk holds fewer than minChunkBytes, the result is
// Contiguous and the returned shape is advisory. Scalars are Contiguous.
func ResolveChunks(dims []DimensionInfo, explicit, inherited *ChunkSpec, hasFilter bool, minChunkBytes, elementSize int, opts ...ChunkOption) (StorageMode, ChunkSpec, error) {
	o := chunkOptions{windowBytes: layout.DefaultUnlimitedWindow}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	if elementSize <= 0 {
		return Contiguous, ChunkSpec{}, fmt.Errorf("element size %d: %w", elementSize, ErrInvalidChunkSize)
	}
	if explicit != nil && explicit.Rank() != len(dims) {
		return Contiguous, ChunkSpec{}, fmt.Errorf("explicit chunks have rank %d, variable has %d: %w", explicit.Rank(), len(dims), ErrDimensionMismatch)
	}
	if inherited != nil && inherited.Rank() != len(dims) {
		return Contiguous, ChunkSpec{}, fmt.Errorf("inherited chunks have rank %d, variable has %d: %w", inherited.Rank(), len(dims), ErrDimensionMismatch)
	}
	if len(dims) == 0 {
		return Contiguous, ChunkSpec{sizes: []int{}}, nil
	}

	var balanced []int
	if o.balancedBytes > 0 {
		geometry := make([]layout.Dim, len(dims))
		for i, d := range dims {
			geometry[i] = layout.Dim{Len: d.Length, Unlimited: d.Unlimited}
		}
		balanced = layout.Balanced(geometry, elementSize, o.balancedBytes, o.windowBytes)
	}

	sizes := make([]int, len(dims))
	unlimited := false
	for i, d := range dims {
		limit := max(d.Length, 1)
		if d.Unlimited {
			unlimited = true
		}

		switch {
		case explicit != nil && explicit.sizes[i] != 0:
			size := explicit.sizes[i]
			if size < 0 || (!d.Unlimited && size > limit) {
				return Contiguous, ChunkSpec{}, fmt.Errorf("dimension %d (%s): chunk size %d invalid for length %d: %w", i, d.Name, size, d.Length, ErrInvalidChunkSize)
			}
			sizes[i] = size
		case inherited != nil && inherited.sizes[i] > 0:
			size := inherited.sizes[i]
			if !d.Unlimited && size > limit {
				size = limit
			}
			sizes[i] = size
		case balanced != nil:
			sizes[i] = balanced[i]
		case d.Unlimited:
			sizes[i] = layout.UnlimitedWindow(o.windowBytes, elementSize)
		default:
			sizes[i] = limit
		}
	}

	chunk := ChunkSpec{sizes: sizes}
	mode := Chunked
	if !unlimited && !hasFilter && chunk.Bytes(elementSize) < uint64(max(minChunkBytes, 0)) {
		mode = Contiguous
		logger.Debug("chunk below threshold, using contiguous storage",
			"chunk", chunk.String(), "bytes", chunk.Bytes(elementSize), "min_chunk_bytes", minChunkBytes)
	}
	return mode, chunk, nil
}

// ChunkOverride is one "dim/size" entry. Size 0 means the whole dimension.
type ChunkOverride struct {
	Dim  string
	Size int
}

// ChunkOverrides is an ordered list of per-dimension chunk sizes.
type ChunkOverrides []ChunkOverride

// ParseChunkOverrides parses "dim/size,dim/size,...". A dimension may be
// a path such as /grp/time; a comma inside a name is written \,. An empty
// size ("time/") selects the whole dimension.
func ParseChunkOverrides(text string) (ChunkOverrides, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var overrides ChunkOverrides
	for _, entry := range splitEscaped(text, ',') {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return nil, fmt.Errorf("chunk override %q: empty entry: %w", text, ErrInvalidChunkSize)
		}
		slash := strings.LastIndexByte(entry, '/')
		if slash <= 0 {
			return nil, fmt.Errorf("chunk override %q: expected dim/size: %w", entry, ErrInvalidChunkSize)
		}
		o := ChunkOverride{Dim: entry[:slash]}
		if sizeText := strings.TrimSpace(entry[slash+1:]); sizeText != "" {
			size, err := strconv.Atoi(sizeText)
			if err != nil || size < 1 {
				return nil, fmt.Errorf("chunk override %q: size must be a positive integer: %w", entry, ErrInvalidChunkSize)
			}
			o.Size = size
		}
		overrides = append(overrides, o)
	}
	return overrides, nil
}

// splitEscaped splits text at sep, treating a backslash-escaped sep as a
// literal character.
func splitEscaped(text string, sep byte) []string {
	var parts []string
	var cur strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\\' && i+1 < len(text) && text[i+1] == sep {
			cur.WriteByte(sep)
			i++
			continue
		}
		if c == sep {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	return append(parts, cur.String())
}

// Spec returns an explicit chunk shape for dims, or nil if no override
// names any of them. An override matches a dimension by exact name, or by
// base name when the override is not a path.
func (co ChunkOverrides) Spec(dims []DimensionInfo) *ChunkSpec {
	sizes := make([]int, len(dims))
	matched := false
	for i, d := range dims {
		for _, o := range co {
			if !o.matches(d.Name) {
				continue
			}
			matched = true
			switch {
			case o.Size > 0:
				sizes[i] = o.Size
			case !d.Unlimited:
				sizes[i] = max(d.Length, 1)
			}
		}
	}
	if !matched {
		return nil
	}
	spec := ChunkSpec{sizes: sizes}
	return &spec
}

func (o ChunkOverride) matches(name string) bool {
	if o.Dim == name {
		return true
	}
	return !strings.Contains(o.Dim, "/") && path.Base(name) == o.Dim
}
