package ncfilter

import (
	"fmt"
	"log/slog"
	"slices"
)

// StorageMode is how a variable's data is laid out.
type StorageMode int

const (
	Contiguous StorageMode = iota
	Chunked
	Compact
)

var storageNames = [...]string{
	Contiguous: "contiguous",
	Chunked:    "chunked",
	Compact:    "compact",
}

func (m StorageMode) String() string {
	if m >= 0 && int(m) < len(storageNames) {
		return storageNames[m]
	}
	return fmt.Sprintf("StorageMode(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m StorageMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *StorageMode) UnmarshalText(text []byte) error {
	for i, name := range storageNames {
		if name == string(text) {
			*m = StorageMode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown storage mode %q", text)
}

// VariableLayout is the storage decision for one variable. Filters are in
// write order; reads undo them in reverse.
type VariableLayout struct {
	Storage StorageMode
	Chunk   *ChunkSpec
	Filters []FilterSpec

	Rank    int  // Number of dimensions; 0 for scalars
	VarLen  bool // Element type is variable-length
	Written bool // Data has been written; storage is frozen
}

// DefaultExclusiveClasses lists filters that may not be combined with each
// other on one variable.
var DefaultExclusiveClasses = [][]FilterID{
	{FilterDeflate, FilterSzip},
}

// AttachOption configures Attach.
type AttachOption func(*attachOptions)

type attachOptions struct {
	registry *Registry
	format   FormatTag
	warnLog  *slog.Logger
	classes  [][]FilterID
}

// WithRegistry requires filters to be registered under tag in r.
func WithRegistry(r *Registry, tag FormatTag) AttachOption {
	return func(o *attachOptions) {
		o.registry = r
		o.format = tag
	}
}

// WarnOnVarLen logs a warning and skips the filter instead of failing
// when the variable has a variable-length type.
func WarnOnVarLen(logger *slog.Logger) AttachOption {
	return func(o *attachOptions) {
		if logger == nil {
			logger = slog.Default()
		}
		o.warnLog = logger
	}
}

// WithExclusiveClasses replaces DefaultExclusiveClasses.
func WithExclusiveClasses(classes ...[]FilterID) AttachOption {
	return func(o *attachOptions) {
		o.classes = classes
	}
}

func newAttachOptions(opts []AttachOption) *attachOptions {
	o := &attachOptions{classes: DefaultExclusiveClasses}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Attach appends spec to the layout's filters. On success the layout is
// Chunked; a layout that was not already chunked gets a placeholder chunk
// shape of all zeros, to be replaced by ResolveChunks.
func Attach(layout *VariableLayout, spec FilterSpec, opts ...AttachOption) error {
	return attach(layout, spec, newAttachOptions(opts))
}

// AttachAll attaches specs in order. Either all are attached or the layout
// is left unchanged.
func AttachAll(layout *VariableLayout, specs []FilterSpec, opts ...AttachOption) error {
	o := newAttachOptions(opts)
	work := layout.clone()
	for _, spec := range specs {
		if err := attach(work, spec, o); err != nil {
			return err
		}
	}
	*layout = *work
	return nil
}

func attach(layout *VariableLayout, spec FilterSpec, o *attachOptions) error {
	if layout.Written {
		if layout.Storage == Contiguous {
			return fmt.Errorf("filter %d: contiguous storage is frozen after write: %w", spec.ID, ErrIncompatibleStorage)
		}
		return fmt.Errorf("filter %d: variable already written: %w", spec.ID, ErrIncompatibleStorage)
	}
	if layout.Rank == 0 {
		return fmt.Errorf("filter %d: %w", spec.ID, ErrScalarVariable)
	}
	if layout.VarLen {
		if o.warnLog != nil {
			o.warnLog.Warn("skipping filter on variable-length type", "id", spec.ID)
			return nil
		}
		return fmt.Errorf("filter %d: %w", spec.ID, ErrVariableLengthType)
	}
	if o.registry != nil {
		if _, err := o.registry.Lookup(o.format, spec.ID); err != nil {
			return err
		}
	}
	if err := checkParams(spec); err != nil {
		return err
	}
	for _, attached := range layout.Filters {
		if attached.ID != spec.ID && exclusive(o.classes, attached.ID, spec.ID) {
			return fmt.Errorf("filter %d with attached filter %d: %w", spec.ID, attached.ID, ErrMutuallyExclusiveFilter)
		}
	}

	layout.Filters = append(layout.Filters, spec.Clone())
	if layout.Storage != Chunked || layout.Chunk == nil {
		placeholder := NewChunkSpec(make([]int, layout.Rank)...)
		layout.Storage = Chunked
		layout.Chunk = &placeholder
	}
	return nil
}

// exclusive reports whether a and b share an exclusivity class.
func exclusive(classes [][]FilterID, a, b FilterID) bool {
	for _, class := range classes {
		if slices.Contains(class, a) && slices.Contains(class, b) {
			return true
		}
	}
	return false
}

// Builtin parameter limits.
const (
	maxDeflateLevel       = 9
	maxSzipPixelsPerBlock = 32
)

// checkParams validates parameter words of builtin filters.
func checkParams(spec FilterSpec) error {
	switch spec.ID {
	case FilterDeflate:
		if len(spec.Params) != 1 {
			return fmt.Errorf("deflate takes 1 parameter, got %d: %w", len(spec.Params), ErrInvalidParams)
		}
		if spec.Params[0] > maxDeflateLevel {
			return fmt.Errorf("deflate level %d out of range 0-%d: %w", spec.Params[0], maxDeflateLevel, ErrInvalidParams)
		}
	case FilterSzip:
		if len(spec.Params) != 2 {
			return fmt.Errorf("szip takes 2 parameters, got %d: %w", len(spec.Params), ErrInvalidParams)
		}
		ppb := spec.Params[1]
		if ppb%2 != 0 || ppb > maxSzipPixelsPerBlock {
			return fmt.Errorf("szip pixels per block %d must be even and at most %d: %w", ppb, maxSzipPixelsPerBlock, ErrInvalidParams)
		}
	}
	return nil
}

// Remove detaches every filter with the given id.
func Remove(layout *VariableLayout, id FilterID) error {
	if layout.Written {
		return fmt.Errorf("filter %d: variable already written: %w", id, ErrIncompatibleStorage)
	}
	n := len(layout.Filters)
	layout.Filters = slices.DeleteFunc(layout.Filters, func(s FilterSpec) bool {
		return s.ID == id
	})
	if len(layout.Filters) == n {
		return fmt.Errorf("filter %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListIDs returns the attached filter ids in application order.
func ListIDs(layout *VariableLayout) []FilterID {
	ids := make([]FilterID, len(layout.Filters))
	for i, s := range layout.Filters {
		ids[i] = s.ID
	}
	return ids
}

// Params returns a copy of the parameters of the first attached filter
// with the given id.
func Params(layout *VariableLayout, id FilterID) ([]uint32, bool) {
	for _, s := range layout.Filters {
		if s.ID == id {
			return slices.Clone(s.Params), true
		}
	}
	return nil, false
}

// HasFilters reports whether any filter is attached.
func (l *VariableLayout) HasFilters() bool {
	return len(l.Filters) > 0
}

func (l *VariableLayout) clone() *VariableLayout {
	c := *l
	c.Filters = cloneSpecs(l.Filters)
	if l.Chunk != nil {
		chunk := *l.Chunk
		c.Chunk = &chunk
	}
	return &c
}
