package ncfilter

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/robert-malhotra/go-ncfilter/internal/dtype"
)

// VariableInfo describes a variable to plan: its shape, element type and,
// when copied from another file, the filters and chunks it had there.
type VariableInfo struct {
	FQN          string       `yaml:"fqn"`
	Dimensions   []string     `yaml:"dimensions"`             // Dimension names, looked up in a DimensionDirectory
	Type         string       `yaml:"type,omitempty"`         // Element type name such as "float" or "string"
	ElementSize  int          `yaml:"element_size,omitempty"` // Bytes per element; derived from Type when 0
	VarLen       bool         `yaml:"varlen,omitempty"`
	Chunks       *ChunkSpec   `yaml:"chunks,omitempty"`       // Explicit chunk sizes
	InputChunks  *ChunkSpec   `yaml:"input_chunks,omitempty"` // Chunk sizes of the copy source
	InputFilters []FilterSpec `yaml:"input_filters,omitempty"`
}

// VariableOf describes a variable whose elements are held in Go values of
// type T, such as float32 or []int16.
func VariableOf[T any](fqn string, dims ...string) (VariableInfo, error) {
	t, err := dtype.ForGoType(reflect.TypeFor[T]())
	if err != nil {
		return VariableInfo{}, fmt.Errorf("variable %s: %w", fqn, err)
	}
	return VariableInfo{
		FQN:         fqn,
		Dimensions:  slices.Clone(dims),
		Type:        t.String(),
		ElementSize: t.Size(),
		VarLen:      t.VarLen(),
	}, nil
}

// DimensionDirectory resolves dimension names.
type DimensionDirectory interface {
	Dimension(name string) (DimensionInfo, error)
}

// VariableDirectory resolves variables by fully qualified name.
type VariableDirectory interface {
	Variable(fqn string) (VariableInfo, error)
	Variables() []string
}

// MemDirectory is an in-memory DimensionDirectory and VariableDirectory.
type MemDirectory struct {
	mu    sync.RWMutex
	dims  map[string]DimensionInfo
	vars  map[string]VariableInfo
	order []string
}

// NewMemDirectory creates an empty directory.
func NewMemDirectory() *MemDirectory {
	return &MemDirectory{
		dims: make(map[string]DimensionInfo),
		vars: make(map[string]VariableInfo),
	}
}

// AddDimension adds or replaces a dimension.
func (d *MemDirectory) AddDimension(dim DimensionInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dims[dim.Name] = dim
}

// AddVariable adds a variable. Adding a duplicate FQN is an error.
func (d *MemDirectory) AddVariable(v VariableInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.vars[v.FQN]; exists {
		return fmt.Errorf("variable %s already defined", v.FQN)
	}
	d.vars[v.FQN] = v
	d.order = append(d.order, v.FQN)
	return nil
}

// Dimension implements DimensionDirectory.
func (d *MemDirectory) Dimension(name string) (DimensionInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	dim, ok := d.dims[name]
	if !ok {
		return DimensionInfo{}, fmt.Errorf("unknown dimension %q", name)
	}
	return dim, nil
}

// Variable implements VariableDirectory.
func (d *MemDirectory) Variable(fqn string) (VariableInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.vars[fqn]
	if !ok {
		return VariableInfo{}, fmt.Errorf("unknown variable %q", fqn)
	}
	return v, nil
}

// Variables returns variable names in the order they were added.
func (d *MemDirectory) Variables() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.order)
}

// Planner decides the filters, chunk shape and storage mode of variables
// being defined or copied.
type Planner struct {
	Registry   *Registry // Optional; when set, filters must be registered under Format
	Format     FormatTag
	Dimensions DimensionDirectory

	Suppress       bool // Drop input filters unless an output rule applies
	Rules          []OutputRule
	ChunkOverrides ChunkOverrides

	MinChunkBytes        int
	UnlimitedWindowBytes int // 0 selects the default window
	BalancedChunkBytes   int // > 0 enables balanced default chunk sizes

	WarnOnVarLen bool // Skip filters on variable-length types instead of failing

	Logger *slog.Logger
}

func (p *Planner) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// AddRules parses rule texts and appends them to p.Rules. Nothing is added
// if any text fails to parse.
func (p *Planner) AddRules(texts ...string) error {
	rules, err := ParseOutputRules(texts)
	if err != nil {
		if p.Registry != nil {
			p.Registry.recorder().RecordParseFailure()
		}
		return err
	}
	p.Rules = append(p.Rules, rules...)
	return nil
}

// Plan computes the layout of one variable. On error no layout is returned.
// A finalized Registry fails every variable with ErrNotInitialized.
func (p *Planner) Plan(v VariableInfo) (*VariableLayout, error) {
	if p.Registry != nil {
		if err := p.Registry.Ready(); err != nil {
			return nil, fmt.Errorf("variable %s: %w", v.FQN, err)
		}
	}
	layout, err := p.plan(v)
	if p.Registry != nil {
		if err != nil {
			p.Registry.recorder().RecordPlan("error")
		} else {
			p.Registry.recorder().RecordPlan(layout.Storage.String())
		}
	}
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", v.FQN, err)
	}
	return layout, nil
}

// Dims resolves the dimensions of v.
func (p *Planner) Dims(v VariableInfo) ([]DimensionInfo, error) {
	dims := make([]DimensionInfo, len(v.Dimensions))
	for i, name := range v.Dimensions {
		if p.Dimensions == nil {
			return nil, fmt.Errorf("dimension %q: no dimension directory", name)
		}
		dim, err := p.Dimensions.Dimension(name)
		if err != nil {
			return nil, err
		}
		dims[i] = dim
	}
	return dims, nil
}

func (p *Planner) plan(v VariableInfo) (*VariableLayout, error) {
	dims, err := p.Dims(v)
	if err != nil {
		return nil, err
	}

	elemSize, varLen := v.ElementSize, v.VarLen
	if v.Type != "" {
		t, err := dtype.Parse(v.Type)
		if err != nil {
			return nil, err
		}
		if elemSize == 0 {
			elemSize = t.Size()
		}
		varLen = varLen || t.VarLen()
	}

	filters := ResolveFilters(v.FQN, p.Suppress, p.Rules, v.InputFilters)
	if len(dims) == 0 && len(filters) > 0 && wildcardOnly(v.FQN, p.Rules) {
		p.logger().Debug("skipping file-wide filters on scalar variable",
			"fqn", v.FQN, "filters", FormatSpecList(filters))
		filters = nil
	}

	layout := &VariableLayout{
		Storage: Contiguous,
		Rank:    len(dims),
		VarLen:  varLen,
	}

	var attachOpts []AttachOption
	if p.Registry != nil {
		attachOpts = append(attachOpts, WithRegistry(p.Registry, p.Format))
	}
	if p.WarnOnVarLen {
		attachOpts = append(attachOpts, WarnOnVarLen(p.logger()))
	}
	if err := AttachAll(layout, filters, attachOpts...); err != nil {
		return nil, err
	}

	explicit := v.Chunks
	if explicit == nil {
		explicit = p.ChunkOverrides.Spec(dims)
	}

	chunkOpts := []ChunkOption{WithChunkLogger(p.logger())}
	if p.UnlimitedWindowBytes > 0 {
		chunkOpts = append(chunkOpts, WithUnlimitedWindow(p.UnlimitedWindowBytes))
	}
	if p.BalancedChunkBytes > 0 {
		chunkOpts = append(chunkOpts, WithBalancedDefaults(p.BalancedChunkBytes))
	}
	mode, chunk, err := ResolveChunks(dims, explicit, v.InputChunks, layout.HasFilters(), p.MinChunkBytes, elemSize, chunkOpts...)
	if err != nil {
		return nil, err
	}

	layout.Storage = mode
	layout.Chunk = nil
	if mode == Chunked {
		layout.Chunk = &chunk
	}

	p.logger().Debug("planned variable",
		"fqn", v.FQN, "storage", mode, "chunk", chunk.String(), "filters", FormatSpecList(layout.Filters))
	return layout, nil
}

// PlannedVariable pairs a variable with its resolved dimensions and layout.
type PlannedVariable struct {
	FQN        string
	Dimensions []DimensionInfo
	Layout     *VariableLayout
}

// PlanAll plans every variable of dir in order, stopping at the first error.
func (p *Planner) PlanAll(dir VariableDirectory) ([]PlannedVariable, error) {
	var planned []PlannedVariable
	for _, fqn := range dir.Variables() {
		v, err := dir.Variable(fqn)
		if err != nil {
			return nil, err
		}
		layout, err := p.Plan(v)
		if err != nil {
			return nil, err
		}
		dims, err := p.Dims(v)
		if err != nil {
			return nil, err
		}
		planned = append(planned, PlannedVariable{FQN: fqn, Dimensions: dims, Layout: layout})
	}
	return planned, nil
}
