package ncfilter

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/robert-malhotra/go-ncfilter/internal/metrics"
	"github.com/robert-malhotra/go-ncfilter/internal/pluginpath"
)

// FormatTag names the backend namespace a filter is registered under.
type FormatTag string

// Known formats.
const (
	FormatHDF5 FormatTag = "hdf5"
	FormatZarr FormatTag = "zarr"
)

// ParseFormat converts a format name to a FormatTag.
func ParseFormat(name string) (FormatTag, error) {
	switch tag := FormatTag(name); tag {
	case FormatHDF5, FormatZarr:
		return tag, nil
	}
	return "", fmt.Errorf("unknown format %q", name)
}

// Codec transforms one chunk's bytes. Encode runs on write, Decode on read.
type Codec interface {
	ID() uint32
	Encode(input []byte) ([]byte, error)
	Decode(input []byte) ([]byte, error)
}

// CodecFactory builds a codec from a filter's parameter words.
type CodecFactory func(params []uint32) (Codec, error)

// Descriptor is a backend's registration record for one filter.
type Descriptor struct {
	ID         FilterID
	Format     FormatTag
	HasEncoder bool
	HasDecoder bool
	Name       string
	Callback   CodecFactory // nil for recognized filters without a codec
}

// NewCodec builds the descriptor's codec for params.
func (d Descriptor) NewCodec(params []uint32) (Codec, error) {
	if d.Callback == nil {
		return nil, fmt.Errorf("%s filter %d (%s) has no codec: %w", d.Format, d.ID, d.Name, ErrNotFound)
	}
	return d.Callback(params)
}

type registryKey struct {
	format FormatTag
	id     FilterID
}

type registryState int

const (
	stateNew registryState = iota
	stateReady
	stateFinalized
)

// Option configures a Registry.
type Option func(*registryOptions)

type registryOptions struct {
	builtins   bool
	backends   []Backend
	pluginPath []string
	lookupEnv  func(string) (string, bool)
	logger     *slog.Logger
	registerer prometheus.Registerer
}

// WithBuiltins installs the builtin descriptors on initialization.
func WithBuiltins() Option {
	return func(o *registryOptions) {
		o.builtins = true
	}
}

// WithBackends replaces the default HDF5 and Zarr backends.
func WithBackends(backends ...Backend) Option {
	return func(o *registryOptions) {
		o.backends = backends
	}
}

// WithPluginPath sets the initial plugin path, taking precedence over
// HDF5_PLUGIN_PATH.
func WithPluginPath(dirs ...string) Option {
	return func(o *registryOptions) {
		o.pluginPath = slices.Clone(dirs)
	}
}

// WithEnv replaces os.LookupEnv when computing the initial plugin path.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(o *registryOptions) {
		o.lookupEnv = lookup
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *registryOptions) {
		o.logger = logger
	}
}

// WithMetrics registers registry metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *registryOptions) {
		o.registerer = reg
	}
}

// Registry is a table of filter descriptors keyed by (FormatTag, FilterID).
// Lookups may run concurrently; mutations should be serialized by the caller.
type Registry struct {
	mu         sync.RWMutex
	state      registryState
	opts       registryOptions
	filters    map[registryKey]Descriptor
	backends   []Backend
	pluginPath []string
	metrics    *metrics.Metrics
}

// NewRegistry creates a registry. It initializes itself on first use.
func NewRegistry(opts ...Option) *Registry {
	o := registryOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.backends == nil {
		o.backends = []Backend{NewHDF5Backend(), NewZarrBackend()}
	}
	return &Registry{opts: o}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, holding the builtin filters
// and the HDF5 and Zarr backends.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(WithBuiltins())
	})
	return defaultRegistry
}

func (r *Registry) logger() *slog.Logger {
	if r.opts.logger != nil {
		return r.opts.logger
	}
	return slog.Default()
}

// initLocked brings a new registry to the ready state. r.mu must be held
// for writing.
func (r *Registry) initLocked() error {
	switch r.state {
	case stateReady:
		return nil
	case stateFinalized:
		return ErrNotInitialized
	}

	m, err := metrics.New(r.opts.registerer)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	var initialized []Backend
	for _, b := range r.opts.backends {
		if err := b.Initialize(); err != nil {
			for _, done := range initialized {
				err = multierr.Append(err, done.Finalize())
			}
			return fmt.Errorf("initializing %s backend: %w", b.Format(), err)
		}
		initialized = append(initialized, b)
	}

	dirs := pluginpath.Initial(r.opts.pluginPath, r.opts.lookupEnv)
	for _, b := range initialized {
		if err := b.SetPluginPath(dirs); err != nil {
			err = fmt.Errorf("setting %s plugin path: %w", b.Format(), err)
			for _, done := range initialized {
				err = multierr.Append(err, done.Finalize())
			}
			return err
		}
	}

	r.metrics = m
	r.backends = initialized
	r.pluginPath = dirs
	r.filters = make(map[registryKey]Descriptor)
	r.state = stateReady

	if r.opts.builtins {
		for _, d := range builtinDescriptors() {
			if err := r.registerLocked(d.Format, d.ID, d); err != nil {
				return err
			}
		}
	}

	r.logger().Debug("filter registry initialized",
		"backends", len(r.backends), "filters", len(r.filters), "plugin_path", pluginpath.Format(dirs))
	return nil
}

// lock acquires the write lock on a ready registry.
func (r *Registry) lock() error {
	r.mu.Lock()
	if err := r.initLocked(); err != nil {
		r.mu.Unlock()
		return err
	}
	return nil
}

// rlock acquires the read lock on a ready registry, initializing it first
// if needed.
func (r *Registry) rlock() error {
	r.mu.RLock()
	if r.state == stateReady {
		return nil
	}
	r.mu.RUnlock()

	if err := r.lock(); err != nil {
		return err
	}
	r.mu.Unlock()

	r.mu.RLock()
	if r.state != stateReady {
		r.mu.RUnlock()
		return ErrNotInitialized
	}
	return nil
}

// Register adds a descriptor under (tag, id). The descriptor's ID must equal
// id; an empty descriptor Format is set to tag.
func (r *Registry) Register(tag FormatTag, id FilterID, d Descriptor) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.mu.Unlock()
	return r.registerLocked(tag, id, d)
}

func (r *Registry) registerLocked(tag FormatTag, id FilterID, d Descriptor) error {
	if d.ID != id {
		return fmt.Errorf("descriptor id %d registered as %d: %w", d.ID, id, ErrInvalidDescriptor)
	}
	if d.Format == "" {
		d.Format = tag
	}
	if d.Format != tag {
		return fmt.Errorf("descriptor format %q registered under %q: %w", d.Format, tag, ErrInvalidDescriptor)
	}
	if tag == "" {
		return fmt.Errorf("empty format tag: %w", ErrInvalidDescriptor)
	}

	key := registryKey{format: tag, id: id}
	if _, exists := r.filters[key]; exists {
		return fmt.Errorf("%s filter %d: %w", tag, id, ErrAlreadyRegistered)
	}
	r.filters[key] = d
	r.metrics.SetFilters(string(tag), r.countLocked(tag))
	r.logger().Debug("registered filter", "format", tag, "id", id, "name", d.Name)
	return nil
}

// Unregister removes the descriptor under (tag, id).
func (r *Registry) Unregister(tag FormatTag, id FilterID) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.mu.Unlock()

	key := registryKey{format: tag, id: id}
	if _, exists := r.filters[key]; !exists {
		return fmt.Errorf("%s filter %d: %w", tag, id, ErrNotFound)
	}
	delete(r.filters, key)
	r.metrics.SetFilters(string(tag), r.countLocked(tag))
	r.logger().Debug("unregistered filter", "format", tag, "id", id)
	return nil
}

// Lookup returns the descriptor registered under (tag, id).
func (r *Registry) Lookup(tag FormatTag, id FilterID) (Descriptor, error) {
	if err := r.rlock(); err != nil {
		return Descriptor{}, err
	}
	defer r.mu.RUnlock()

	d, ok := r.filters[registryKey{format: tag, id: id}]
	r.metrics.RecordLookup(string(tag), ok)
	if !ok {
		return Descriptor{}, fmt.Errorf("%s filter %d: %w", tag, id, ErrNotFound)
	}
	return d, nil
}

// Available reports whether a filter is registered under (tag, id).
func (r *Registry) Available(tag FormatTag, id FilterID) bool {
	_, err := r.Lookup(tag, id)
	return err == nil
}

// IDs returns the registered filter ids for tag in ascending order.
func (r *Registry) IDs(tag FormatTag) ([]FilterID, error) {
	descs, err := r.Descriptors(tag)
	if err != nil {
		return nil, err
	}
	ids := make([]FilterID, len(descs))
	for i, d := range descs {
		ids[i] = d.ID
	}
	return ids, nil
}

// Descriptors returns the descriptors registered for tag ordered by id.
func (r *Registry) Descriptors(tag FormatTag) ([]Descriptor, error) {
	if err := r.rlock(); err != nil {
		return nil, err
	}
	defer r.mu.RUnlock()

	var descs []Descriptor
	for key, d := range r.filters {
		if key.format == tag {
			descs = append(descs, d)
		}
	}
	slices.SortFunc(descs, func(a, b Descriptor) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return descs, nil
}

func (r *Registry) countLocked(tag FormatTag) int {
	n := 0
	for key := range r.filters {
		if key.format == tag {
			n++
		}
	}
	return n
}

// recorder returns the metrics sink, initializing the registry if needed.
// It returns nil when metrics are disabled or the registry is finalized, so
// nothing is recorded after Finalize.
func (r *Registry) recorder() *metrics.Metrics {
	if err := r.rlock(); err != nil {
		return nil
	}
	defer r.mu.RUnlock()
	return r.metrics
}

// Ready initializes the registry if needed and reports whether it can be
// used. After Finalize it returns ErrNotInitialized.
func (r *Registry) Ready() error {
	if err := r.rlock(); err != nil {
		return err
	}
	r.mu.RUnlock()
	return nil
}

// Codec builds the codec for spec from the descriptor under (tag, spec.ID).
func (r *Registry) Codec(tag FormatTag, spec FilterSpec) (Codec, error) {
	d, err := r.Lookup(tag, spec.ID)
	if err != nil {
		return nil, err
	}
	return d.NewCodec(spec.Params)
}

// Backend returns the backend serving tag.
func (r *Registry) Backend(tag FormatTag) (Backend, error) {
	if err := r.rlock(); err != nil {
		return nil, err
	}
	defer r.mu.RUnlock()

	for _, b := range r.backends {
		if b.Format() == tag {
			return b, nil
		}
	}
	return nil, fmt.Errorf("no backend for format %q: %w", tag, ErrNotFound)
}

// EncodeFilters renders specs in the on-disk form of tag's backend.
func (r *Registry) EncodeFilters(tag FormatTag, specs []FilterSpec) ([]byte, error) {
	b, err := r.Backend(tag)
	if err != nil {
		return nil, err
	}
	enc, ok := b.(PipelineEncoder)
	if !ok {
		return nil, fmt.Errorf("%s backend cannot encode filter pipelines: %w", tag, errors.ErrUnsupported)
	}
	return enc.EncodeFilters(specs)
}

// DecodeFilters reads a filter list from the on-disk form of tag's backend.
func (r *Registry) DecodeFilters(tag FormatTag, data []byte) ([]FilterSpec, error) {
	b, err := r.Backend(tag)
	if err != nil {
		return nil, err
	}
	dec, ok := b.(PipelineDecoder)
	if !ok {
		return nil, fmt.Errorf("%s backend cannot decode filter pipelines: %w", tag, errors.ErrUnsupported)
	}
	return dec.DecodeFilters(data)
}

// PluginPath returns the global plugin directory list.
func (r *Registry) PluginPath() ([]string, error) {
	if err := r.rlock(); err != nil {
		return nil, err
	}
	defer r.mu.RUnlock()
	return slices.Clone(r.pluginPath), nil
}

// SetPluginPath replaces the plugin directory list of every backend and the
// global list. An empty list clears it.
func (r *Registry) SetPluginPath(dirs []string) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.mu.Unlock()

	var err error
	for _, b := range r.backends {
		if berr := b.SetPluginPath(dirs); berr != nil {
			err = multierr.Append(err, fmt.Errorf("%s backend: %w", b.Format(), berr))
		}
	}
	r.pluginPath = slices.Clone(dirs)
	r.logger().Debug("plugin path set", "plugin_path", pluginpath.Format(dirs))
	return err
}

// Finalize clears all descriptors and finalizes every backend. Later calls
// on the registry fail with ErrNotInitialized. Finalizing a registry that
// was never used only marks it finalized.
func (r *Registry) Finalize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == stateFinalized {
		return ErrNotInitialized
	}

	var err error
	for _, b := range r.backends {
		err = multierr.Append(err, b.Finalize())
	}
	for key := range r.filters {
		r.metrics.SetFilters(string(key.format), 0)
	}
	r.filters = nil
	r.backends = nil
	r.pluginPath = nil
	r.state = stateFinalized
	r.logger().Debug("filter registry finalized")
	return err
}
