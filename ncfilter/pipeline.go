package ncfilter

import (
	"fmt"

	"github.com/robert-malhotra/go-ncfilter/internal/filter"
)

// Pipeline runs the codecs of a filter list over chunk data. Encode applies
// them in list order; Decode undoes them in reverse.
type Pipeline struct {
	specs []FilterSpec
	p     *filter.Pipeline
}

// Pipeline builds the codecs for specs from the descriptors under tag.
// Every filter must have a codec.
func (r *Registry) Pipeline(tag FormatTag, specs []FilterSpec) (*Pipeline, error) {
	codecs := make([]filter.Codec, 0, len(specs))
	for i, s := range specs {
		c, err := r.Codec(tag, s)
		if err != nil {
			return nil, fmt.Errorf("pipeline filter %d: %w", i, err)
		}
		codecs = append(codecs, c)
	}
	return &Pipeline{specs: cloneSpecs(specs), p: filter.NewPipeline(codecs...)}, nil
}

// Encode applies every filter to a chunk.
func (p *Pipeline) Encode(chunk []byte) ([]byte, error) {
	return p.p.Encode(chunk)
}

// Decode reverses the filters on a stored chunk. Bit i of skipMask marks
// filter i as not applied to this chunk.
func (p *Pipeline) Decode(stored []byte, skipMask uint32) ([]byte, error) {
	return p.p.Decode(stored, skipMask)
}

// Filters returns the filter list the pipeline was built from.
func (p *Pipeline) Filters() []FilterSpec {
	return cloneSpecs(p.specs)
}

// Len returns the number of filters.
func (p *Pipeline) Len() int {
	return p.p.Len()
}
