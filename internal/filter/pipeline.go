package filter

import "fmt"

// Pipeline represents an ordered sequence of codecs applied to chunk data.
type Pipeline struct {
	codecs []Codec
}

// NewPipeline creates a pipeline that encodes with codecs in the given order.
// Nil codecs are dropped.
func NewPipeline(codecs ...Codec) *Pipeline {
	p := &Pipeline{codecs: make([]Codec, 0, len(codecs))}
	for _, c := range codecs {
		if c != nil {
			p.codecs = append(p.codecs, c)
		}
	}
	return p
}

// Encode applies every codec in pipeline order.
func (p *Pipeline) Encode(input []byte) ([]byte, error) {
	data := input
	for _, c := range p.codecs {
		var err error
		data, err = c.Encode(data)
		if err != nil {
			return nil, fmt.Errorf("filter %d encode: %w", c.ID(), err)
		}
	}
	return data, nil
}

// Decode applies the pipeline to encoded data.
// The filterMask specifies which filters to skip (bit i = skip filter i).
// Filters are applied in reverse order (last filter first).
func (p *Pipeline) Decode(input []byte, filterMask uint32) ([]byte, error) {
	data := input

	for i := len(p.codecs) - 1; i >= 0; i-- {
		if filterMask&(1<<uint(i)) != 0 {
			continue
		}

		var err error
		data, err = p.codecs[i].Decode(data)
		if err != nil {
			return nil, fmt.Errorf("filter %d decode: %w", p.codecs[i].ID(), err)
		}
	}

	return data, nil
}

// IDs returns the codec identifiers in pipeline order.
func (p *Pipeline) IDs() []uint32 {
	ids := make([]uint32, len(p.codecs))
	for i, c := range p.codecs {
		ids[i] = c.ID()
	}
	return ids
}

// Empty returns true if the pipeline has no filters.
func (p *Pipeline) Empty() bool {
	return len(p.codecs) == 0
}

// Len returns the number of filters in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.codecs)
}
