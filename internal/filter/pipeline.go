package filter

import "strconv"

// Pipeline is an ordered sequence of filters.
type Pipeline struct {
	specs   []Spec
	filters []Filter
}

// NewPipeline creates a pipeline from stage specs. An empty list yields a
// pass-through pipeline.
func NewPipeline(specs []Spec) (*Pipeline, error) {
	p := &Pipeline{
		specs:   append([]Spec(nil), specs...),
		filters: make([]Filter, 0, len(specs)),
	}

	for _, spec := range specs {
		f, err := New(spec)
		if err != nil {
			return nil, err
		}
		p.filters = append(p.filters, f)
	}
	return p, nil
}

// Encode applies the filters in order.
func (p *Pipeline) Encode(input []byte) ([]byte, error) {
	data := input
	for _, f := range p.filters {
		var err error
		data, err = f.Encode(data)
		if err != nil {
			return nil, Error.New("%s encode: %v", f.ID(), err)
		}
	}
	return data, nil
}

// Decode applies the filters in reverse order.
// The mask specifies which filters to skip (bit i = skip filter i).
func (p *Pipeline) Decode(input []byte, mask uint32) ([]byte, error) {
	data := input
	for i := len(p.filters) - 1; i >= 0; i-- {
		if mask&(1<<uint(i)) != 0 {
			continue
		}

		var err error
		data, err = p.filters[i].Decode(data)
		if err != nil {
			return nil, Error.New("%s decode: %v", p.filters[i].ID(), err)
		}
	}
	return data, nil
}

// Specs returns the stage specs the pipeline was built from.
func (p *Pipeline) Specs() []Spec {
	return append([]Spec(nil), p.specs...)
}

// Empty returns true if the pipeline has no filters.
func (p *Pipeline) Empty() bool {
	return len(p.filters) == 0
}

// Len returns the number of filters in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.filters)
}

// Describe names the compression in the pipeline, e.g. "deflate(6)", or
// "none".
func (p *Pipeline) Describe() string {
	for _, f := range p.filters {
		if d, ok := f.(*Deflate); ok {
			return "deflate(" + strconv.Itoa(d.Level()) + ")"
		}
	}
	return "none"
}
