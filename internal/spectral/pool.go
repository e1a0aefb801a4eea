package spectral

import "sync"

// FieldPool recycles scratch fields of one grid.
type FieldPool struct {
	pool sync.Pool
	grid *Grid
}

func NewFieldPool(g *Grid) *FieldPool {
	return &FieldPool{
		grid: g,
		pool: sync.Pool{
			New: func() interface{} {
				return NewField(g)
			},
		},
	}
}

// Get returns a zeroed field.
func (p *FieldPool) Get() *Field {
	return p.pool.Get().(*Field)
}

func (p *FieldPool) Put(f *Field) {
	if f == nil || f.grid != p.grid {
		return
	}
	f.Zero()
	p.pool.Put(f)
}

// GetAndCopy returns a pooled field holding a copy of src.
func (p *FieldPool) GetAndCopy(src *Field) *Field {
	dst := p.Get()
	dst.CopyFrom(src)
	return dst
}
