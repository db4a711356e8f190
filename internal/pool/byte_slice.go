// Package pool provides reusable byte slices for the serializer's
// escaping scratch space.
package pool

import "sync"

const defaultCapacity = 64

type ByteSlicePool struct {
	pool sync.Pool
}

var byteSlicePool = &ByteSlicePool{
	pool: sync.Pool{
		New: func() interface{} {
			return make([]byte, 0, defaultCapacity)
		},
	},
}

func ByteSlice() *ByteSlicePool {
	return byteSlicePool
}

// Get returns a zero-length slice with at least the default capacity.
func (p *ByteSlicePool) Get() []byte {
	return p.pool.Get().([]byte)[:0]
}

// GetCapacity returns a zero-length slice with at least n bytes of
// capacity.
func (p *ByteSlicePool) GetCapacity(n int) []byte {
	b := p.pool.Get().([]byte)[:0]
	if cap(b) < n {
		p.pool.Put(b) //nolint:staticcheck
		b = make([]byte, 0, n)
	}
	return b
}

// Put returns b to the pool. Callers must not use b afterwards.
func (p *ByteSlicePool) Put(b []byte) {
	p.pool.Put(b[:0]) //nolint:staticcheck
}
