// Package pool provides typed object pooling with usage statistics.
//
// The datasheet codec uses it to recycle the scratch buffers rows are
// encoded into before compression:
//
//	buf := pool.Bytes.Get(n)
//	defer pool.Bytes.Put(buf)
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool is a type-safe wrapper around sync.Pool that counts allocations and
// checkouts. It is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		gets      int64
	}
}

// New creates a pool. reset, if not nil, runs on every object handed to
// Put.
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return newFn()
	}
	return p
}

// Get returns a pooled object or a new one.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	atomic.AddInt64(&p.stats.gets, 1)
	return p.pool.Get().(T)
}

// Put returns obj to the pool.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats reports the objects created, those currently checked out and the
// total number of Get calls.
func (p *Pool[T]) Stats() (allocated, inUse, gets int64) {
	return atomic.LoadInt64(&p.stats.allocated),
		atomic.LoadInt64(&p.stats.inUse),
		atomic.LoadInt64(&p.stats.gets)
}

// Buffer is a reusable byte slice.
type Buffer struct {
	B []byte
}

// BufferPool hands out buffers sized on request.
type BufferPool struct {
	p *Pool[*Buffer]
}

// NewBufferPool creates a buffer pool whose fresh buffers start with
// capacity initial.
func NewBufferPool(initial int) *BufferPool {
	return &BufferPool{p: New(
		func() *Buffer { return &Buffer{B: make([]byte, 0, initial)} },
		func(b *Buffer) { b.B = b.B[:0] },
	)}
}

// Get returns a zeroed buffer of length n.
func (bp *BufferPool) Get(n int) *Buffer {
	b := bp.p.Get()
	if cap(b.B) < n {
		b.B = make([]byte, n)
		return b
	}
	b.B = b.B[:n]
	clear(b.B)
	return b
}

// Put recycles b.
func (bp *BufferPool) Put(b *Buffer) {
	if b != nil {
		bp.p.Put(b)
	}
}

// Stats reports the statistics of the underlying pool.
func (bp *BufferPool) Stats() (allocated, inUse, gets int64) {
	return bp.p.Stats()
}

// Bytes is the shared pool for page encoding buffers.
var Bytes = NewBufferPool(64 * 1024)
