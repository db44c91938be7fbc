package util

import (
	"sync"
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// MatrixPool provides pooling for flat 2D matrices to reduce allocations
// in per-block scratch buffers.
type MatrixPool[T constraints.Ordered] struct {
	pools map[poolKey]*sync.Pool
	mu    sync.RWMutex

	// Metrics
	hits   atomic.Int64
	misses atomic.Int64
}

type poolKey struct {
	height int
	width  int
}

var (
	int32Pool  = NewMatrixPool[int32]()
	uint16Pool = NewMatrixPool[uint16]()
)

func NewMatrixPool[T constraints.Ordered]() *MatrixPool[T] {
	return &MatrixPool[T]{pools: make(map[poolKey]*sync.Pool)}
}

// Get retrieves a zeroed matrix from the pool or creates a new one.
func (p *MatrixPool[T]) Get(height, width int) *Matrix[T] {
	if height == 0 || width == 0 {
		return New2DMatrix[T](height, width)
	}

	key := poolKey{height, width}

	// Fast path: read lock
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		// Slow path: create new pool
		p.mu.Lock()
		// Double-check after acquiring write lock
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	if m := pool.Get(); m != nil {
		p.hits.Add(1)
		return m.(*Matrix[T])
	}

	p.misses.Add(1)
	return New2DMatrix[T](height, width)
}

// Put returns a matrix to the pool after clearing it.
func (p *MatrixPool[T]) Put(m *Matrix[T]) {
	if m == nil || m.Height == 0 || m.Width == 0 {
		return
	}

	key := poolKey{m.Height, m.Width}

	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		m.Clear()
		pool.Put(m)
	}
}

// GetMetrics returns pool usage statistics.
func (p *MatrixPool[T]) GetMetrics() (hits, misses int64) {
	return p.hits.Load(), p.misses.Load()
}

// MakeMatrixPooled creates or retrieves a matrix from the shared pools.
func MakeMatrixPooled[T constraints.Ordered](height, width int) *Matrix[T] {
	var zero T
	switch any(zero).(type) {
	case int32:
		return any(int32Pool.Get(height, width)).(*Matrix[T])
	case uint16:
		return any(uint16Pool.Get(height, width)).(*Matrix[T])
	default:
		// Fallback for unsupported types
		return New2DMatrix[T](height, width)
	}
}

// ReturnMatrixToPool returns a matrix obtained from MakeMatrixPooled.
func ReturnMatrixToPool[T constraints.Ordered](m *Matrix[T]) {
	if m == nil {
		return
	}

	var zero T
	switch any(zero).(type) {
	case int32:
		int32Pool.Put(any(m).(*Matrix[int32]))
	case uint16:
		uint16Pool.Put(any(m).(*Matrix[uint16]))
	}
}

// GetPoolMetrics returns metrics for all shared pools.
func GetPoolMetrics() map[string]map[string]int64 {
	i32Hits, i32Misses := int32Pool.GetMetrics()
	u16Hits, u16Misses := uint16Pool.GetMetrics()

	return map[string]map[string]int64{
		"int32": {
			"hits":   i32Hits,
			"misses": i32Misses,
		},
		"uint16": {
			"hits":   u16Hits,
			"misses": u16Misses,
		},
	}
}
