package evaluator

import (
	"container/list"
	"context"
	"sync"

	"github.com/dshills/hsaga/pkg/model"
)

// Memoized wraps an Evaluator with a bounded, concurrency-safe LRU cache
// keyed by the solution's canonical fingerprint (sorted (id, xq, yq)
// tuples, positions quantized to Quantum meters — spec.md §4.4). Workers
// never hold this cache's lock while calling into the wrapped evaluator:
// the lock only guards the map/list bookkeeping.
type Memoized struct {
	inner    Evaluator
	quantum  float64
	capacity int

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used
}

type cacheEntry struct {
	key    string
	result FitnessResult
}

// NewMemoized wraps inner with an LRU cache of the given capacity
// (entries), quantizing positions to quantum meters before fingerprinting.
// A non-positive capacity disables eviction (unbounded growth); callers
// processing very long runs should set a real capacity.
func NewMemoized(inner Evaluator, quantum float64, capacity int) *Memoized {
	if quantum <= 0 {
		quantum = 1.0
	}
	return &Memoized{
		inner:    inner,
		quantum:  quantum,
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Evaluate returns the cached FitnessResult for sol's fingerprint if
// present, otherwise calls through to the wrapped evaluator and caches the
// result. Errors are never cached: a transient evaluator failure must not
// poison future lookups for the same fingerprint.
func (m *Memoized) Evaluate(ctx context.Context, sol *model.Solution, site *model.Site) (FitnessResult, error) {
	key := sol.Fingerprint(m.quantum)

	m.mu.Lock()
	if el, ok := m.entries[key]; ok {
		m.order.MoveToFront(el)
		result := el.Value.(*cacheEntry).result
		m.mu.Unlock()
		return result, nil
	}
	m.mu.Unlock()

	result, err := m.inner.Evaluate(ctx, sol, site)
	if err != nil {
		return result, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.entries[key]; ok {
		// Another goroutine raced us to compute the same fingerprint;
		// keep the existing entry and just bump recency.
		m.order.MoveToFront(el)
		return el.Value.(*cacheEntry).result, nil
	}
	el := m.order.PushFront(&cacheEntry{key: key, result: result})
	m.entries[key] = el
	if m.capacity > 0 {
		for m.order.Len() > m.capacity {
			oldest := m.order.Back()
			if oldest == nil {
				break
			}
			m.order.Remove(oldest)
			delete(m.entries, oldest.Value.(*cacheEntry).key)
		}
	}
	return result, nil
}

// Len returns the current number of cached entries.
func (m *Memoized) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}
