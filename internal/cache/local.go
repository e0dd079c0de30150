package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Local is an in-process Store for single-process deployments without
// Redis. Entries expire after ttl and the least recently used ones are
// evicted once either maxEntries or maxBytes is exceeded. Stored payloads
// are copied so callers can reuse their buffers.
type Local struct {
	mu         sync.Mutex
	maxEntries int
	maxBytes   int64
	ttl        time.Duration
	now        func() time.Time

	bytes int64
	items map[string]*list.Element
	order *list.List
}

type entry struct {
	key       string
	data      []byte
	expiresAt time.Time
}

// NewLocal creates a Local store. A non-positive limit disables that limit.
func NewLocal(maxEntries int, maxBytes int64, ttl time.Duration) *Local {
	return &Local{
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
		ttl:        ttl,
		now:        time.Now,
		items:      make(map[string]*list.Element),
		order:      list.New(),
	}
}

func (l *Local) Get(_ context.Context, key string) ([]byte, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	elem, ok := l.items[key]
	if !ok {
		return nil, false, nil
	}
	e := elem.Value.(*entry)
	if l.now().After(e.expiresAt) {
		l.remove(elem)
		return nil, false, nil
	}
	l.order.MoveToFront(elem)
	return append([]byte(nil), e.data...), true, nil
}

// Set stores a copy of data. A payload larger than maxBytes is not cached.
func (l *Local) Set(_ context.Context, key string, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		l.remove(elem)
	}
	size := int64(len(data))
	if l.maxBytes > 0 && size > l.maxBytes {
		return nil
	}

	e := &entry{
		key:       key,
		data:      append([]byte(nil), data...),
		expiresAt: l.now().Add(l.ttl),
	}
	l.items[key] = l.order.PushFront(e)
	l.bytes += size

	for l.overBudget() {
		l.remove(l.order.Back())
	}
	return nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		l.remove(elem)
	}
	return nil
}

func (l *Local) overBudget() bool {
	if l.order.Len() == 0 {
		return false
	}
	return (l.maxEntries > 0 && l.order.Len() > l.maxEntries) ||
		(l.maxBytes > 0 && l.bytes > l.maxBytes)
}

func (l *Local) remove(elem *list.Element) {
	e := elem.Value.(*entry)
	delete(l.items, e.key)
	l.order.Remove(elem)
	l.bytes -= int64(len(e.data))
}

// CleanExpired drops expired entries and returns how many were removed.
func (l *Local) CleanExpired() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for elem := l.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*entry).expiresAt) {
			l.remove(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

// Len returns the number of cached entries.
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.order.Len()
}

// Bytes returns the total size of the cached payloads.
func (l *Local) Bytes() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bytes
}
