package telemetry

import "sync"

// Buffer accumulates events in insertion order until a threshold is reached
type Buffer[T any] struct {
	mu        sync.Mutex
	items     []T
	threshold int
}

func NewBuffer[T any](threshold int) *Buffer[T] {
	if threshold < 1 {
		threshold = 1
	}
	return &Buffer[T]{threshold: threshold, items: make([]T, 0, threshold)}
}

// Push appends item. When the buffer reaches the threshold its contents are
// returned and the buffer is emptied; otherwise Push returns nil.
func (b *Buffer[T]) Push(item T) []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, item)
	if len(b.items) < b.threshold {
		return nil
	}
	return b.takeLocked()
}

// Drain empties the buffer and returns what it held, nil when empty
func (b *Buffer[T]) Drain() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) == 0 {
		return nil
	}
	return b.takeLocked()
}

func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

func (b *Buffer[T]) takeLocked() []T {
	batch := b.items
	b.items = make([]T, 0, b.threshold)
	return batch
}
