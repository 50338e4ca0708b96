// Package dedupe tracks keys that must appear at most once, such as the
// (team, date) pair of a game record.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if the key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Occurrences returns how many times key was offered to SeenAndRecord.
	Occurrences(ctx context.Context, key string) int

	// Duplicates returns every key offered more than once, in first-seen order.
	Duplicates(ctx context.Context) []string

	// Size returns the number of distinct keys tracked.
	Size() int
}

// inMemoryDeduper implements Deduper with a map and an insertion-ordered key list.
type inMemoryDeduper struct {
	mu    sync.Mutex
	seen  map[string]int
	order []string
	hint  int
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int, d.hint)
	d.order = make([]string, 0, d.hint)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.seen[key]
	if n == 0 {
		d.order = append(d.order, key)
	}
	d.seen[key] = n + 1
	return n > 0
}

func (d *inMemoryDeduper) Occurrences(_ context.Context, key string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen[key]
}

func (d *inMemoryDeduper) Duplicates(_ context.Context) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []string
	for _, k := range d.order {
		if d.seen[k] > 1 {
			out = append(out, k)
		}
	}
	return out
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
