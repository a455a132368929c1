package list

import "sync"

// Bus fans out "resource changed" events. Mutations publish the resource
// name; attached list controllers refetch.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]func()
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]func())}
}

// Subscribe registers fn for resource and returns a func that removes it.
func (b *Bus) Subscribe(resource string, fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	if b.subs[resource] == nil {
		b.subs[resource] = make(map[int]func())
	}
	b.subs[resource][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[resource], id)
	}
}

// Publish calls every subscriber of resource.
func (b *Bus) Publish(resource string) {
	b.mu.RLock()
	fns := make([]func(), 0, len(b.subs[resource]))
	for _, fn := range b.subs[resource] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}
