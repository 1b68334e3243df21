// Package notify carries change notifications from the lifecycle store to
// any number of in-process listeners.
package notify

import (
	"sync"
	"time"

	"github.com/editorial-lifecycle-api/internal/models"
	"github.com/rs/zerolog"
)

// Change summarises one completed mutation.
type Change struct {
	Reason      string          `json:"reason"`
	Collections []models.Status `json:"collections"`
	Count       int             `json:"count"`
	At          time.Time       `json:"at"`
}

// Listener receives changes synchronously on the publishing goroutine.
type Listener func(Change)

// Bus fans a Change out to every subscribed listener.
type Bus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[uint64]Listener
	order     []uint64
	log       zerolog.Logger
}

// NewBus creates a bus with no listeners.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		listeners: make(map[uint64]Listener),
		log:       log.With().Str("component", "notify").Logger(),
	}
}

// Subscribe registers l and returns a function removing it again. The
// returned function is safe to call more than once.
func (b *Bus) Subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[id] = l
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.listeners, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i:i], b.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of subscribed listeners.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Publish delivers c to a snapshot of the current listeners in subscription
// order. A listener that panics is logged and skipped.
func (b *Bus) Publish(c Change) {
	b.mu.RLock()
	snapshot := make([]Listener, 0, len(b.order))
	for _, id := range b.order {
		snapshot = append(snapshot, b.listeners[id])
	}
	b.mu.RUnlock()

	for _, l := range snapshot {
		b.deliver(l, c)
	}
}

func (b *Bus) deliver(l Listener, c Change) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("reason", c.Reason).
				Msg("Change listener panicked - recovered")
		}
	}()
	l(c)
}
