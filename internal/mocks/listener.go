package mocks

import (
	"sync"

	"github.com/editorial-lifecycle-api/internal/notify"
)

// RecordingListener collects every change it is handed.
type RecordingListener struct {
	mu      sync.Mutex
	changes []notify.Change
}

func NewRecordingListener() *RecordingListener {
	return &RecordingListener{}
}

// Listen is the notify.Listener to subscribe.
func (r *RecordingListener) Listen(c notify.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *RecordingListener) Changes() []notify.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Change(nil), r.changes...)
}

func (r *RecordingListener) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

// Reasons lists the Reason of each recorded change in order.
func (r *RecordingListener) Reasons() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.changes))
	for i, c := range r.changes {
		out[i] = c.Reason
	}
	return out
}

func (r *RecordingListener) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = nil
}
