package persistence

import (
	"log"
	"sync"

	"IdleTycoon/internal/model"
)

// Writer saves snapshots on its own goroutine so callers never wait on I/O.
// Only the most recent unsaved snapshot is kept.
type Writer struct {
	store   Store
	mu      sync.Mutex
	closed  bool
	pending chan model.SaveSnapshot
	done    chan struct{}
}

func NewWriter(store Store) *Writer {
	w := &Writer{
		store:   store,
		pending: make(chan model.SaveSnapshot, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit queues snap, replacing any snapshot not yet written. It never blocks
// and is a no-op after Close.
func (w *Writer) Submit(snap model.SaveSnapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case <-w.pending:
	default:
	}
	w.pending <- snap
}

// Close writes any queued snapshot and stops the writer goroutine.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.pending)
	w.mu.Unlock()
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for snap := range w.pending {
		if err := w.store.Save(snap); err != nil {
			log.Printf("[ERROR] save game: %v", err)
		}
	}
}
