// Package notify fans newly created urgent records out to in-process
// subscribers (alert sinks, future delivery channels).
package notify

import (
	"sync"
	"sync/atomic"

	"github.com/crisiswatch/disaster-watch/internal/models"
)

type Broadcaster struct {
	subscribers map[uint64]chan *models.DisasterRecord
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan *models.DisasterRecord),
	}
}

func (b *Broadcaster) Subscribe() (uint64, chan *models.DisasterRecord) {
	id := b.nextID.Add(1)
	ch := make(chan *models.DisasterRecord, 100) // Buffer for max posts per poll

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Publish delivers the record to every subscriber without blocking the
// ingestion path; a subscriber whose buffer is full misses the record.
func (b *Broadcaster) Publish(r *models.DisasterRecord) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- r:
		default:
			// Skip slow subscribers
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing sinks to exit gracefully
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
