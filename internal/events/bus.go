// Package events fans catalog changes out to interested listeners.
//
// The Bus replaces framework-driven re-rendering: anything that shows the
// catalog (the WebSocket feed, tests) subscribes and redraws on each event.
// Publishing never blocks the writer; a listener that falls behind loses
// events and should resync from a snapshot.
package events

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/medcatalog/internal/model"
)

// DefaultBufferSize is the per-subscriber channel capacity.
const DefaultBufferSize = 16

var eventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "catalog_events_dropped_total",
		Help: "Catalog events dropped because a subscriber buffer was full",
	},
)

// Bus is an in-memory publish/subscribe hub for catalog events.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan model.CatalogEvent
	nextID      uint64
	bufferSize  int
	closed      bool
	logger      *zap.Logger
}

// NewBus creates a Bus. A non-positive bufferSize falls back to DefaultBufferSize.
func NewBus(bufferSize int, logger *zap.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Bus{
		subscribers: make(map[uint64]chan model.CatalogEvent),
		bufferSize:  bufferSize,
		logger:      logger.With(zap.String("component", "event_bus")),
	}
}

// Subscribe registers a listener. The returned func unsubscribes and closes
// the channel; calling it more than once is safe.
func (b *Bus) Subscribe() (<-chan model.CatalogEvent, func()) {
	ch := make(chan model.CatalogEvent, b.bufferSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch

	b.logger.Debug("subscriber added", zap.Int("subscribers", len(b.subscribers)))

	var once sync.Once
	return ch, func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subscribers[id]
	if !ok {
		return
	}
	delete(b.subscribers, id)
	close(ch)

	b.logger.Debug("subscriber removed", zap.Int("subscribers", len(b.subscribers)))
}

// Publish delivers event to every subscriber without blocking.
func (b *Bus) Publish(event model.CatalogEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			eventsDroppedTotal.Inc()
			b.logger.Warn("subscriber buffer full, dropping event",
				zap.Uint64("subscriber", id),
				zap.String("event_id", event.ID),
				zap.String("event_type", event.Type),
			)
		}
	}
}

// Len returns the number of active subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes every subscriber channel. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}

	b.logger.Debug("event bus closed")
}
