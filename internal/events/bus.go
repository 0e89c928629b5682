// Package events implements the in-memory publish/subscribe bus that fans
// poll lifecycle events out to connected stream subscribers. The bus is
// single-process and transient: nothing is persisted and there is no replay.
package events

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/pollstream/pollstream-api/internal/logger"
	"github.com/pollstream/pollstream-api/internal/metrics"
)

// DefaultQueueSize bounds a subscriber queue when no size is configured.
const DefaultQueueSize = 100

// Bus delivers every published event to every currently subscribed listener
// without ever blocking the publisher. Each subscriber owns a bounded FIFO
// queue; slow subscribers lose their oldest events, never recent ones.
type Bus struct {
	mu        sync.Mutex
	subs      map[*Subscription]struct{}
	queueSize int
	log       *log.Logger
}

// NewBus creates a bus whose subscriber queues hold up to queueSize events.
func NewBus(queueSize int) *Bus {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Bus{
		subs:      make(map[*Subscription]struct{}),
		queueSize: queueSize,
		log:       logger.Bus(),
	}
}

// Subscribe registers a new bounded queue and returns its handle. The caller
// must call Close on the handle when done; events published after Close are
// no longer delivered to it.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		ch:  make(chan Event, b.queueSize),
		bus: b,
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	count := len(b.subs)
	b.mu.Unlock()

	metrics.AddSubscribers(1)
	b.log.Debug("subscriber registered", "subscribers", count)
	return sub
}

// Publish fans the event out to all current subscribers. The mutex guards
// only the membership snapshot, not the queues. Publishing with zero
// subscribers is a no-op; Publish never waits on a consumer and never fails.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	snapshot := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		snapshot = append(snapshot, sub)
	}
	b.mu.Unlock()

	metrics.IncEventPublished(string(ev.Type))

	for _, sub := range snapshot {
		for {
			select {
			case sub.ch <- ev:
			default:
				// Queue full: evict the oldest queued event and retry, so
				// the newest event is always admitted even when a racing
				// publisher refills the freed slot first. The queue may
				// have been drained between the failed send and the
				// eviction; an empty receive means nothing to evict.
				select {
				case <-sub.ch:
					metrics.IncEventDropped()
					b.log.Debug("event evicted for slow subscriber", "type", ev.Type)
				default:
				}
				continue
			}
			break
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub)
	count := len(b.subs)
	b.mu.Unlock()

	metrics.AddSubscribers(-1)
	b.log.Debug("subscriber removed", "subscribers", count)
}

// Subscription is one subscriber's bounded event queue. It is owned
// exclusively by the consuming connection.
type Subscription struct {
	ch   chan Event
	bus  *Bus
	once sync.Once
}

// Events returns the receive side of the queue. The channel is never closed
// by the bus; consumers should select against their own cancellation signal.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close deregisters the subscription. Events already queued remain readable
// but no new ones arrive. Close is idempotent and safe under concurrent
// Publish calls.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.unsubscribe(s)
	})
}
