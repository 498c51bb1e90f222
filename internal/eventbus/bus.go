// Package eventbus provides an optional, best-effort fan-out of journal
// events to subscribers such as the observability server's websocket
// stream. It sits strictly downstream of a successful journal append and
// is never on the coordinator's synchronous decision path.
package eventbus

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kestrel-quant/decisioncore/pkg/types"
)

// Handler receives a published journal event. Handlers run on the bus's
// own goroutine and must not block for long.
type Handler func(types.JournalEvent)

// Bus is a minimal pub-sub fan-out: every subscriber receives every
// published event. Subscribers are kept in a map by subscription ID, so the
// order in which handlers are called for one event is not defined.
type Bus struct {
	logger *zap.Logger

	mu          sync.RWMutex
	subscribers map[int]Handler
	nextID      int

	queue chan types.JournalEvent
	done  chan struct{}
}

// New creates a Bus with a bounded internal queue of the given capacity and
// starts its dispatch goroutine. Publish never blocks the caller once the
// queue has room; a full queue drops the event and logs a warning rather
// than applying backpressure to the trading cycle.
func New(logger *zap.Logger, queueCapacity int) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueCapacity <= 0 {
		queueCapacity = 256
	}
	b := &Bus{
		logger:      logger.Named("eventbus"),
		subscribers: make(map[int]Handler),
		queue:       make(chan types.JournalEvent, queueCapacity),
		done:        make(chan struct{}),
	}
	go b.dispatch()
	return b
}

func (b *Bus) dispatch() {
	for {
		select {
		case evt := <-b.queue:
			b.mu.RLock()
			handlers := make([]Handler, 0, len(b.subscribers))
			for _, h := range b.subscribers {
				handlers = append(handlers, h)
			}
			b.mu.RUnlock()
			for _, h := range handlers {
				h(evt)
			}
		case <-b.done:
			return
		}
	}
}

// Subscribe registers handler and returns an ID usable with Unsubscribe.
func (b *Bus) Subscribe(handler Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = handler
	return id
}

// Unsubscribe removes a previously registered handler.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, id)
}

// Publish enqueues event for dispatch to all current subscribers. Never
// blocks: a full queue drops the event.
func (b *Bus) Publish(event types.JournalEvent) {
	select {
	case b.queue <- event:
	default:
		b.logger.Warn("eventbus queue full, dropping event", zap.Uint64("seq", event.Seq))
	}
}

// Close stops the dispatch goroutine. Pending queued events are discarded.
func (b *Bus) Close() {
	close(b.done)
}
