package bus

import (
	"context"
	"log"
	"sync"
)

// Event is a single message fanned out to every attached viewer.
type Event struct {
	Type string
	Data any
	// Lossy marks events that may be dropped for a subscriber that is not
	// keeping up. Live telemetry is lossy; presence and lap events are not.
	Lossy bool
}

// Bus delivers published events to every live subscription without ever
// blocking the publisher. Each subscription owns its queue, so a stalled
// viewer affects nobody else.
type Bus struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}

	lossyBuffer int
	backlogWarn int
}

// New creates a bus. lossyBuffer bounds the number of lossy events queued
// per subscriber before drop-oldest kicks in; backlogWarn is the control
// event backlog at which a slow subscriber is logged.
func New(lossyBuffer, backlogWarn int) *Bus {
	if lossyBuffer < 1 {
		lossyBuffer = 1
	}
	return &Bus{
		subs:        make(map[*Subscription]struct{}),
		lossyBuffer: lossyBuffer,
		backlogWarn: backlogWarn,
	}
}

// Subscribe registers a new receiver. The subscription sees every event
// published after this call; earlier events are not replayed.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{notify: make(chan struct{}, 1)}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a receiver and releases its pending events. It is
// idempotent.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	_, ok := b.subs[sub]
	delete(b.subs, sub)
	b.mu.Unlock()
	if ok {
		sub.close()
	}
}

// Publish enqueues the event for every live subscription in publish order.
// It returns the number of subscriptions that had to drop an older lossy
// event to make room.
func (b *Bus) Publish(ev Event) int {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	dropped := 0
	for _, sub := range subs {
		if sub.push(ev, b.lossyBuffer, b.backlogWarn) {
			dropped++
		}
	}
	return dropped
}

// Subscribers reports the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Subscription is one receiver's view of the bus. Events come out of
// Receive in the exact order they were published.
type Subscription struct {
	mu     sync.Mutex
	queue  []Event
	lossy  int // lossy events currently queued
	closed bool
	warned bool

	notify chan struct{}
}

// push appends the event, evicting the oldest queued lossy event when the
// lossy bound is hit. Reports whether an event was dropped.
func (s *Subscription) push(ev Event, lossyBuffer, backlogWarn int) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}

	dropped := false
	if ev.Lossy && s.lossy >= lossyBuffer {
		for i := range s.queue {
			if s.queue[i].Lossy {
				s.queue = append(s.queue[:i], s.queue[i+1:]...)
				s.lossy--
				dropped = true
				break
			}
		}
	}

	s.queue = append(s.queue, ev)
	if ev.Lossy {
		s.lossy++
	} else if backlog := len(s.queue) - s.lossy; backlog > backlogWarn && !s.warned {
		s.warned = true
		log.Printf("bus: subscriber backlog at %d control events, consumer not draining", backlog)
	}
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return dropped
}

// Receive blocks until an event is available, the context is cancelled or
// the subscription is closed. Pending events are still delivered after
// close; the second return is false once nothing more will arrive.
func (s *Subscription) Receive(ctx context.Context) (Event, bool) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue = s.queue[1:]
			if ev.Lossy {
				s.lossy--
			}
			s.mu.Unlock()
			return ev, true
		}
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return Event{}, false
		}
		select {
		case <-ctx.Done():
			return Event{}, false
		case <-s.notify:
		}
	}
}

// Pending reports the number of queued events.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Subscription) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}
