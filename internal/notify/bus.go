// Package notify delivers provider change notifications to in-process subscribers.
//
// A Bus implements provider.ChangeNotifier. Publishing never blocks: each
// subscriber owns a buffered channel and a notification that does not fit is
// dropped for that subscriber and counted.
package notify

import (
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mrlokans/bookprovider/internal/provider"
)

// DefaultBuffer is the channel capacity given to subscribers that ask for none.
const DefaultBuffer = 16

// Subscription receives the identifiers of changed resources on C until Close.
type Subscription struct {
	C <-chan provider.ResourceID

	id     uint64
	ch     chan provider.ResourceID
	filter provider.ResourceID
	deep   bool
	bus    *Bus
	once   sync.Once
}

// Close unsubscribes and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.remove(s.id)
	})
}

func (s *Subscription) wants(changed provider.ResourceID) bool {
	if s.filter.IsZero() {
		return true
	}
	if s.filter.Authority() != changed.Authority() {
		return false
	}
	if s.filter.Path() == changed.Path() {
		return true
	}
	if !s.deep {
		return false
	}
	return s.filter.Path() == "" || strings.HasPrefix(changed.Path(), s.filter.Path()+"/")
}

// Bus fans change notifications out to subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64

	dropped   atomic.Int64
	delivered atomic.Int64
}

func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]*Subscription)}
}

// Subscribe registers interest in filter. With descendants set, changes to paths
// below filter match too. A zero filter matches every change. buffer <= 0 means
// DefaultBuffer.
func (b *Bus) Subscribe(filter provider.ResourceID, descendants bool, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan provider.ResourceID, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		C:      ch,
		id:     b.nextID,
		ch:     ch,
		filter: filter,
		deep:   descendants,
		bus:    b,
	}
	b.subs[sub.id] = sub
	return sub
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// Publish hands changed to every interested subscriber without waiting.
// It returns the number of subscribers that received it.
func (b *Bus) Publish(changed provider.ResourceID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sent := 0
	for _, sub := range b.subs {
		if !sub.wants(changed) {
			continue
		}
		select {
		case sub.ch <- changed:
			sent++
		default:
			if n := b.dropped.Add(1); n == 1 || n%100 == 0 {
				log.Printf("[NOTIFY] subscriber %d is full, dropped %s (%d dropped so far)", sub.id, changed, n)
			}
		}
	}
	b.delivered.Add(int64(sent))
	return sent
}

// NotifyChange implements provider.ChangeNotifier.
func (b *Bus) NotifyChange(id provider.ResourceID) {
	b.Publish(id)
}

// Dropped returns how many notifications were discarded because a subscriber was full.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// Delivered returns how many notifications reached a subscriber channel.
func (b *Bus) Delivered() int64 {
	return b.delivered.Load()
}

// Subscribers returns the number of open subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
