// Package events implements the auth-state broadcast that keeps
// independently rendered UI regions in sync.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Bus is a payload-free, synchronous broadcast. Listeners re-query the
// session themselves when notified.
//
// Notify invokes every subscriber registered at the start of a pass once,
// in registration order, and returns after the pass. A Notify that arrives
// while a pass is running (from a subscriber or another goroutine) does not
// recurse: it is folded into a single follow-up pass run by the caller
// that started dispatching.
type Bus struct {
	mu          sync.Mutex
	subs        []*subscription
	dispatching bool
	pending     bool
	log         zerolog.Logger
}

type subscription struct {
	handler func()
	active  atomic.Bool
}

// NewBus returns a Bus with no subscribers.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{log: log}
}

// Subscribe registers handler and returns the function that removes it.
// Removal is idempotent and applies immediately, including to a pass in
// progress.
func (b *Bus) Subscribe(handler func()) (unsubscribe func()) {
	s := &subscription{handler: handler}
	s.active.Store(true)

	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.active.Store(false)
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, cur := range b.subs {
				if cur == s {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// Notify broadcasts a session change.
func (b *Bus) Notify() {
	b.mu.Lock()
	if b.dispatching {
		b.pending = true
		b.mu.Unlock()
		return
	}
	b.dispatching = true

	for {
		snapshot := make([]*subscription, len(b.subs))
		copy(snapshot, b.subs)
		b.pending = false
		b.mu.Unlock()

		for _, s := range snapshot {
			if s.active.Load() {
				b.invoke(s.handler)
			}
		}

		b.mu.Lock()
		if !b.pending {
			break
		}
	}

	b.dispatching = false
	b.mu.Unlock()
}

// Len returns the number of registered subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) invoke(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Msg("auth event subscriber panicked")
		}
	}()
	handler()
}
