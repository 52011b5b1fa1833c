// Package events provides an in-process pub/sub bus for audit stage
// events, so monitors can observe pipeline progress without reading the
// audit store.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/guardrail-labs/sentinel/internal/core"
)

// Subscriber represents one subscription.
type subscriber struct {
	ch     chan core.StageEvent
	stages map[string]bool // empty means all stages
}

// Bus fans stage events out to subscribers. Publishing never blocks:
// slow subscribers drop events and the drop count is tracked.
type Bus struct {
	mu           sync.RWMutex
	subscribers  []*subscriber
	bufferSize   int
	droppedCount int64
	closed       bool
}

// NewBus creates a bus with the given per-subscriber buffer size.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &Bus{bufferSize: bufferSize}
}

// Subscribe registers for events of the given stages. With no stages it
// receives everything.
func (b *Bus) Subscribe(stages ...string) <-chan core.StageEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{
		ch:     make(chan core.StageEvent, b.bufferSize),
		stages: make(map[string]bool),
	}
	for _, s := range stages {
		sub.stages[s] = true
	}
	b.subscribers = append(b.subscribers, sub)
	return sub.ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bus) Unsubscribe(ch <-chan core.StageEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := make([]*subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		if sub.ch != ch {
			kept = append(kept, sub)
		} else {
			close(sub.ch)
		}
	}
	b.subscribers = kept
}

// Publish delivers an event to matching subscribers without blocking.
func (b *Bus) Publish(ev core.StageEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	for _, sub := range b.subscribers {
		if len(sub.stages) > 0 && !sub.stages[ev.Stage] {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			atomic.AddInt64(&b.droppedCount, 1)
		}
	}
}

// Dropped returns the number of events dropped due to full buffers.
func (b *Bus) Dropped() int64 {
	return atomic.LoadInt64(&b.droppedCount)
}

// Close closes the bus and all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subscribers {
		close(sub.ch)
	}
	b.subscribers = nil
}
