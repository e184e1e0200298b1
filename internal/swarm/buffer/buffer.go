// Package buffer holds a small window of stream events so that reasoning
// emitted right after a tool call can still be shown before it.
package buffer

import (
	"github.com/bytedance/gg/gslice"

	"github.com/kiosk404/swarmscope/internal/swarm/event"
	"github.com/kiosk404/swarmscope/internal/swarm/handoff"
)

// DefaultSize is the window size used when none is configured.
const DefaultSize = 5

// Entry is a buffered event together with the tracker it should be
// described against.
type Entry struct {
	Event   event.Event
	Tracker *handoff.Tracker
}

// EventBuffer is a fixed-capacity FIFO that drains itself when full.
// It is not safe for concurrent use.
type EventBuffer struct {
	size    int
	entries []Entry
}

// New returns a buffer holding up to size events. A size of zero or less
// selects DefaultSize.
func New(size int) *EventBuffer {
	if size <= 0 {
		size = DefaultSize
	}
	return &EventBuffer{
		size:    size,
		entries: make([]Entry, 0, size),
	}
}

// Add appends ev. When the buffer has just reached capacity it is drained and
// the entries are returned in display order; otherwise Add returns nil.
func (b *EventBuffer) Add(ev event.Event, tracker *handoff.Tracker) []Entry {
	b.entries = append(b.entries, Entry{Event: ev, Tracker: tracker})
	if len(b.entries) < b.size {
		return nil
	}
	return b.drain()
}

// Flush drains whatever is buffered, regardless of fill level.
func (b *EventBuffer) Flush() []Entry {
	if len(b.entries) == 0 {
		return nil
	}
	return b.drain()
}

// Len returns the number of buffered events.
func (b *EventBuffer) Len() int { return len(b.entries) }

// Cap returns the configured window size.
func (b *EventBuffer) Cap() int { return b.size }

func (b *EventBuffer) drain() []Entry {
	out := b.reordered()
	b.entries = make([]Entry, 0, b.size)
	return out
}

// shouldReorder reports whether a tool call or handoff request is followed,
// anywhere later in the window, by a reasoning item.
func (b *EventBuffer) shouldReorder() bool {
	seenCall := false
	for _, e := range b.entries {
		if seenCall && event.IsReasoningCreated(e.Event) {
			return true
		}
		if event.IsToolCallLike(e.Event) {
			seenCall = true
		}
	}
	return false
}

// reordered returns the window in arrival order, or, when shouldReorder holds,
// the reasoning items first followed by everything else. Both partitions keep
// their relative order.
func (b *EventBuffer) reordered() []Entry {
	out := make([]Entry, 0, len(b.entries))
	if !b.shouldReorder() {
		return append(out, b.entries...)
	}
	isReasoning := func(e Entry) bool { return event.IsReasoningCreated(e.Event) }
	out = append(out, gslice.Filter(b.entries, isReasoning)...)
	out = append(out, gslice.Filter(b.entries, func(e Entry) bool { return !isReasoning(e) })...)
	return out
}
