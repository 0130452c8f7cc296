package otel

import "sync"

// DefaultRingSize is used when NewRing is given a non-positive size.
const DefaultRingSize = 256

// Ring holds the most recent events for the debug overlay. Safe for use
// by the Logger's writer goroutine and the UI at the same time.
type Ring struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
}

func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{events: make([]Event, size)}
}

// add stores e over the oldest event once the ring is full.
func (r *Ring) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = e
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.full = true
	}
}

func (r *Ring) lenLocked() int {
	if r.full {
		return len(r.events)
	}
	return r.next
}

func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lenLocked()
}

func (r *Ring) Cap() int { return len(r.events) }

// Recent returns up to n events, oldest first.
func (r *Ring) Recent(n int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if held := r.lenLocked(); n > held {
		n = held
	}
	if n <= 0 {
		return nil
	}
	out := make([]Event, n)
	first := r.next - n
	for i := range out {
		out[i] = r.events[(first+i+len(r.events))%len(r.events)]
	}
	return out
}

// Tally counts the held events by kind and by subsystem.
type Tally struct {
	Kinds      map[EventKind]int
	Subsystems map[string]int
}

func (r *Ring) Tally() Tally {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := Tally{Kinds: map[EventKind]int{}, Subsystems: map[string]int{}}
	for _, e := range r.events[:r.lenLocked()] {
		t.Kinds[e.Kind]++
		t.Subsystems[e.Kind.Subsystem()]++
	}
	return t
}
