package otel

import (
	"fmt"
	"sync"
	"testing"
)

func scrolls(r *Ring, from, to int) {
	for y := from; y < to; y++ {
		r.add(Event{Kind: KindFeedScroll, Value: fmt.Sprint(y)})
	}
}

func values(events []Event) string {
	var s string
	for i, e := range events {
		if i > 0 {
			s += ","
		}
		s += e.Value
	}
	return s
}

func TestRingRecentBeforeFull(t *testing.T) {
	r := NewRing(8)
	if got := r.Recent(5); got != nil {
		t.Errorf("empty ring Recent = %v, want nil", got)
	}
	scrolls(r, 0, 3)

	if r.Len() != 3 || r.Cap() != 8 {
		t.Errorf("Len/Cap = %d/%d, want 3/8", r.Len(), r.Cap())
	}
	if got := values(r.Recent(2)); got != "1,2" {
		t.Errorf("Recent(2) = %s, want 1,2", got)
	}
	if got := values(r.Recent(50)); got != "0,1,2" {
		t.Errorf("Recent(50) = %s, want everything held", got)
	}
	if r.Recent(0) != nil || r.Recent(-1) != nil {
		t.Error("non-positive n should return nil")
	}
}

func TestRingOverwritesOldest(t *testing.T) {
	r := NewRing(4)
	scrolls(r, 0, 10)

	if r.Len() != 4 {
		t.Errorf("Len = %d, want 4", r.Len())
	}
	if got := values(r.Recent(4)); got != "6,7,8,9" {
		t.Errorf("Recent(4) = %s, want 6,7,8,9", got)
	}
	// window that crosses the wrap point
	if got := values(r.Recent(3)); got != "7,8,9" {
		t.Errorf("Recent(3) = %s, want 7,8,9", got)
	}
}

func TestRingExactlyFull(t *testing.T) {
	r := NewRing(3)
	scrolls(r, 0, 3)
	if got := values(r.Recent(3)); got != "0,1,2" {
		t.Errorf("Recent(3) = %s, want 0,1,2", got)
	}
}

func TestRingDefaultSize(t *testing.T) {
	if got := NewRing(0).Cap(); got != DefaultRingSize {
		t.Errorf("Cap = %d, want %d", got, DefaultRingSize)
	}
}

func TestRingTallyAfterRoundTrip(t *testing.T) {
	r := NewRing(32)
	l := NewNullLogger()
	l.SetRing(r)
	roundTrip(l)
	roundTrip(l)
	l.Close()

	tally := r.Tally()
	if tally.Kinds[KindSnap] != 2 || tally.Kinds[KindArrive] != 2 || tally.Kinds[KindReturn] != 2 {
		t.Errorf("nav kinds = %v", tally.Kinds)
	}
	if tally.Kinds[KindStoreError] != 2 {
		t.Errorf("store errors = %d, want 2", tally.Kinds[KindStoreError])
	}
	want := map[string]int{"sys": 2, "feed": 2, "nav": 6, "post": 2, "store": 2}
	for sub, n := range want {
		if tally.Subsystems[sub] != n {
			t.Errorf("Subsystems[%s] = %d, want %d", sub, tally.Subsystems[sub], n)
		}
	}
	if len(tally.Subsystems) != len(want) {
		t.Errorf("Subsystems = %v", tally.Subsystems)
	}
}

func TestRingTallyOnlyCountsHeld(t *testing.T) {
	r := NewRing(2)
	r.add(Event{Kind: KindSnap})
	r.add(Event{Kind: KindArrive})
	r.add(Event{Kind: KindReturn})

	tally := r.Tally()
	if tally.Kinds[KindSnap] != 0 || tally.Kinds[KindReturn] != 1 || tally.Subsystems["nav"] != 2 {
		t.Errorf("tally = %+v", tally)
	}
}

func TestRingConcurrentUse(t *testing.T) {
	r := NewRing(64)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			scrolls(r, 0, 500)
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = r.Recent(10)
				_ = r.Tally()
				_ = r.Len()
			}
		}()
	}
	wg.Wait()
	if r.Len() != 64 {
		t.Errorf("Len = %d, want 64", r.Len())
	}
}
