package otel

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// queueSize bounds the events waiting for the writer. Emit never blocks
// the UI; past this, events are counted as lost.
const queueSize = 4096

// Logger appends events to a JSONL writer from its own goroutine and
// mirrors them into an attached Ring. A nil *Logger discards everything,
// so components may hold one unset.
type Logger struct {
	session string
	out     io.Writer
	report  io.Writer // where Close reports lost events

	ring    atomic.Pointer[Ring]
	lost    atomic.Uint64
	tracing atomic.Bool

	// mu orders Emit against Close: Emit sends under the read lock, Close
	// closes the queue under the write lock.
	mu      sync.RWMutex
	stopped bool
	queue   chan Event
	done    chan struct{}
}

// NewLogger starts a Logger writing to w. Close flushes and stops it.
func NewLogger(w io.Writer) *Logger {
	l := &Logger{
		session: uuid.NewString(),
		out:     w,
		report:  os.Stderr,
		queue:   make(chan Event, queueSize),
		done:    make(chan struct{}),
	}
	go l.write()
	return l
}

// NewNullLogger keeps the Ring fed but writes nowhere.
func NewNullLogger() *Logger {
	return NewLogger(io.Discard)
}

// SessionID is stamped on every event from this Logger.
func (l *Logger) SessionID() string {
	if l == nil {
		return ""
	}
	return l.session
}

// SetRing mirrors later events into r. Nil detaches.
func (l *Logger) SetRing(r *Ring) {
	if l == nil {
		return
	}
	l.ring.Store(r)
}

func (l *Logger) write() {
	defer close(l.done)
	enc := json.NewEncoder(l.out)
	for e := range l.queue {
		if err := enc.Encode(e); err != nil {
			l.lost.Add(1)
		}
		if r := l.ring.Load(); r != nil {
			r.add(e)
		}
	}
}

// Emit queues e for the log. Time defaults to now. Events emitted after
// Close, or while the queue is full, are lost.
func (l *Logger) Emit(e Event) {
	if l == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = l.session

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		l.lost.Add(1)
		return
	}
	select {
	case l.queue <- e:
	default:
		l.lost.Add(1)
	}
}

func (l *Logger) Info(kind EventKind, comp, msg string) {
	l.Emit(Event{Level: LevelInfo, Kind: kind, Comp: comp, Msg: msg})
}

func (l *Logger) Debug(kind EventKind, comp, msg string) {
	l.Emit(Event{Level: LevelDebug, Kind: kind, Comp: comp, Msg: msg})
}

func (l *Logger) Warn(kind EventKind, comp, msg string) {
	l.Emit(Event{Level: LevelWarn, Kind: kind, Comp: comp, Msg: msg})
}

// Error records err's text. A nil err leaves Err empty.
func (l *Logger) Error(kind EventKind, comp string, err error) {
	e := Event{Level: LevelError, Kind: kind, Comp: comp}
	if err != nil {
		e.Err = err.Error()
	}
	l.Emit(e)
}

// Close drains the queue and stops the writer. Lost events are reported
// once. Further calls do nothing.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	if n := l.lost.Load(); n > 0 {
		fmt.Fprintf(l.report, "orbit: %d events lost in session %s\n", n, l.session)
	}
}
