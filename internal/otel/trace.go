package otel

import (
	"fmt"
	"os"
	"strconv"
)

// TraceEnv turns on message tracing for every run, like --trace.
const TraceEnv = "ORBIT_TRACE"

// TraceFromEnv reads TraceEnv. Any non-empty value other than a false
// boolean ("0", "false") turns tracing on.
func TraceFromEnv() bool {
	v := os.Getenv(TraceEnv)
	if v == "" {
		return false
	}
	on, err := strconv.ParseBool(v)
	return err != nil || on
}

// SetTracing turns per-message tracing on or off.
func (l *Logger) SetTracing(on bool) {
	if l == nil {
		return
	}
	l.tracing.Store(on)
}

// Trace records the type of a UI message while tracing is on.
func (l *Logger) Trace(comp string, msg any) {
	if l == nil || !l.tracing.Load() {
		return
	}
	l.Emit(Event{Level: LevelDebug, Kind: KindMsgReceived, Comp: comp, Value: fmt.Sprintf("%T", msg)})
}
