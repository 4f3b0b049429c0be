package events

import (
	"context"
	"sync"
)

// Sink receives lifecycle events. Emit is fire-and-forget: sinks must not
// panic and their failures never reach the caller.
type Sink interface {
	Emit(ctx context.Context, evt LifecycleEvent)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, evt LifecycleEvent)

func (f SinkFunc) Emit(ctx context.Context, evt LifecycleEvent) {
	if f != nil {
		f(ctx, evt)
	}
}

// Nop discards every event.
var Nop Sink = SinkFunc(nil)

type multiSink []Sink

// Multi fans events out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multiSink) Emit(ctx context.Context, evt LifecycleEvent) {
	if evt.RunID == "" {
		evt.RunID = RunFromContext(ctx)
	}
	for _, s := range m {
		s.Emit(ctx, evt)
	}
}

// Recorder keeps every emitted event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []LifecycleEvent
}

func (r *Recorder) Emit(_ context.Context, evt LifecycleEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *Recorder) Events() []LifecycleEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LifecycleEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Statuses returns the status sequence recorded for step.
func (r *Recorder) Statuses(step string) []Status {
	var out []Status
	for _, evt := range r.Events() {
		if evt.Step == step {
			out = append(out, evt.Status)
		}
	}
	return out
}
