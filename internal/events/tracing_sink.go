package events

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingSink turns running -> success/error transitions into spans, one span
// per step and run.
type TracingSink struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[string]trace.Span
}

func NewTracingSink(tracer trace.Tracer) *TracingSink {
	return &TracingSink{tracer: tracer, spans: make(map[string]trace.Span)}
}

func (s *TracingSink) Emit(ctx context.Context, evt LifecycleEvent) {
	runID := evt.RunID
	if runID == "" {
		runID = RunFromContext(ctx)
	}
	key := evt.Step + "/" + runID

	s.mu.Lock()
	defer s.mu.Unlock()

	switch evt.Status {
	case StatusRunning:
		if _, open := s.spans[key]; open {
			return
		}
		_, span := s.tracer.Start(ctx, evt.Step, trace.WithTimestamp(evt.Timestamp))
		if runID != "" {
			span.SetAttributes(attribute.String("aidocs.run_id", runID))
		}
		span.SetAttributes(metaAttributes(evt.Meta)...)
		s.spans[key] = span
	case StatusSuccess, StatusError:
		span, open := s.spans[key]
		if !open {
			return
		}
		delete(s.spans, key)
		span.SetAttributes(metaAttributes(evt.Meta)...)
		if evt.Status == StatusError {
			msg, _ := evt.Meta["error"].(string)
			span.SetStatus(codes.Error, msg)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End(trace.WithTimestamp(evt.Timestamp))
	}
}

func metaAttributes(meta map[string]any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(meta))
	for k, v := range meta {
		key := "aidocs." + k
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(key, val))
		case int:
			attrs = append(attrs, attribute.Int(key, val))
		case bool:
			attrs = append(attrs, attribute.Bool(key, val))
		case float64:
			attrs = append(attrs, attribute.Float64(key, val))
		default:
			attrs = append(attrs, attribute.String(key, fmt.Sprint(val)))
		}
	}
	return attrs
}
