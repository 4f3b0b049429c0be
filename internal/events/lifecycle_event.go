package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the phase a lifecycle step reports.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Step names emitted by the use cases.
const (
	StepInit     = "ai-docs.init"
	StepPlan     = "ai-docs.plan"
	StepGenerate = "ai-docs.generate"
	StepAudit    = "ai-docs.audit"
)

// LifecycleEvent is a progress signal for a plan, generate or audit run.
type LifecycleEvent struct {
	ID        string         `json:"id"`
	Step      string         `json:"step"`
	Status    Status         `json:"status"`
	RunID     string         `json:"runId,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type contextKey string

const runContextKey contextKey = "aidocs/events/run"

// WithRun returns a derived context annotated with the given run id so sinks
// can correlate events of one run.
func WithRun(ctx context.Context, runID string) context.Context {
	if strings.TrimSpace(runID) == "" {
		return ctx
	}
	return context.WithValue(ctx, runContextKey, runID)
}

// RunFromContext extracts the run id associated with ctx.
func RunFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(runContextKey).(string); ok {
		return v
	}
	return ""
}

func NewLifecycleEvent(step string, status Status, meta map[string]any) LifecycleEvent {
	return LifecycleEvent{
		ID:        uuid.NewString(),
		Step:      step,
		Status:    status,
		Meta:      meta,
		Timestamp: time.Now(),
	}
}

// Running creates a running LifecycleEvent.
func Running(step string, meta map[string]any) LifecycleEvent {
	return NewLifecycleEvent(step, StatusRunning, meta)
}

// Success creates a success LifecycleEvent.
func Success(step string, meta map[string]any) LifecycleEvent {
	return NewLifecycleEvent(step, StatusSuccess, meta)
}

// Failure creates an error LifecycleEvent carrying err in its meta.
func Failure(step string, err error, meta map[string]any) LifecycleEvent {
	if meta == nil {
		meta = map[string]any{}
	}
	if err != nil {
		meta["error"] = err.Error()
	}
	return NewLifecycleEvent(step, StatusError, meta)
}
