package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"aidocs/internal/events"
	"aidocs/internal/models"
	"aidocs/internal/repositories"
)

// Runtime carries the collaborators shared by the plan, generate and audit
// use cases. Nothing in it is a process-wide singleton.
type Runtime struct {
	Config     ConfigService
	Docs       repositories.DocsRepository
	Sources    SourceResolver
	Context    ContextProviderResolver
	Generators GeneratorResolver
	Git        ChangeDetector
	Runs       repositories.RunRepository
	Sink       events.Sink
	Log        zerolog.Logger
	Now        func() time.Time
}

func (rt *Runtime) now() time.Time {
	if rt.Now != nil {
		return rt.Now()
	}
	return time.Now()
}

func (rt *Runtime) emit(ctx context.Context, evt events.LifecycleEvent) {
	if rt.Sink == nil {
		return
	}
	if evt.RunID == "" {
		evt.RunID = events.RunFromContext(ctx)
	}
	rt.Sink.Emit(ctx, evt)
}

// runHandle tracks one ledger entry. The ledger is best effort: failures are
// logged and never fail the run.
type runHandle struct {
	rt *Runtime
	id string
}

// beginRun starts a ledger entry with a fresh run id. Nested runs, such as a
// plan built on demand by generate, get their own id.
func (rt *Runtime) beginRun(ctx context.Context, kind models.RunKind, profile string) (context.Context, *runHandle) {
	id := uuid.NewString()
	ctx = events.WithRun(ctx, id)
	h := &runHandle{rt: rt, id: id}
	if rt.Runs != nil {
		err := rt.Runs.Create(ctx, &models.RunRecord{
			ID:        id,
			Kind:      kind,
			Profile:   profile,
			Status:    models.RunRunning,
			StartedAt: rt.now(),
		})
		if err != nil {
			rt.Log.Warn().Err(err).Str("run", id).Msg("record run start")
		}
	}
	return ctx, h
}

func (h *runHandle) finish(ctx context.Context, summary string, err error) {
	if h == nil || h.rt.Runs == nil {
		return
	}
	status := models.RunSuccess
	var msg string
	if err != nil {
		status = models.RunError
		msg = err.Error()
	}
	if ferr := h.rt.Runs.Finish(context.WithoutCancel(ctx), h.id, status, summary, msg, h.rt.now()); ferr != nil {
		h.rt.Log.Warn().Err(ferr).Str("run", h.id).Msg("record run finish")
	}
}
