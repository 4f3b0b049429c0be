package mocks

import (
	"context"
	"sync"
	"time"

	"aidocs/internal/models"
)

// RunRepositoryMock keeps runs in memory unless a func overrides the call.
type RunRepositoryMock struct {
	CreateFunc func(ctx context.Context, run *models.RunRecord) error
	FinishFunc func(ctx context.Context, id string, status models.RunStatus, summary, errMsg string, finishedAt time.Time) error
	GetFunc    func(ctx context.Context, id string) (*models.RunRecord, error)
	ListFunc   func(ctx context.Context, kind models.RunKind, limit int) ([]models.RunRecord, error)

	mu   sync.Mutex
	Runs []models.RunRecord
}

func (m *RunRepositoryMock) Create(ctx context.Context, run *models.RunRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, run)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs = append(m.Runs, *run)
	return nil
}

func (m *RunRepositoryMock) Finish(ctx context.Context, id string, status models.RunStatus, summary, errMsg string, finishedAt time.Time) error {
	if m.FinishFunc != nil {
		return m.FinishFunc(ctx, id, status, summary, errMsg, finishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Runs {
		if m.Runs[i].ID == id {
			m.Runs[i].Status = status
			m.Runs[i].Summary = summary
			m.Runs[i].Error = errMsg
			t := finishedAt
			m.Runs[i].FinishedAt = &t
		}
	}
	return nil
}

func (m *RunRepositoryMock) Get(ctx context.Context, id string) (*models.RunRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Runs {
		if m.Runs[i].ID == id {
			run := m.Runs[i]
			return &run, nil
		}
	}
	return nil, nil
}

func (m *RunRepositoryMock) List(ctx context.Context, kind models.RunKind, limit int) ([]models.RunRecord, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, kind, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.RunRecord{}
	for _, r := range m.Runs {
		if kind == "" || r.Kind == kind {
			out = append(out, r)
		}
	}
	return out, nil
}
