package mocks

import (
	"context"

	"aidocs/internal/models"
)

type ContextProviderMock struct {
	FetchContextFunc func(ctx context.Context, req models.ContextRequest) (*models.ContextSnapshot, error)

	Calls    int
	Requests []models.ContextRequest
}

func (m *ContextProviderMock) FetchContext(ctx context.Context, req models.ContextRequest) (*models.ContextSnapshot, error) {
	m.Calls++
	m.Requests = append(m.Requests, req)
	if m.FetchContextFunc != nil {
		return m.FetchContextFunc(ctx, req)
	}
	return &models.ContextSnapshot{}, nil
}
