package mocks

import (
	"context"

	"aidocs/internal/models"
)

type GeneratorMock struct {
	GenerateSectionsFunc func(ctx context.Context, req models.GenerationRequest) (*models.GenerationBatch, error)

	Calls    int
	Requests []models.GenerationRequest
}

func (m *GeneratorMock) GenerateSections(ctx context.Context, req models.GenerationRequest) (*models.GenerationBatch, error) {
	m.Calls++
	m.Requests = append(m.Requests, req)
	if m.GenerateSectionsFunc != nil {
		return m.GenerateSectionsFunc(ctx, req)
	}
	return &models.GenerationBatch{Sections: []models.GeneratedSectionResult{}}, nil
}

// Content returns a pointer to s for building GeneratedSectionResult values.
func Content(s string) *string {
	return &s
}
