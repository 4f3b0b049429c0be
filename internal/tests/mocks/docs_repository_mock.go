package mocks

import (
	"aidocs/internal/models"
	"aidocs/internal/repositories"
)

// DocsRepositoryMock delegates to an embedded repository and lets tests
// override the write paths.
type DocsRepositoryMock struct {
	repositories.DocsRepository

	WriteDocFunc        func(path string, content []byte, opts repositories.WriteOptions) (string, error)
	StageSuggestionFunc func(sectionID string, content []byte) (string, error)
	LoadPlanFunc        func(path string) (*models.DocsPlan, error)

	Writes []string
	Staged []string
}

func (m *DocsRepositoryMock) WriteDoc(path string, content []byte, opts repositories.WriteOptions) (string, error) {
	m.Writes = append(m.Writes, path)
	if m.WriteDocFunc != nil {
		return m.WriteDocFunc(path, content, opts)
	}
	if m.DocsRepository == nil {
		return "", nil
	}
	return m.DocsRepository.WriteDoc(path, content, opts)
}

func (m *DocsRepositoryMock) StageSuggestion(sectionID string, content []byte) (string, error) {
	m.Staged = append(m.Staged, sectionID)
	if m.StageSuggestionFunc != nil {
		return m.StageSuggestionFunc(sectionID, content)
	}
	if m.DocsRepository == nil {
		return sectionID, nil
	}
	return m.DocsRepository.StageSuggestion(sectionID, content)
}

func (m *DocsRepositoryMock) LoadPlan(path string) (*models.DocsPlan, error) {
	if m.LoadPlanFunc != nil {
		return m.LoadPlanFunc(path)
	}
	if m.DocsRepository == nil {
		return nil, nil
	}
	return m.DocsRepository.LoadPlan(path)
}
