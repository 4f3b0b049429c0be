package mocks

import (
	"aidocs/internal/models"
)

// ConfigServiceMock serves a fixed config.
type ConfigServiceMock struct {
	Config   *models.AiDocsConfig
	LoadErr  error
	SaveFunc func(cfg *models.AiDocsConfig) (string, error)
	ConfPath string
}

func (m *ConfigServiceMock) Load() (*models.AiDocsConfig, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Config, nil
}

func (m *ConfigServiceMock) LoadPersisted() (*models.AiDocsConfig, error) {
	return m.Load()
}

func (m *ConfigServiceMock) Save(cfg *models.AiDocsConfig) (string, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(cfg)
	}
	m.Config = cfg
	return m.ConfPath, nil
}

func (m *ConfigServiceMock) Path() string {
	return m.ConfPath
}
