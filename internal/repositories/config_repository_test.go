package repositories

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidocs/internal/models"
)

func sampleConfig() *models.AiDocsConfig {
	lang := "fr"
	drift := 80
	return &models.AiDocsConfig{
		Sources: models.SourcesConfig{Code: []string{"**/*.go"}, Docs: []string{"README.md"}, APISpecs: []string{}},
		Output:  models.OutputConfig{BasePath: "docs/ai-docs", Format: models.FormatMarkdown, Naming: models.NamingKebab},
		Style:   models.StyleConfig{Language: "en", Formality: models.FormalityNeutral, Preferences: []string{}},
		Profiles: []models.Profile{
			{ID: "internal", Style: &models.ProfileStyle{Language: &lang}},
		},
		Provider:   models.ProviderConfig{MindProfile: "default", LLMProfile: "mock"},
		Thresholds: models.ThresholdsConfig{DriftScoreMinimum: &drift},
	}
}

func TestConfigRepository_LoadMissing(t *testing.T) {
	repo := NewConfigRepository(t.TempDir(), "")
	cfg, err := repo.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestConfigRepository_JSONPreservesOtherKeys(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"other": {"keep": true}}`), 0o644))

	repo := NewConfigRepository(root, "")
	assert.Equal(t, path, repo.Path())

	cfg, err := repo.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg, "no aiDocs entry yet")

	_, err = repo.Save(sampleConfig())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `{"keep": true}`, string(raw["other"]))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleConfig(), loaded)
}

func TestConfigRepository_RejectsUnknownFields(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultConfigFile), []byte(`{"aiDocs": {"bogus": 1}}`), 0o644))

	_, err := NewConfigRepository(root, "").Load()
	assert.Error(t, err)
}

func TestConfigRepository_RejectsMalformedJSON(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultConfigFile), []byte(`{"aiDocs": `), 0o644))

	_, err := NewConfigRepository(root, "").Load()
	assert.Error(t, err)
}

func TestConfigRepository_YAMLPreferredWhenPresent(t *testing.T) {
	root := t.TempDir()
	yamlPath := filepath.Join(root, "aidocs.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("output:\n  basePath: handbook\n  format: mdx\n  naming: kebab\n"), 0o644))

	repo := NewConfigRepository(root, "")
	assert.Equal(t, yamlPath, repo.Path())

	cfg, err := repo.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "handbook", cfg.Output.BasePath)
	assert.Equal(t, models.FormatMDX, cfg.Output.Format)

	_, err = repo.Save(sampleConfig())
	require.NoError(t, err)
	reloaded, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleConfig(), reloaded)
}
