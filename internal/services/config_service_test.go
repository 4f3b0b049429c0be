package services_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidocs/internal/models"
	"aidocs/internal/repositories"
	"aidocs/internal/services"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func baseConfig() *models.AiDocsConfig {
	cfg := services.DefaultConfig()
	cfg.Style.Preferences = []string{models.PreferenceExamples}
	formal := models.FormalityFormal
	cfg.Profiles = []models.Profile{
		{ID: "p", Style: &models.ProfileStyle{Language: strPtr("fr")}},
		{ID: "ops", Style: &models.ProfileStyle{Formality: &formal}, Provider: &models.ProfileProvider{LLMProfile: strPtr("openai|gpt-4.1")}},
	}
	return cfg
}

func TestMergeProfile_UnknownReturnsBase(t *testing.T) {
	base := baseConfig()
	snapshot := baseConfig()

	merged := services.MergeProfile(base, "nonexistent")
	assert.Equal(t, snapshot, merged)
}

func TestMergeProfile_OverlaysOnlyGivenFields(t *testing.T) {
	base := baseConfig()

	merged := services.MergeProfile(base, "p")
	assert.Equal(t, "fr", merged.Style.Language)
	assert.Equal(t, base.Style.Formality, merged.Style.Formality)
	assert.Equal(t, base.Style.Preferences, merged.Style.Preferences)
	assert.Equal(t, base.Provider, merged.Provider)
	assert.Equal(t, "en", base.Style.Language, "base must not change")

	ops := services.MergeProfile(base, "ops")
	assert.Equal(t, models.FormalityFormal, ops.Style.Formality)
	assert.Equal(t, "openai|gpt-4.1", ops.Provider.LLMProfile)
	assert.Equal(t, base.Provider.MindProfile, ops.Provider.MindProfile)
}

func TestEvaluateThresholds(t *testing.T) {
	cfg := services.DefaultConfig()
	cfg.Thresholds = models.ThresholdsConfig{}
	got := services.EvaluateThresholds(cfg)
	assert.Equal(t, models.Thresholds{DriftScoreMinimum: 70, MaxChangesPerRun: 25}, got)

	cfg.Thresholds = models.ThresholdsConfig{DriftScoreMinimum: intPtr(150), MaxChangesPerRun: intPtr(0)}
	got = services.EvaluateThresholds(cfg)
	assert.Equal(t, 100, got.DriftScoreMinimum)
	assert.Equal(t, 1, got.MaxChangesPerRun)

	cfg.Thresholds.DriftScoreMinimum = intPtr(-5)
	assert.Equal(t, 0, services.EvaluateThresholds(cfg).DriftScoreMinimum)
}

func TestValidateConfig(t *testing.T) {
	assert.Empty(t, services.ValidateConfig(services.DefaultConfig()))

	cfg := services.DefaultConfig()
	cfg.Output.Format = "html"
	cfg.Style.Preferences = []string{"memes"}
	cfg.Profiles = append(cfg.Profiles, cfg.Profiles[0])
	cfg.Thresholds.MaxChangesPerRun = intPtr(0)
	issues := services.ValidateConfig(cfg)
	assert.Len(t, issues, 4)
}

func TestConfigHash_ChangesWithConfig(t *testing.T) {
	a := services.DefaultConfig()
	b := services.DefaultConfig()
	assert.Equal(t, services.ConfigHash(a), services.ConfigHash(b))
	assert.Len(t, services.ConfigHash(a), 64)

	b.Style.Language = "de"
	assert.NotEqual(t, services.ConfigHash(a), services.ConfigHash(b))
}

func TestConfigService_LoadSaveRoundTrip(t *testing.T) {
	root := t.TempDir()
	svc := services.NewConfigService(repositories.NewConfigRepository(root, ""))

	persisted, err := svc.LoadPersisted()
	require.NoError(t, err)
	assert.Nil(t, persisted)

	cfg, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, services.DefaultDocsBasePath, cfg.Output.BasePath)

	cfg.Style.Language = "de"
	path, err := svc.Save(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "kb.config.json"), path)

	again, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, "de", again.Style.Language)

	cfg.Output.Naming = "snake"
	_, err = svc.Save(cfg)
	var cerr *services.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.True(t, errors.Is(err, services.ErrInvalidConfig))
}
