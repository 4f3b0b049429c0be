package services_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidocs/internal/events"
	"aidocs/internal/models"
	"aidocs/internal/repositories"
	"aidocs/internal/services"
)

func TestInit_WritesConfigAndSkeleton(t *testing.T) {
	h := newHarness(t)
	h.rt.Config = services.NewConfigService(repositories.NewConfigRepository(h.root, ""))
	h.writeFile(t, "handbook/overview.md", "# Mine\n")

	res, err := services.NewInitService(h.rt).Init(context.Background(), services.InitRequest{
		DocsPath: "handbook",
		Language: "de",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(h.root, "handbook"), res.DocsPath)
	assert.Equal(t, filepath.Join(h.root, repositories.DefaultConfigFile), res.ConfigPath)
	assert.Equal(t, services.DefaultProfile, res.Profile)
	assert.Len(t, res.CreatedFiles, 3)

	assert.Equal(t, "# Mine\n", h.readFile(t, "handbook/overview.md"))
	assert.Equal(t, "# Conventions\n\nCoding, testing, release, and documentation rules.\n", h.readFile(t, "handbook/conventions.md"))

	cfg, err := h.rt.Config.Load()
	require.NoError(t, err)
	assert.Equal(t, "handbook", cfg.Output.BasePath)
	assert.Equal(t, "de", cfg.Style.Language)
	assert.Equal(t, models.FormatMarkdown, cfg.Output.Format)
	assert.Equal(t, []events.Status{events.StatusRunning, events.StatusSuccess}, h.recorder.Statuses(events.StepInit))

	forced, err := services.NewInitService(h.rt).Init(context.Background(), services.InitRequest{Force: true, Format: models.FormatMDX})
	require.NoError(t, err)
	assert.Len(t, forced.CreatedFiles, 4)
	assert.FileExists(t, filepath.Join(h.root, "handbook/overview.mdx"))
}

func TestWorkflows(t *testing.T) {
	h := newHarness(t)
	plans := services.NewPlanService(h.rt)
	gen := services.NewGenerateService(h.rt, plans)

	out, err := services.RunGenerateWorkflow(context.Background(), h.rt, plans, gen, services.GenerateRequest{DryRun: true})
	require.NoError(t, err)
	require.NotNil(t, out.Plan)
	assert.Equal(t, len(models.DefaultSectionBlueprint), out.Plan.Sections)
	assert.Equal(t, models.ModeDryRun, out.Generate.Mode)
	assert.Equal(t, 1, h.generator.Calls)

	reused, err := services.RunGenerateWorkflow(context.Background(), h.rt, plans, gen, services.GenerateRequest{
		PlanPath: repositories.PlanFile,
		DryRun:   true,
	})
	require.NoError(t, err)
	assert.Nil(t, reused.Plan)

	audited, err := services.RunAuditWorkflow(context.Background(), plans, services.NewAuditService(h.rt, plans), services.AuditRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, audited.Audit.DriftScore)
	assert.Equal(t, len(models.DefaultSectionBlueprint), audited.Audit.Missing)
}

func TestFilePermissionsUtil(t *testing.T) {
	guard := services.FilePermissionsUtil{Root: t.TempDir()}

	ok, err := guard.CheckWritePermissions("docs/a.md")
	require.NoError(t, err)
	assert.True(t, ok)

	for _, p := range []string{"../a.md", "docs/../../a.md", ".git/config", "."} {
		ok, err := guard.CheckWritePermissions(p)
		require.NoError(t, err, p)
		assert.False(t, ok, p)
	}

	_, err = guard.CheckWritePermissions("")
	assert.Error(t, err)
}
