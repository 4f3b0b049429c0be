package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidocs/internal/events"
	"aidocs/internal/models"
	"aidocs/internal/services"
)

func TestBuildPlan_Classification(t *testing.T) {
	params := services.PlanParams{
		Blueprint:   []models.BlueprintEntry{{ID: "overview", Title: "Overview"}},
		Output:      models.OutputConfig{BasePath: "docs", Format: models.FormatMarkdown},
		GeneratedAt: testNow,
	}

	missing, err := services.BuildPlan(params, func(string) (bool, error) { return false, nil })
	require.NoError(t, err)
	require.Len(t, missing.Sections, 1)
	assert.Equal(t, models.SectionMissing, missing.Sections[0].Status)
	assert.Equal(t, "docs/overview.md", missing.Sections[0].TargetPath)
	require.Len(t, missing.Gaps, 1)
	assert.Equal(t, "gap-overview", missing.Gaps[0].ID)
	assert.Equal(t, "docs/overview.md", missing.Gaps[0].RelatedPath)

	existing, err := services.BuildPlan(params, func(string) (bool, error) { return true, nil })
	require.NoError(t, err)
	assert.Equal(t, models.SectionExisting, existing.Sections[0].Status)
	assert.Empty(t, existing.Gaps)
}

func TestBuildPlan_ProbeErrorAborts(t *testing.T) {
	boom := errors.New("disk on fire")
	_, err := services.BuildPlan(services.PlanParams{Blueprint: models.DefaultSectionBlueprint},
		func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)

	_, err = services.BuildPlan(services.PlanParams{Blueprint: []models.BlueprintEntry{{ID: "a"}, {ID: "a"}}},
		func(string) (bool, error) { return false, nil })
	assert.Error(t, err)
}

func TestSectionTargetPath_Naming(t *testing.T) {
	out := models.OutputConfig{BasePath: "docs", Format: models.FormatMDX}
	assert.Equal(t, "docs/getting-started.mdx", services.SectionTargetPath(out, "getting-started"))

	out.Naming = models.NamingPascal
	assert.Equal(t, "docs/GettingStarted.mdx", services.SectionTargetPath(out, "getting-started"))
	assert.Equal(t, "docs/ÉtatGlobal.mdx", services.SectionTargetPath(out, "état-global"))

	out.Naming = models.NamingNested
	assert.Equal(t, "docs/getting-started/index.mdx", services.SectionTargetPath(out, "getting-started"))

	assert.Equal(t, "docs/ai-docs/api.md", services.SectionTargetPath(models.OutputConfig{}, "api"))
}

func TestPlanService_PersistsPlanAndEmits(t *testing.T) {
	h := newHarness(t)
	h.writeFile(t, "docs/ai-docs/overview.md", "# Overview\n")

	res, err := services.NewPlanService(h.rt).Plan(context.Background(), services.PlanRequest{
		IncludeSources: []string{"main.go"},
	})
	require.NoError(t, err)
	assert.Equal(t, len(models.DefaultSectionBlueprint), res.Sections)
	assert.Equal(t, len(models.DefaultSectionBlueprint)-1, res.MissingSections)
	assert.Equal(t, res.MissingSections, res.Gaps)

	plan, err := h.docs.LoadPlan("")
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, []string{"main.go"}, plan.Inputs.Code)
	assert.Equal(t, services.ConfigHash(services.DefaultConfig()), plan.ConfigHash)
	assert.Equal(t, models.SectionExisting, plan.Sections[0].Status)

	assert.Equal(t, []events.Status{events.StatusRunning, events.StatusSuccess}, h.recorder.Statuses(events.StepPlan))
	require.Len(t, h.runs.Runs, 1)
	assert.Equal(t, models.RunSuccess, h.runs.Runs[0].Status)
}

func TestPlanService_ConfigErrorIsStepError(t *testing.T) {
	h := newHarness(t)
	h.config.LoadErr = &services.ConfigError{Path: "kb.config.json", Issues: []string{"bad"}}

	_, err := services.NewPlanService(h.rt).Plan(context.Background(), services.PlanRequest{Profile: "docs"})
	var se *services.StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, events.StepPlan, se.Step)
	assert.Equal(t, "docs", se.Profile)
	assert.ErrorIs(t, err, services.ErrInvalidConfig)
	assert.Equal(t, []events.Status{events.StatusRunning, events.StatusError}, h.recorder.Statuses(events.StepPlan))
	assert.Equal(t, models.RunError, h.runs.Runs[0].Status)
}
