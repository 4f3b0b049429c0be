package services_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"aidocs/internal/events"
	"aidocs/internal/models"
	"aidocs/internal/repositories"
	"aidocs/internal/services"
	"aidocs/internal/tests/mocks"
)

var testNow = time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

type harness struct {
	root      string
	rt        *services.Runtime
	docs      *mocks.DocsRepositoryMock
	context   *mocks.ContextProviderMock
	generator *mocks.GeneratorMock
	runs      *mocks.RunRepositoryMock
	recorder  *events.Recorder
	config    *mocks.ConfigServiceMock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	root := t.TempDir()
	h := &harness{
		root:      root,
		docs:      &mocks.DocsRepositoryMock{DocsRepository: repositories.NewDocsRepository(root, func() time.Time { return testNow })},
		context:   &mocks.ContextProviderMock{},
		generator: &mocks.GeneratorMock{},
		runs:      &mocks.RunRepositoryMock{},
		recorder:  &events.Recorder{},
		config:    &mocks.ConfigServiceMock{Config: services.DefaultConfig(), ConfPath: filepath.Join(root, "kb.config.json")},
	}
	h.rt = &services.Runtime{
		Config:     h.config,
		Docs:       h.docs,
		Context:    services.FixedContext(h.context),
		Generators: services.FixedGenerator(h.generator),
		Git:        services.NewGitService(),
		Runs:       h.runs,
		Sink:       h.recorder,
		Log:        zerolog.Nop(),
		Now:        func() time.Time { return testNow },
	}
	return h
}

func (h *harness) writeFile(t *testing.T, rel, content string) string {
	t.Helper()
	full := filepath.Join(h.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

func (h *harness) readFile(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

// savePlan persists a plan with the given sections at the default location.
func (h *harness) savePlan(t *testing.T, sections ...models.DocSection) {
	t.Helper()
	_, err := h.docs.SavePlan(&models.DocsPlan{
		GeneratedAt: testNow,
		Sections:    sections,
		Gaps:        []models.DocsPlanGap{},
		Inputs:      models.PlanInputs{Code: []string{"main.go"}, Docs: []string{}, Specs: []string{}},
	}, "")
	require.NoError(t, err)
}

func section(id string, status models.SectionStatus) models.DocSection {
	return models.DocSection{ID: id, Title: id, TargetPath: "docs/ai-docs/" + id + ".md", Status: status}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
