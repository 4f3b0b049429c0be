package services_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidocs/internal/services"
)

func TestGitService_ChangedFiles(t *testing.T) {
	dir := t.TempDir()
	gs := services.NewGitService()
	repo, err := gs.Init(dir)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	write := func(rel, content string) {
		full := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	write("test.txt", "hello world\n")
	write("pkg/a.go", "package pkg\n")
	first := commitAll(t, wt, "first commit")

	write("test.txt", "hello world!\nnew line\n")
	write("pkg/b.go", "package pkg\n")
	second := commitAll(t, wt, "second commit")

	files, err := gs.ChangedFiles(dir, first, second)
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg/b.go", "test.txt"}, files)

	sub, err := gs.ChangedFiles(filepath.Join(dir, "pkg"), first, "HEAD")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.go"}, sub)

	head, err := gs.LatestCommit(dir)
	require.NoError(t, err)
	assert.Equal(t, second, head)

	_, err = gs.ChangedFiles(dir, "", second)
	assert.Error(t, err)
	_, err = gs.ChangedFiles(dir, "missing-rev", second)
	assert.Error(t, err)
}

func TestGitService_ValidateRepository(t *testing.T) {
	gs := services.NewGitService()
	assert.Error(t, gs.ValidateRepository(""))
	assert.Error(t, gs.ValidateRepository(t.TempDir()))
}
