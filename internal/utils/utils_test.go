package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPatternLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".aidocsignore")
	require.NoError(t, os.WriteFile(path, []byte("# generated\n\n./vendor/\nbuild\n  testdata/fixtures/  \n"), 0o644))

	lines, err := ReadPatternLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"vendor", "build", "testdata/fixtures"}, lines)

	missing, err := ReadPatternLines(filepath.Join(dir, "nope"))
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := FindProjectRoot(nested)
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, want, gotResolved)
}

func TestLoadEnv(t *testing.T) {
	root := t.TempDir()
	assert.NoError(t, LoadEnv(root), "missing .env is fine")

	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("AIDOCS_TEST_ENV_VALUE=loaded\n"), 0o644))
	t.Setenv("AIDOCS_TEST_ENV_VALUE", "")
	os.Unsetenv("AIDOCS_TEST_ENV_VALUE")
	require.NoError(t, LoadEnv(root))
	assert.Equal(t, "loaded", os.Getenv("AIDOCS_TEST_ENV_VALUE"))
}

func TestDirectoryHelpers(t *testing.T) {
	root := t.TempDir()
	assert.True(t, DirectoryExists(root))
	assert.False(t, DirectoryExists(filepath.Join(root, "missing")))

	_, ok := FindGitRoot(root)
	if ok {
		t.Skip("temp dir lives inside a git checkout")
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	got, ok := FindGitRoot(sub)
	assert.True(t, ok)
	assert.Equal(t, root, got)
}
