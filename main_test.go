package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidocs/internal/services"
)

// execute runs the CLI against root and returns stdout.
func execute(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, ".config"))
	t.Setenv("AIDOCS_KEYRING_PASSWORD", "test")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--root", root, "--log-level", "error", "--json"}, args...))
	err := cmd.Execute()
	if app != nil {
		app.shutdown(context.Background())
		app = nil
	}
	return out.String(), err
}

func TestCLI_InitPlanGenerate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644))

	out, err := execute(t, root, "init")
	require.NoError(t, err)
	var initRes services.InitResult
	require.NoError(t, json.Unmarshal([]byte(out), &initRes))
	assert.Len(t, initRes.CreatedFiles, 4)
	assert.FileExists(t, filepath.Join(root, "kb.config.json"))

	out, err = execute(t, root, "plan")
	require.NoError(t, err)
	var planRes services.PlanResult
	require.NoError(t, json.Unmarshal([]byte(out), &planRes))
	assert.Equal(t, 7, planRes.Sections)
	assert.Equal(t, 4, planRes.MissingSections)

	out, err = execute(t, root, "generate", "--sections", "glossary")
	require.NoError(t, err)
	var genRes services.GenerateResult
	require.NoError(t, json.Unmarshal([]byte(out), &genRes))
	require.Len(t, genRes.Sections, 1)
	assert.Equal(t, "glossary", genRes.Sections[0].SectionID)

	data, err := os.ReadFile(filepath.Join(root, "docs", "ai-docs", "glossary.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Glossary")

	out, err = execute(t, root, "history", "--kind", "generate")
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "generate"`)
}

func TestCLI_AuditStrict(t *testing.T) {
	root := t.TempDir()
	_, err := execute(t, root, "plan")
	require.NoError(t, err)

	_, err = execute(t, root, "audit")
	require.NoError(t, err)

	_, err = execute(t, root, "audit", "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below threshold")
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "****", maskKey("abcd"))
	assert.Equal(t, "sk-1*****6789", maskKey("sk-123456789"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", " ", "c"}))
	assert.Nil(t, splitList(nil))
}
