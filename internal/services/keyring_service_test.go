package services_test

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidocs/internal/services"
)

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestKeyringService_StoreGetDelete(t *testing.T) {
	svc := services.NewKeyringService(keyring.NewArrayKeyring(nil), envOf(nil))

	require.NoError(t, svc.StoreApiKey("openai", []byte("sk-test")))
	key, err := svc.GetApiKey("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)

	require.NoError(t, svc.DeleteApiKey("openai"))
	_, err = svc.GetApiKey("openai")
	assert.ErrorIs(t, err, services.ErrAPIKeyMissing)

	assert.ErrorIs(t, svc.DeleteApiKey("openai"), services.ErrAPIKeyMissing)
	assert.Error(t, svc.StoreApiKey("openai", nil))
	assert.Error(t, svc.StoreApiKey("", []byte("x")))
}

func TestKeyringService_EnvFallback(t *testing.T) {
	svc := services.NewKeyringService(keyring.NewArrayKeyring(nil), envOf(map[string]string{
		"ANTHROPIC_API_KEY": " sk-ant ",
	}))

	key, err := svc.GetApiKey("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", key)

	_, err = svc.GetApiKey("gemini")
	assert.ErrorIs(t, err, services.ErrAPIKeyMissing)
}

func TestKeyringService_ListApiKeys(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{{Key: "openai", Data: []byte("a")}})
	svc := services.NewKeyringService(ring, envOf(map[string]string{
		"OPENAI_API_KEY": "shadowed",
		"GEMINI_API_KEY": "g",
	}))

	keys, err := svc.ListApiKeys()
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "gemini", keys[0].Provider)
	assert.Equal(t, "env:GEMINI_API_KEY", keys[0].Source)
	assert.Equal(t, "openai", keys[1].Provider)
	assert.Equal(t, "keyring", keys[1].Source)
}
