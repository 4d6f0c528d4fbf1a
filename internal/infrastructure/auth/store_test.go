package auth

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qacraft/internal/domain"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	creds := domain.Credentials{
		OpenAIKey: "sk-test",
		JiraEmail: "jane@example.com",
		JiraToken: "atl-token",
	}
	require.NoError(t, store.Save("jane_doe", creds))

	got, err := store.Load("jane_doe")
	require.NoError(t, err)
	assert.Equal(t, creds, got)
}

func TestStoreEncryptsAtRest(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.Save("jane_doe", domain.Credentials{OpenAIKey: "sk-secret-value"}))

	raw, err := os.ReadFile(filepath.Join(dir, "jane_doe_credentials.json"))
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, []byte("sk-secret-value")), "plaintext key leaked to disk")
}

func TestStoreMissingUserIsEmpty(t *testing.T) {
	store := NewStore(t.TempDir())

	got, err := store.Load("nobody")
	require.NoError(t, err)
	assert.Equal(t, domain.Credentials{}, got)
	assert.False(t, got.HasProviderKey())
}

func TestStoreKeyPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewStore(dir).Save("jane_doe", domain.Credentials{AnthropicKey: "sk-ant"}))

	got, err := NewStore(dir).Load("jane_doe")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", got.AnthropicKey)
}

func TestUserID(t *testing.T) {
	assert.Equal(t, "jane_doe", UserID("Jane", "Doe"))
	assert.Equal(t, "jane", UserID(" Jane ", ""))
	assert.Equal(t, "doe", UserID("", "Doe"))
	assert.Equal(t, "default", UserID("", ""))
}
