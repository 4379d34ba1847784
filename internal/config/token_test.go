package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

type memoryStore struct {
	token string
}

func (m *memoryStore) Get() (string, error) {
	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *memoryStore) Set(token string) error { m.token = token; return nil }
func (m *memoryStore) Clear() error           { m.token = ""; return nil }

func TestResolveToken_PrefersEnvironment(t *testing.T) {
	t.Setenv(TokenEnv, "env-token")

	tok, src, err := ResolveToken(&memoryStore{token: "ring-token"})
	require.NoError(t, err)
	assert.Equal(t, "env-token", tok)
	assert.Equal(t, SourceEnv, src)
}

func TestResolveToken_FallsBackToStore(t *testing.T) {
	t.Setenv(TokenEnv, "")

	tok, src, err := ResolveToken(&memoryStore{token: "ring-token"})
	require.NoError(t, err)
	assert.Equal(t, "ring-token", tok)
	assert.Equal(t, SourceKeyring, src)
}

func TestResolveToken_PlaceholderCountsAsUnset(t *testing.T) {
	t.Setenv(TokenEnv, PlaceholderToken)

	_, _, err := ResolveToken(nil)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConfiguration))
	assert.Contains(t, err.Error(), "GITHUB_TOKEN not set")
}

func TestResolveToken_ClearedStore(t *testing.T) {
	t.Setenv(TokenEnv, "")
	store := &memoryStore{}
	require.NoError(t, store.Set("abc"))
	require.NoError(t, store.Clear())

	_, _, err := ResolveToken(store)
	assert.Error(t, err)
}
