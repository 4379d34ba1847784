package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

const (
	TokenEnv       = "GITHUB_TOKEN"
	keyringService = "ghgantt"
	tokenKey       = "github_token"

	// PlaceholderToken is what init writes into a fresh .env.
	PlaceholderToken = "ghp_your_token_here"
)

// TokenSource names where a token was found.
type TokenSource string

const (
	SourceEnv     TokenSource = "environment"
	SourceKeyring TokenSource = "keyring"
)

// TokenStore persists the GitHub token outside the config file.
type TokenStore interface {
	Get() (string, error)
	Set(token string) error
	Clear() error
}

// ErrNoToken is returned by a TokenStore holding no token.
var ErrNoToken = errors.New("no token stored")

type keyringStore struct{}

// KeyringStore returns the OS keyring-backed token store.
func KeyringStore() TokenStore { return keyringStore{} }

func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringService,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.ghgantt/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("ghgantt-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

func (keyringStore) Get() (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(tokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("reading token from keyring: %w", err)
	}
	return string(item.Data), nil
}

func (keyringStore) Set(token string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}
	if err := ring.Set(keyring.Item{Key: tokenKey, Data: []byte(token), Label: "ghgantt GitHub token"}); err != nil {
		return fmt.Errorf("storing token in keyring: %w", err)
	}
	return nil
}

func (keyringStore) Clear() error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}
	if err := ring.Remove(tokenKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("removing token from keyring: %w", err)
	}
	return nil
}

// ResolveToken returns the GitHub token from GITHUB_TOKEN, falling back to
// store. A nil store skips the keyring. The init placeholder counts as unset.
func ResolveToken(store TokenStore) (string, TokenSource, error) {
	if tok := usable(os.Getenv(TokenEnv)); tok != "" {
		return tok, SourceEnv, nil
	}
	if store != nil {
		tok, err := store.Get()
		if tok = usable(tok); err == nil && tok != "" {
			return tok, SourceKeyring, nil
		}
	}
	return "", "", domain.NewError(domain.KindConfiguration, "resolve token",
		"GITHUB_TOKEN not set: export it, add it to .env, or run 'ghgantt token set'")
}

func usable(tok string) string {
	tok = strings.TrimSpace(tok)
	if tok == PlaceholderToken {
		return ""
	}
	return tok
}
