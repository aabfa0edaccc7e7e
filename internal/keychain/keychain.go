// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores the backend API token in the OS credential store
// via the keyring library. The token never touches the JSON config file.
package keychain

import (
	"errors"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "pyrun"

// KeyAPIToken is the keyring item holding the backend API token.
const KeyAPIToken = "backend_api_token"

// ErrNotFound is returned when no token is stored.
var ErrNotFound = errors.New("no API token stored")

// Store provides thread-safe access to the OS keychain.
type Store struct {
	mu   sync.Mutex
	ring keyring.Keyring
}

var (
	globalStore *Store
	globalErr   error
	initMu      sync.Mutex
)

// Open returns the process-wide keychain store, initializing it on first use
// and retrying on subsequent calls after a failed initialization.
func Open() (*Store, error) {
	initMu.Lock()
	defer initMu.Unlock()
	if globalStore != nil {
		return globalStore, nil
	}
	ring, err := keyring.Open(keyring.Config{
		ServiceName: ServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.WinCredBackend,
			keyring.SecretServiceBackend,
			keyring.PassBackend,
		},
	})
	if err != nil {
		globalErr = err
		return nil, globalErr
	}
	globalStore = &Store{ring: ring}
	return globalStore, nil
}

// SaveAPIToken stores the backend API token.
func (s *Store) SaveAPIToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Set(keyring.Item{
		Key:   KeyAPIToken,
		Data:  []byte(strings.TrimSpace(token)),
		Label: "pyrun backend API token",
	})
}

// LoadAPIToken returns the stored token, or ErrNotFound.
func (s *Store) LoadAPIToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, err := s.ring.Get(KeyAPIToken)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(item.Data), nil
}

// DeleteAPIToken removes the stored token; missing token is not an error.
func (s *Store) DeleteAPIToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.ring.Remove(KeyAPIToken)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}

// LoadToken is a best-effort convenience for callers that treat the token as
// optional: any failure (no keychain, nothing stored) yields "".
func LoadToken() string {
	s, err := Open()
	if err != nil {
		return ""
	}
	token, err := s.LoadAPIToken()
	if err != nil {
		return ""
	}
	return token
}
