// Package store persists the small amount of local state that survives a
// restart. Values are strings, the way a browser's local storage keeps them.
package store

import (
	"fmt"
	"strconv"
	"sync"
)

// Well-known keys.
const (
	KeyCashBalance  = "cashBalance"
	KeyKonamiActive = "konamiActive"
)

type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}

// Float reads a stringified float. A missing key reports ok == false.
func Float(s Store, key string) (v float64, ok bool, err error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return 0, false, err
	}
	v, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s=%q: %w", key, raw, err)
	}
	return v, true, nil
}

// SetFloat stores v in its shortest decimal form.
func SetFloat(s Store, key string, v float64) error {
	return s.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
}

// Bool reads a flag stored as "true"; anything else is false.
func Bool(s Store, key string) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	return raw == "true", nil
}

func SetBool(s Store, key string, v bool) error {
	return s.Set(key, strconv.FormatBool(v))
}

// Memory keeps values for the life of the process.
type Memory struct {
	mu   sync.RWMutex
	vals map[string]string
}

func NewMemory() *Memory {
	return &Memory{vals: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vals[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value
	return nil
}

func (m *Memory) Close() error { return nil }
