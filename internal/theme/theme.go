// Package theme holds the process-wide light/dark flag and writes every
// change through to a Store.
package theme

import (
	"fmt"
	"sync"
)

// Key is the store key holding the theme.
const Key = "theme"

// Mode is the persisted theme value.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode accepts "light" or "dark".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Light, Dark:
		return m, nil
	}
	return "", fmt.Errorf("invalid theme %q (want light or dark)", s)
}

// Theme is safe for concurrent use.
type Theme struct {
	mu    sync.RWMutex
	store Store
	dark  bool
}

// Load reads the stored theme. Only the exact value "dark" selects dark
// mode; anything else, including a missing key, is light.
func Load(store Store) (*Theme, error) {
	v, err := store.Get(Key)
	if err != nil {
		return nil, fmt.Errorf("reading theme: %w", err)
	}
	return &Theme{store: store, dark: Mode(v) == Dark}, nil
}

// Dark reports whether dark mode is on.
func (t *Theme) Dark() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dark
}

// Mode returns the current mode.
func (t *Theme) Mode() Mode { return modeOf(t.Dark()) }

// Toggle flips the mode and persists it. On a write failure the in-memory
// mode is left unchanged.
func (t *Theme) Toggle() (Mode, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := Dark
	if t.dark {
		next = Light
	}
	if err := t.store.Set(Key, string(next)); err != nil {
		return modeOf(t.dark), fmt.Errorf("saving theme: %w", err)
	}
	t.dark = next == Dark
	return next, nil
}

// Set persists an explicit mode.
func (t *Theme) Set(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.Set(Key, string(m)); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	t.dark = m == Dark
	return nil
}

func modeOf(dark bool) Mode {
	if dark {
		return Dark
	}
	return Light
}
