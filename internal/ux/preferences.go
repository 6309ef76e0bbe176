package ux

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// PreferencesVersion is the current schema version for preferences.json.
const PreferencesVersion = "1.0"

// FileName is the preferences file name inside the config directory.
const FileName = "preferences.json"

// Preferences is the persisted shell state.
type Preferences struct {
	// Version is the schema version for migration detection
	Version string `json:"version"`

	// Draft is what the main screen showed when the last run started
	Draft Draft `json:"draft"`

	// HelpSeen is set once the help screen was shown on first start
	HelpSeen bool `json:"help_seen"`

	Sessions  int    `json:"sessions"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Draft is the last contacts file and message template.
type Draft struct {
	File    string `json:"file,omitempty"`
	Message string `json:"message,omitempty"`
}

// PreferencesManager handles loading/saving preferences.
type PreferencesManager struct {
	mu          sync.RWMutex
	path        string
	preferences *Preferences
}

// NewPreferencesManager creates a manager for dir/preferences.json.
func NewPreferencesManager(dir string) *PreferencesManager {
	return &PreferencesManager{
		path: filepath.Join(dir, FileName),
	}
}

// Path returns the preferences file path.
func (pm *PreferencesManager) Path() string { return pm.path }

// Load reads preferences from disk, using defaults if the file does not exist.
// A file from a newer schema is ignored.
func (pm *PreferencesManager) Load() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	data, err := os.ReadFile(pm.path)
	if err != nil {
		if os.IsNotExist(err) {
			pm.preferences = DefaultPreferences()
			return nil
		}
		return fmt.Errorf("failed to read preferences: %w", err)
	}

	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return fmt.Errorf("failed to parse preferences: %w", err)
	}
	if prefs.Version != PreferencesVersion {
		pm.preferences = DefaultPreferences()
		return nil
	}

	pm.preferences = &prefs
	return nil
}

// Save writes preferences to disk.
func (pm *PreferencesManager) Save() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.preferences == nil {
		pm.preferences = DefaultPreferences()
	}
	pm.preferences.UpdatedAt = time.Now().Format(time.RFC3339)

	if err := os.MkdirAll(filepath.Dir(pm.path), 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	data, err := json.MarshalIndent(pm.preferences, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := os.WriteFile(pm.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// Get returns a copy of the current preferences.
func (pm *PreferencesManager) Get() Preferences {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if pm.preferences == nil {
		return *DefaultPreferences()
	}
	return *pm.preferences
}

// SetDraft records the file and message of the run being started.
func (pm *PreferencesManager) SetDraft(file, message string) {
	pm.update(func(p *Preferences) {
		p.Draft = Draft{File: file, Message: message}
	})
}

// MarkHelpSeen records that the first-start help was shown.
func (pm *PreferencesManager) MarkHelpSeen() {
	pm.update(func(p *Preferences) { p.HelpSeen = true })
}

// StartSession counts a shell start.
func (pm *PreferencesManager) StartSession() {
	pm.update(func(p *Preferences) { p.Sessions++ })
}

func (pm *PreferencesManager) update(fn func(*Preferences)) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.preferences == nil {
		pm.preferences = DefaultPreferences()
	}
	fn(pm.preferences)
}

// DefaultPreferences returns the state of a first start.
func DefaultPreferences() *Preferences {
	return &Preferences{Version: PreferencesVersion}
}
