// Package settings persists syncdel settings in the [sync] table of the
// mediasyncdel configuration file.
package settings

import (
	"fmt"
	"sync"

	"mediasyncdel/internal/config"
	"mediasyncdel/internal/syncdel"
)

// FileStore is a syncdel.SettingsStore backed by the configuration file.
// Get serves from memory. Set updates memory first and then writes the file.
type FileStore struct {
	path string

	mu       sync.RWMutex
	settings syncdel.Settings
}

// NewFileStore seeds a store from an already loaded configuration.
func NewFileStore(path string, cfg *config.Config) *FileStore {
	store := &FileStore{path: path}
	if cfg != nil {
		store.settings = FromConfig(cfg.Sync)
	}
	return store
}

// Path returns the configuration file the store writes to.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get() syncdel.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// Set replaces the in-memory settings and writes them to the [sync] table. The
// new settings stay active even when the write fails, so a self-disable holds
// until the process exits.
func (s *FileStore) Set(next syncdel.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = next.Clone()
	if err := config.UpdateSync(s.path, ToConfig(next)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Reload re-reads the configuration file and replaces the in-memory settings.
// Other sections of the file are validated but otherwise ignored.
func (s *FileStore) Reload() (syncdel.Settings, error) {
	cfg, _, _, err := config.Load(s.path)
	if err != nil {
		return syncdel.Settings{}, fmt.Errorf("reload settings: %w", err)
	}
	loaded := FromConfig(cfg.Sync)
	s.mu.Lock()
	s.settings = loaded.Clone()
	s.mu.Unlock()
	return loaded, nil
}

// FromConfig converts the [sync] table into pipeline settings.
func FromConfig(section config.Sync) syncdel.Settings {
	return syncdel.Settings{
		Enabled:        section.Enable,
		DeleteSource:   section.DelSource,
		ExcludedPaths:  config.SplitExcludePath(section.ExcludePath),
		NotifyOnDelete: section.SendNotify,
	}
}

// ToConfig converts pipeline settings back into the [sync] table.
func ToConfig(settings syncdel.Settings) config.Sync {
	return config.Sync{
		Enable:      settings.Enabled,
		DelSource:   settings.DeleteSource,
		ExcludePath: config.JoinExcludePath(settings.ExcludedPaths),
		SendNotify:  settings.NotifyOnDelete,
	}
}
