package syncdel

import "sync"

// Settings are the operator toggles that gate the pipeline.
type Settings struct {
	Enabled      bool
	DeleteSource bool
	// ExcludedPaths are path prefixes; they are compared in absolute form.
	ExcludedPaths  []string
	NotifyOnDelete bool
}

// Clone returns a copy that shares no memory with s.
func (s Settings) Clone() Settings {
	out := s
	if s.ExcludedPaths != nil {
		out.ExcludedPaths = append([]string(nil), s.ExcludedPaths...)
	}
	return out
}

// SettingsStore owns the current Settings. Set replaces every field at once
// and persists them.
type SettingsStore interface {
	Get() Settings
	Set(Settings) error
}

// MemoryStore is a SettingsStore that keeps settings in process memory only.
type MemoryStore struct {
	mu       sync.RWMutex
	settings Settings
}

// NewMemoryStore seeds a MemoryStore with initial.
func NewMemoryStore(initial Settings) *MemoryStore {
	return &MemoryStore{settings: initial.Clone()}
}

func (m *MemoryStore) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings.Clone()
}

func (m *MemoryStore) Set(settings Settings) error {
	m.mu.Lock()
	m.settings = settings.Clone()
	m.mu.Unlock()
	return nil
}
