package testsupport

import (
	"path/filepath"
	"testing"

	"mediasyncdel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Sync starts enabled so pipeline tests exercise the deletion path; use
// WithSync to override.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Sync.Enable = true
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.WebhookBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSync replaces the [sync] section on the test config.
func WithSync(sync config.Sync) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sync = sync
	}
}

// WithWebhookToken sets the shared webhook secret on the test config.
func WithWebhookToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.WebhookToken = token
	}
}

// WithNtfyTopic points notifications at topic, typically an httptest server URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithSavedConfig writes the generated config to base/config.toml and stores
// the path in target.
func WithSavedConfig(target *string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "config.toml")
		if err := b.cfg.Save(path); err != nil {
			b.t.Fatalf("save test config: %v", err)
		}
		*target = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
