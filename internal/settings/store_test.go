package settings_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediasyncdel/internal/config"
	"mediasyncdel/internal/settings"
	"mediasyncdel/internal/syncdel"
)

const baseConfig = `
[sync]
enable = true
del_source = true
exclude_path = "/media/kids,/media/home"
send_notify = true

[paths]
webhook_bind = "127.0.0.1:9999"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func loadStore(t *testing.T, path string) *settings.FileStore {
	t.Helper()
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return settings.NewFileStore(path, cfg)
}

func TestFileStoreSeedsFromConfig(t *testing.T) {
	store := loadStore(t, writeConfig(t, baseConfig))
	got := store.Get()
	if !got.Enabled || !got.DeleteSource || !got.NotifyOnDelete {
		t.Fatalf("unexpected settings: %+v", got)
	}
	if len(got.ExcludedPaths) != 2 || got.ExcludedPaths[1] != "/media/home" {
		t.Fatalf("unexpected excluded paths: %v", got.ExcludedPaths)
	}
}

func TestFileStoreSetPersistsSyncOnly(t *testing.T) {
	path := writeConfig(t, baseConfig)
	store := loadStore(t, path)

	next := store.Get()
	next.Enabled = false
	if err := store.Set(next); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if store.Get().Enabled {
		t.Fatal("expected in-memory settings updated")
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sync.Enable {
		t.Fatal("expected enable=false persisted")
	}
	if !cfg.Sync.DelSource || !cfg.Sync.SendNotify || cfg.Sync.ExcludePath != "/media/kids,/media/home" {
		t.Fatalf("expected other sync fields preserved, got %+v", cfg.Sync)
	}
	if cfg.Paths.WebhookBind != "127.0.0.1:9999" {
		t.Fatalf("expected paths preserved, got %q", cfg.Paths.WebhookBind)
	}
}

func TestFileStoreGetReturnsCopy(t *testing.T) {
	store := loadStore(t, writeConfig(t, baseConfig))
	got := store.Get()
	got.ExcludedPaths[0] = "/mutated"
	if store.Get().ExcludedPaths[0] != "/media/kids" {
		t.Fatal("expected Get to return an independent copy")
	}
}

func TestFileStoreReloadPicksUpOperatorEdits(t *testing.T) {
	path := writeConfig(t, baseConfig)
	store := loadStore(t, path)

	edited := strings.Replace(baseConfig, "enable = true", "enable = false", 1)
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	got, err := store.Reload()
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got.Enabled || store.Get().Enabled {
		t.Fatal("expected reload to observe enable=false")
	}
}

func TestFileStoreSetFailureStillAppliesInMemory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	store := settings.NewFileStore(filepath.Join(blocker, "config.toml"), &config.Config{Sync: config.Sync{Enable: true}})
	if err := store.Set(syncdel.Settings{}); err == nil {
		t.Fatal("expected Set to fail when the config directory cannot be created")
	}
	if store.Get().Enabled {
		t.Fatal("expected new settings active in memory after failed write")
	}
}

func TestConversionRoundTrip(t *testing.T) {
	in := syncdel.Settings{Enabled: true, ExcludedPaths: []string{"/a", "/b"}, NotifyOnDelete: true}
	out := settings.FromConfig(settings.ToConfig(in))
	if out.Enabled != in.Enabled || out.DeleteSource != in.DeleteSource || out.NotifyOnDelete != in.NotifyOnDelete {
		t.Fatalf("unexpected round trip: %+v", out)
	}
	if len(out.ExcludedPaths) != 2 || out.ExcludedPaths[0] != "/a" || out.ExcludedPaths[1] != "/b" {
		t.Fatalf("unexpected excluded paths: %v", out.ExcludedPaths)
	}
}
