package daemonctl_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"mediasyncdel/internal/daemon"
	"mediasyncdel/internal/daemonctl"
	"mediasyncdel/internal/testsupport"
)

func TestReadPID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	pid, err := daemonctl.ReadPID(cfg.PIDPath())
	if err != nil || pid != 0 {
		t.Fatalf("expected missing pid file to read as 0, got %d err=%v", pid, err)
	}

	if err := daemonctl.WritePID(cfg.PIDPath()); err != nil {
		t.Fatalf("WritePID: %v", err)
	}
	pid, err = daemonctl.ReadPID(cfg.PIDPath())
	if err != nil {
		t.Fatalf("ReadPID: %v", err)
	}
	if pid != os.Getpid() {
		t.Fatalf("expected pid %d, got %d", os.Getpid(), pid)
	}

	if err := os.WriteFile(cfg.PIDPath(), []byte("abc\n"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	if _, err := daemonctl.ReadPID(cfg.PIDPath()); err == nil {
		t.Fatal("expected error for malformed pid")
	}
}

func TestSignalReloadWithoutDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := daemonctl.SignalReload(cfg); !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestProcessInfoSeesRunningDaemon(t *testing.T) {
	var configPath string
	cfg := testsupport.NewConfig(t, testsupport.WithSavedConfig(&configPath))
	store := testsupport.MustOpenHistory(t, cfg)
	d, err := daemon.New(cfg, configPath, store, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()
	if err := daemonctl.WritePID(cfg.PIDPath()); err != nil {
		t.Fatalf("WritePID: %v", err)
	}

	running, pid, err := daemonctl.ProcessInfo(cfg)
	if err != nil {
		t.Fatalf("ProcessInfo: %v", err)
	}
	if !running || pid != os.Getpid() {
		t.Fatalf("expected running daemon with our pid, got running=%v pid=%d", running, pid)
	}

	// The recorded pid is this test process, which must never be signalled.
	if _, err := daemonctl.SignalReload(cfg); err == nil {
		t.Fatal("expected refusal to signal the current process")
	}
}
