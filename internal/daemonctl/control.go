// Package daemonctl lets CLI commands find and signal a running daemon.
//
// The daemon holds a flock on data_dir/mediasyncdel.lock and writes its pid
// next to it. Control is by signal: SIGHUP reloads the [sync] settings and
// SIGTERM stops the process.
package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"mediasyncdel/internal/config"
	"mediasyncdel/internal/daemon"
)

// ErrDaemonNotRunning indicates no daemon holds the lock.
var ErrDaemonNotRunning = errors.New("daemon not running")

// ReadPID returns the pid recorded at path, or 0 when the file is absent.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read daemon pid file %q: %w", path, err)
	}
	pidStr := strings.TrimSpace(string(data))
	if pidStr == "" {
		return 0, nil
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid %q in %s", pidStr, path)
	}
	return pid, nil
}

// WritePID records the current process id at path.
func WritePID(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

// ProcessInfo reports whether a daemon holds the lock and its pid when known.
func ProcessInfo(cfg *config.Config) (bool, int, error) {
	held, err := daemon.LockHeld(cfg.LockPath())
	if err != nil {
		return false, 0, err
	}
	if !held {
		return false, 0, nil
	}
	pid, err := ReadPID(cfg.PIDPath())
	if err != nil {
		return true, 0, err
	}
	return true, pid, nil
}

// SignalReload asks the running daemon to re-read its settings.
func SignalReload(cfg *config.Config) (int, error) {
	return signalDaemon(cfg, syscall.SIGHUP)
}

// Stop sends SIGTERM and waits up to timeout for the lock to be released.
func Stop(cfg *config.Config, timeout time.Duration) (int, error) {
	pid, err := signalDaemon(cfg, syscall.SIGTERM)
	if err != nil {
		return pid, err
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		held, err := daemon.LockHeld(cfg.LockPath())
		if err != nil {
			return pid, err
		}
		if !held {
			return pid, nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return pid, fmt.Errorf("daemon %d did not stop within %s", pid, timeout)
}

func signalDaemon(cfg *config.Config, sig syscall.Signal) (int, error) {
	running, pid, err := ProcessInfo(cfg)
	if err != nil {
		return 0, err
	}
	if !running {
		return 0, ErrDaemonNotRunning
	}
	if pid <= 0 {
		return 0, fmt.Errorf("unable to determine daemon pid (pid file: %s)", cfg.PIDPath())
	}
	if pid == os.Getpid() {
		return 0, fmt.Errorf("refusing to signal current process (pid %d)", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Signal(sig); err != nil {
		return 0, fmt.Errorf("signal daemon process %d: %w", pid, err)
	}
	return pid, nil
}
