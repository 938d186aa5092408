// Package daemonrun hosts the serve loop used by the CLI.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"mediasyncdel/internal/config"
	"mediasyncdel/internal/daemon"
	"mediasyncdel/internal/daemonctl"
	"mediasyncdel/internal/history"
	"mediasyncdel/internal/logging"
)

// Options configures daemon process runtime behavior.
type Options struct {
	ConfigPath string
	LogLevel   string
}

// Run starts the daemon and blocks until SIGINT or SIGTERM. SIGHUP reloads
// the [sync] settings from the configuration file.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := newLogger(cfg, opts)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := history.Open(cfg)
	if err != nil {
		logger.Error("open history store", logging.Error(err))
		return err
	}
	defer store.Close()

	d, err := daemon.New(cfg, opts.ConfigPath, store, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	pidPath := cfg.PIDPath()
	if err := daemonctl.WritePID(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)

	for {
		select {
		case <-signalCtx.Done():
			logger.Info("mediasyncdel daemon shutting down")
			return nil
		case <-reload:
			_ = d.Reload()
		}
	}
}

func newLogger(cfg *config.Config, opts Options) (*slog.Logger, error) {
	if opts.LogLevel == "" {
		return logging.NewFromConfig(cfg)
	}
	override := *cfg
	override.Logging.Level = opts.LogLevel
	return logging.NewFromConfig(&override)
}
