package daemon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"mediasyncdel/internal/config"
	"mediasyncdel/internal/executor"
	"mediasyncdel/internal/history"
	"mediasyncdel/internal/logging"
	"mediasyncdel/internal/metrics"
	"mediasyncdel/internal/notifications"
	"mediasyncdel/internal/settings"
	"mediasyncdel/internal/syncdel"
	"mediasyncdel/internal/webhook"
)

// ErrAlreadyRunning is returned when another daemon holds the lock.
var ErrAlreadyRunning = errors.New("another mediasyncdel daemon instance is already running")

// Daemon owns the pipeline and the webhook server.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	base     *slog.Logger
	store    *history.Store
	settings *settings.FileStore
	handler  *syncdel.Handler
	notifier notifications.Service
	metrics  *metrics.Metrics
	router   http.Handler

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	server  *webhook.Server
	cancel  context.CancelFunc
	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool
	Enabled        bool
	DeleteSource   bool
	ExcludedPaths  []string
	NotifyOnDelete bool
	WebhookAddr    string
	HistoryDBPath  string
	HistoryRecords int
	LockFilePath   string
	ConfigPath     string
}

// New constructs a daemon with initialized dependencies. configPath is the
// file the [sync] section is persisted to.
func New(cfg *config.Config, configPath string, store *history.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and history store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	m := metrics.New()
	notifier := notifications.NewService(cfg)
	fileStore := settings.NewFileStore(configPath, cfg)
	exec := executor.New(store, cfg.Paths.SourceRoots, m, logger)
	handler := syncdel.NewHandler(fileStore, exec, notifier, logger)
	m.SetEnabled(handler.Enabled())

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		base:     logger,
		store:    store,
		settings: fileStore,
		handler:  handler,
		notifier: notifier,
		metrics:  m,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	d.router = webhook.NewRouter(handler, webhook.Options{
		Token:    cfg.Paths.WebhookToken,
		Metrics:  m,
		Observer: d.observe,
		Logger:   logger,
	})
	return d, nil
}

// Start acquires the daemon lock and starts the webhook server.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	server := webhook.NewServer(d.cfg.Paths.WebhookBind, d.router, d.base)
	if err := server.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start webhook server: %w", err)
	}
	d.server = server
	d.cancel = cancel
	d.running.Store(true)

	current := d.settings.Get()
	d.logger.Info("mediasyncdel daemon started",
		logging.String("lock", d.lockPath),
		logging.String("webhook", server.Addr()),
		logging.Bool("enabled", current.Enabled),
		logging.Bool("delete_source", current.DeleteSource),
	)
	if !current.Enabled {
		d.logger.Info("sync is disabled; deletions will be ignored until enabled")
	}
	return nil
}

// Stop stops the webhook server and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	d.server = nil
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("mediasyncdel daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Reload re-reads the [sync] section from the configuration file.
func (d *Daemon) Reload() error {
	current, err := d.handler.ReloadSettings(d.settings.Reload)
	if err != nil {
		logging.WarnWithContext(d.logger, "settings reload failed", "settings_reload",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the configuration file and reload again"),
			logging.String(logging.FieldImpact, "previous settings remain active"),
		)
		return err
	}
	d.metrics.SetEnabled(current.Enabled)
	d.logger.Info("settings reloaded",
		logging.Bool("enabled", current.Enabled),
		logging.Bool("delete_source", current.DeleteSource),
		logging.Int("excluded_paths", len(current.ExcludedPaths)),
		logging.Bool("notify_on_delete", current.NotifyOnDelete),
	)
	return nil
}

// Handler exposes the pipeline for in-process callers.
func (d *Daemon) Handler() *syncdel.Handler {
	return d.handler
}

// Process runs one event through the pipeline outside of HTTP and applies
// the same self-disable alerting as the webhook.
func (d *Daemon) Process(ctx context.Context, raw syncdel.RawEvent) syncdel.Outcome {
	outcome := d.handler.Handle(ctx, raw)
	d.metrics.ObserveOutcome(outcome)
	d.metrics.SetEnabled(d.handler.Enabled())
	d.observe(ctx, raw, outcome)
	return outcome
}

// Router exposes the webhook HTTP handler.
func (d *Daemon) Router() http.Handler {
	return d.router
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	current := d.settings.Get()
	status := Status{
		Running:        d.running.Load(),
		Enabled:        current.Enabled,
		DeleteSource:   current.DeleteSource,
		ExcludedPaths:  current.ExcludedPaths,
		NotifyOnDelete: current.NotifyOnDelete,
		HistoryDBPath:  d.store.Path(),
		LockFilePath:   d.lockPath,
		ConfigPath:     d.settings.Path(),
	}
	d.mu.Lock()
	status.WebhookAddr = d.server.Addr()
	d.mu.Unlock()
	if count, err := d.store.Count(ctx); err == nil {
		status.HistoryRecords = count
	} else {
		d.logger.Warn("history count failed", logging.Error(err))
	}
	return status
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg.Notifications.NtfyTopic == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// observe sends the self-disable alert. It runs on the request goroutine so
// the alert is delivered before the response.
func (d *Daemon) observe(ctx context.Context, raw syncdel.RawEvent, outcome syncdel.Outcome) {
	if !outcome.SelfDisabled {
		return
	}
	name, _ := raw.Get(syncdel.FieldMediaName)
	if err := d.notifier.NotifySyncDisabled(ctx, name); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, d.logger), "disable alert failed", "notify",
			logging.Error(err),
			logging.String(logging.FieldImpact, "operator was not alerted that sync is disabled"),
		)
	}
}

// LockHeld reports whether a daemon currently holds the lock at path.
func LockHeld(path string) (bool, error) {
	if _, err := os.Stat(filepath.Dir(path)); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe lock: %w", err)
	}
	if ok {
		_ = lock.Unlock()
		return false, nil
	}
	return true, nil
}
