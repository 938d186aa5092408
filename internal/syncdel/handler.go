package syncdel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"mediasyncdel/internal/logging"
)

// Executor removes what a DeletionIntent names. DeleteSourceFiles is only
// called for intents with DeleteSource set.
type Executor interface {
	DeleteHistory(ctx context.Context, intent DeletionIntent) error
	DeleteSourceFiles(ctx context.Context, intent DeletionIntent) error
}

// Notifier announces a completed deletion.
type Notifier interface {
	Notify(ctx context.Context, descriptor string) error
}

// Result summarizes what happened to one event.
type Result string

const (
	// ResultIgnored covers events that are not for this handler.
	ResultIgnored Result = "ignored"
	// ResultSkipped covers virtual items and excluded paths.
	ResultSkipped Result = "skipped"
	// ResultDisabled means the event switched the handler off.
	ResultDisabled Result = "disabled"
	// ResultRejected covers malformed deletion events.
	ResultRejected Result = "rejected"
	// ResultSynced means an intent was built and handed to the executor.
	ResultSynced Result = "synced"
)

// Outcome is returned by Handle for every event.
type Outcome struct {
	Result Result
	Kind   Kind
	Intent *DeletionIntent
	// SelfDisabled is true only for the event that flipped enabled to false.
	SelfDisabled bool
	// Err joins collaborator failures (settings persistence, executor,
	// notifier). It never changes Result.
	Err error
}

// Handler runs the deletion pipeline for one handler instance.
type Handler struct {
	settings SettingsStore
	executor Executor
	notifier Notifier
	logger   *slog.Logger

	disableMu sync.Mutex
}

// NewHandler wires a pipeline. executor and notifier may be nil, in which case
// the corresponding step is a no-op.
func NewHandler(settings SettingsStore, executor Executor, notifier Notifier, logger *slog.Logger) *Handler {
	if settings == nil {
		settings = NewMemoryStore(Settings{})
	}
	return &Handler{
		settings: settings,
		executor: executor,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "syncdel"),
	}
}

// Enabled reports the current enable toggle.
func (h *Handler) Enabled() bool {
	return h.settings.Get().Enabled
}

// ReloadSettings runs reload while no self-disable is between its read and
// write of the settings, so neither overwrites the other with a stale copy.
func (h *Handler) ReloadSettings(reload func() (Settings, error)) (Settings, error) {
	h.disableMu.Lock()
	defer h.disableMu.Unlock()
	return reload()
}

// Handle processes one raw event. Settings are read once so a concurrent
// update never splits an event across two configurations.
func (h *Handler) Handle(ctx context.Context, raw RawEvent) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithContext(ctx, h.logger)
	settings := h.settings.Get()

	if !settings.Enabled {
		return Outcome{Result: ResultIgnored, Kind: KindInactive}
	}
	if !raw.IsMediaDeletion() {
		return Outcome{Result: ResultIgnored, Kind: KindNotApplicable}
	}

	name, _ := raw.Get(FieldMediaName)
	gate := CheckSafety(raw, settings)
	if gate.Action == GateDisable {
		return h.selfDisable(logger, name)
	}
	if gate.Kind == KindVirtualItem {
		return h.skipped(ctx, logger, raw, gate.Kind)
	}

	// Field checks run before path exclusion, so a malformed event under an
	// excluded prefix is still reported as rejected.
	event, err := Normalize(raw)
	if err != nil {
		return h.rejected(ctx, logger, err)
	}
	if gate.Action == GateSkip {
		return h.skipped(ctx, logger, raw, gate.Kind)
	}

	intent, err := Dispatch(event, settings)
	if err != nil {
		return h.rejected(ctx, logger, err)
	}

	return h.execute(ctx, logger, intent, settings)
}

func (h *Handler) execute(ctx context.Context, logger *slog.Logger, intent DeletionIntent, settings Settings) Outcome {
	logger = logger.With(logging.String(logging.FieldDescriptor, intent.Descriptor))
	logger.Info("syncing deletion",
		logging.String("scope", string(intent.Scope)),
		logging.Bool("delete_source", intent.DeleteSource),
	)

	var errs []error
	if h.executor != nil {
		if intent.DeleteSource {
			if err := h.executor.DeleteSourceFiles(ctx, intent); err != nil {
				logging.WarnWithContext(logger, "source file deletion failed", "source_delete",
					logging.Error(err),
					logging.String(logging.FieldImpact, "source files may remain on disk"),
				)
				errs = append(errs, fmt.Errorf("delete source files: %w", err))
			}
		}
		if err := h.executor.DeleteHistory(ctx, intent); err != nil {
			logging.WarnWithContext(logger, "history deletion failed", "history_delete",
				logging.Error(err),
				logging.String(logging.FieldImpact, "history records were kept"),
			)
			errs = append(errs, fmt.Errorf("delete history: %w", err))
		}
	}

	if settings.NotifyOnDelete && h.notifier != nil {
		if err := h.notifier.Notify(ctx, intent.Descriptor); err != nil {
			logging.WarnWithContext(logger, "deletion notification failed", "notify",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			)
			errs = append(errs, fmt.Errorf("notify: %w", err))
		}
	}

	logger.Info("sync delete complete")
	return Outcome{Result: ResultSynced, Intent: &intent, Err: errors.Join(errs...)}
}

func (h *Handler) skipped(ctx context.Context, logger *slog.Logger, raw RawEvent, kind Kind) Outcome {
	name, _ := raw.Get(FieldMediaName)
	attrs := []logging.Attr{logging.String("media_name", name), logging.String("reason", kind.String())}
	if path, ok := raw.Get(FieldMediaPath); ok {
		attrs = append(attrs, logging.String("media_path", path))
	}
	logging.LogAt(ctx, logger, kind.Level(), "deletion skipped", attrs...)
	return Outcome{Result: ResultSkipped, Kind: kind}
}

func (h *Handler) rejected(ctx context.Context, logger *slog.Logger, err error) Outcome {
	var rejection *Rejection
	if !errors.As(err, &rejection) {
		logger.Error("unexpected pipeline error", logging.Error(err))
		return Outcome{Result: ResultRejected, Err: err}
	}
	if rejection.Kind.Silent() {
		logging.LogAt(ctx, logger, rejection.Kind.Level(), "event ignored", logging.String("reason", rejection.Kind.String()))
		return Outcome{Result: ResultIgnored, Kind: rejection.Kind}
	}
	logging.ErrorWithContext(logger, "sync delete failed", rejection.Kind.String(),
		logging.String("media_name", rejection.MediaName),
		logging.Error(rejection),
		logging.String(logging.FieldErrorHint, "check the media server webhook payload"),
	)
	return Outcome{Result: ResultRejected, Kind: rejection.Kind}
}

// selfDisable switches enabled off exactly once. Concurrent events that hit
// the same condition find it already off and do not write again.
func (h *Handler) selfDisable(logger *slog.Logger, name string) Outcome {
	outcome := Outcome{Result: ResultDisabled, Kind: KindMissingItemVirtualFlag}

	h.disableMu.Lock()
	defer h.disableMu.Unlock()

	current := h.settings.Get()
	if !current.Enabled {
		return outcome
	}
	current.Enabled = false
	outcome.SelfDisabled = true

	logging.ErrorWithContext(logger, "item_isvirtual missing from webhook; disabling sync to prevent accidental deletion",
		KindMissingItemVirtualFlag.String(),
		logging.String("media_name", name),
		logging.Alert("self_disable"),
		logging.String(logging.FieldErrorHint, "configure the media server to send item_isvirtual, then re-enable"),
	)
	if err := h.settings.Set(current); err != nil {
		logging.ErrorWithContext(logger, "persist disabled settings failed", "settings_persist", logging.Error(err))
		outcome.Err = fmt.Errorf("persist settings: %w", err)
	}
	return outcome
}
