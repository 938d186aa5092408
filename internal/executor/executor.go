// Package executor carries out deletion intents against the transfer history
// and the source files it records.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"mediasyncdel/internal/fileutil"
	"mediasyncdel/internal/history"
	"mediasyncdel/internal/logging"
	"mediasyncdel/internal/metrics"
	"mediasyncdel/internal/syncdel"
)

// Operation labels used for logs and metrics.
const (
	OpDeleteHistory = "delete_history"
	OpDeleteSource  = "delete_source"
)

// HistoryStore is the subset of history.Store the executor needs.
type HistoryStore interface {
	Match(ctx context.Context, sel history.Selector) ([]*history.Record, error)
	DeleteMatching(ctx context.Context, sel history.Selector) ([]*history.Record, error)
}

// Executor implements syncdel.Executor on top of a HistoryStore.
type Executor struct {
	store   HistoryStore
	roots   []string
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New builds an Executor. Empty folders left by source deletion are pruned
// only below one of roots; with no roots nothing is pruned. m may be nil.
func New(store HistoryStore, roots []string, m *metrics.Metrics, logger *slog.Logger) *Executor {
	return &Executor{
		store:   store,
		roots:   append([]string(nil), roots...),
		metrics: m,
		logger:  logging.NewComponentLogger(logger, "executor"),
	}
}

// SelectorFor maps an intent to the history records it covers. Movies match
// on TMDB id; series, seasons and episodes narrow the tv records in turn.
func SelectorFor(intent syncdel.DeletionIntent) (history.Selector, error) {
	sel := history.Selector{TMDBID: intent.TMDBID}
	switch intent.Scope {
	case syncdel.MediaMovie:
		sel.MediaType = history.MediaMovie
	case syncdel.MediaSeries:
		sel.MediaType = history.MediaTV
	case syncdel.MediaSeason:
		sel.MediaType = history.MediaTV
		sel.Season = history.IntRef(intent.SeasonNumber())
	case syncdel.MediaEpisode:
		sel.MediaType = history.MediaTV
		sel.Season = history.IntRef(intent.SeasonNumber())
		sel.Episode = history.IntRef(intent.EpisodeNumber())
	default:
		return history.Selector{}, fmt.Errorf("no history scope for media type %q", intent.Scope)
	}
	return sel, nil
}

// DeleteHistory removes every history record the intent covers.
func (e *Executor) DeleteHistory(ctx context.Context, intent syncdel.DeletionIntent) error {
	logger := logging.WithContext(ctx, e.logger).With(logging.String(logging.FieldDescriptor, intent.Descriptor))
	if e.store == nil {
		return e.fail(OpDeleteHistory, errors.New("history store unavailable"))
	}
	sel, err := SelectorFor(intent)
	if err != nil {
		return e.fail(OpDeleteHistory, err)
	}
	removed, err := e.store.DeleteMatching(ctx, sel)
	if err != nil {
		return e.fail(OpDeleteHistory, err)
	}
	if len(removed) == 0 {
		logger.Info("no history records matched")
		return nil
	}
	logger.Info("history records deleted", logging.Int("removed", len(removed)))
	return nil
}

// DeleteSourceFiles removes the source file of every covered record and
// prunes directories left empty, stopping below the source root that holds
// the file. Files that are already gone are skipped.
// Every record is attempted; failures are joined.
func (e *Executor) DeleteSourceFiles(ctx context.Context, intent syncdel.DeletionIntent) error {
	logger := logging.WithContext(ctx, e.logger).With(logging.String(logging.FieldDescriptor, intent.Descriptor))
	records, err := e.match(ctx, intent)
	if err != nil {
		return e.fail(OpDeleteSource, err)
	}

	var (
		errs    []error
		removed int
	)
	for _, record := range records {
		if record.SourcePath == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		ok, err := fileutil.RemoveFile(record.SourcePath)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !ok {
			logger.Debug("source file already absent", logging.String("source_path", record.SourcePath))
			continue
		}
		removed++
		logger.Info("source file deleted", logging.String("source_path", record.SourcePath))
		boundary := fileutil.Boundary(record.SourcePath, e.roots)
		if boundary == "" {
			continue
		}
		pruned, err := fileutil.PruneEmptyDirs(filepath.Dir(record.SourcePath), boundary)
		if err != nil {
			errs = append(errs, err)
		}
		for _, dir := range pruned {
			logger.Debug("empty directory removed", logging.String("dir", dir))
		}
	}

	logger.Info("source deletion finished",
		logging.Int("records", len(records)),
		logging.Int("removed", removed),
	)
	if err := errors.Join(errs...); err != nil {
		return e.fail(OpDeleteSource, err)
	}
	return nil
}

func (e *Executor) match(ctx context.Context, intent syncdel.DeletionIntent) ([]*history.Record, error) {
	if e.store == nil {
		return nil, errors.New("history store unavailable")
	}
	sel, err := SelectorFor(intent)
	if err != nil {
		return nil, err
	}
	return e.store.Match(ctx, sel)
}

func (e *Executor) fail(operation string, err error) error {
	e.metrics.ExecutorError(operation)
	return fmt.Errorf("%s: %w", operation, err)
}
