package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Add inserts a record and returns it with ID and CreatedAt assigned.
func (s *Store) Add(ctx context.Context, record Record) (*Record, error) {
	if !record.MediaType.Valid() {
		return nil, fmt.Errorf("invalid media type %q", record.MediaType)
	}
	if record.TMDBID <= 0 {
		return nil, errors.New("tmdb id is required")
	}
	if record.MediaType == MediaMovie && (record.Season != 0 || record.Episode != 0) {
		return nil, errors.New("movie records cannot carry season or episode")
	}
	if record.Season < 0 || record.Episode < 0 {
		return nil, errors.New("season and episode cannot be negative")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	res, err := s.execWithRetry(ctx,
		`INSERT INTO transfer_history (media_type, title, tmdb_id, season, episode, source_path, dest_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(record.MediaType),
		nullableString(record.Title),
		record.TMDBID,
		episodeColumn(record.MediaType, record.Season),
		episodeColumn(record.MediaType, record.Episode),
		nullableString(record.SourcePath),
		nullableString(record.DestPath),
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert history record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("history record id: %w", err)
	}
	record.ID = id
	return &record, nil
}

// Get returns the record with id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM transfer_history WHERE id = ?", id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get history record: %w", err)
	}
	return record, nil
}

// List returns records ordered by id. A positive tmdbID restricts the result
// to that title.
func (s *Store) List(ctx context.Context, tmdbID int64) ([]*Record, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + recordColumns + " FROM transfer_history"
	var args []any
	if tmdbID > 0 {
		query += " WHERE tmdb_id = ?"
		args = append(args, tmdbID)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}
	return records, nil
}

// Match returns the records covered by sel.
func (s *Store) Match(ctx context.Context, sel Selector) ([]*Record, error) {
	ctx = ensureContext(ctx)
	where, args, err := selectorWhere(sel)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM transfer_history WHERE "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("match history: %w", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}
	return records, nil
}

// DeleteMatching removes every record covered by sel in one transaction and
// returns the removed records.
func (s *Store) DeleteMatching(ctx context.Context, sel Selector) ([]*Record, error) {
	ctx = ensureContext(ctx)
	where, args, err := selectorWhere(sel)
	if err != nil {
		return nil, err
	}
	var removed []*Record
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			"SELECT "+recordColumns+" FROM transfer_history WHERE "+where+" ORDER BY id", args...)
		if err != nil {
			return err
		}
		records, err := scanRecords(rows)
		if err != nil {
			return err
		}
		removed = records
		if len(records) == 0 {
			return nil
		}
		_, err = tx.ExecContext(ctx, "DELETE FROM transfer_history WHERE "+where, args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("delete matching history: %w", err)
	}
	return removed, nil
}

// Delete removes the records with the given ids and reports how many were removed.
func (s *Store) Delete(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := s.execWithRetry(ctx,
		"DELETE FROM transfer_history WHERE id IN ("+makePlaceholders(len(ids))+")", args...)
	if err != nil {
		return 0, fmt.Errorf("delete history records: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete history rows affected: %w", err)
	}
	return removed, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM transfer_history").Scan(&count); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return count, nil
}
