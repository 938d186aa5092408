package history

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const recordColumns = "id, media_type, title, tmdb_id, season, episode, source_path, dest_path, created_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id         int64
		mediaType  string
		title      sql.NullString
		tmdbID     int64
		season     sql.NullInt64
		episode    sql.NullInt64
		sourcePath sql.NullString
		destPath   sql.NullString
		createdRaw sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&mediaType,
		&title,
		&tmdbID,
		&season,
		&episode,
		&sourcePath,
		&destPath,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:         id,
		MediaType:  MediaType(mediaType),
		Title:      title.String,
		TMDBID:     tmdbID,
		Season:     int(season.Int64),
		Episode:    int(episode.Int64),
		SourcePath: sourcePath.String,
		DestPath:   destPath.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	return record, nil
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	defer rows.Close()
	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// episodeColumn stores season and episode numbers for tv records only.
func episodeColumn(mediaType MediaType, value int) any {
	if mediaType != MediaTV {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

// selectorWhere builds the WHERE clause for sel. Nil Season and Episode
// leave that column unconstrained.
func selectorWhere(sel Selector) (string, []any, error) {
	if !sel.MediaType.Valid() {
		return "", nil, fmt.Errorf("invalid media type %q", sel.MediaType)
	}
	if sel.TMDBID <= 0 {
		return "", nil, errors.New("tmdb id is required")
	}
	clauses := []string{"media_type = ?", "tmdb_id = ?"}
	args := []any{string(sel.MediaType), sel.TMDBID}
	if sel.Season != nil {
		clauses = append(clauses, "season = ?")
		args = append(args, *sel.Season)
	}
	if sel.Episode != nil {
		clauses = append(clauses, "episode = ?")
		args = append(args, *sel.Episode)
	}
	return strings.Join(clauses, " AND "), args, nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
