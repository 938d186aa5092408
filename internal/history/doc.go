// Package history persists the transfer history that synced deletions remove.
//
// Each record ties a library item (movie or tv, identified by TMDB id and,
// for tv, season and episode) to the source file it was transferred from and
// the destination it was placed at. The store uses SQLite through
// modernc.org/sqlite with WAL journaling and retries writes that hit
// SQLITE_BUSY.
package history
