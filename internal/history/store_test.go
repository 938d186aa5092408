package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"mediasyncdel/internal/history"
	"mediasyncdel/internal/testsupport"
)

func seedSeries(t *testing.T, store *history.Store, tmdbID int64) []*history.Record {
	t.Helper()
	var out []*history.Record
	for season := 1; season <= 2; season++ {
		for episode := 1; episode <= 3; episode++ {
			out = append(out, testsupport.AddRecord(t, store, history.Record{
				MediaType:  history.MediaTV,
				Title:      "Show",
				TMDBID:     tmdbID,
				Season:     season,
				Episode:    episode,
				SourcePath: filepath.Join("/downloads", "show", "ep.mkv"),
				DestPath:   filepath.Join("/library", "Show", "ep.mkv"),
			}))
		}
	}
	return out
}

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	if store.Path() != cfg.HistoryDBPath() {
		t.Fatalf("unexpected db path %q", store.Path())
	}
	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty history, got %d", count)
	}

	// Reopening an initialized database keeps the schema.
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	reopened := testsupport.MustOpenHistory(t, cfg)
	if _, err := reopened.Count(context.Background()); err != nil {
		t.Fatalf("Count after reopen: %v", err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	store.Close()

	db, err := sql.Open("sqlite", cfg.HistoryDBPath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := history.Open(cfg); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestAddAndGet(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	ctx := context.Background()

	added := testsupport.AddRecord(t, store, history.Record{
		MediaType:  history.MediaMovie,
		Title:      "Foo",
		TMDBID:     123,
		SourcePath: "/downloads/Foo.mkv",
		DestPath:   "/library/Foo (2020)/Foo.mkv",
	})
	if added.ID == 0 || added.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp assigned, got %#v", added)
	}

	fetched, err := store.Get(ctx, added.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fetched == nil || fetched.Title != "Foo" || fetched.MediaType != history.MediaMovie || fetched.SourcePath != "/downloads/Foo.mkv" {
		t.Fatalf("unexpected record: %#v", fetched)
	}

	missing, err := store.Get(ctx, added.ID+100)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing record, got %#v err=%v", missing, err)
	}
}

func TestAddValidatesRecords(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	ctx := context.Background()
	cases := []struct {
		name   string
		record history.Record
	}{
		{"media type", history.Record{MediaType: "music", TMDBID: 1}},
		{"tmdb id", history.Record{MediaType: history.MediaMovie}},
		{"movie episode", history.Record{MediaType: history.MediaMovie, TMDBID: 1, Season: 1}},
		{"negative season", history.Record{MediaType: history.MediaTV, TMDBID: 1, Season: -1}},
	}
	for _, tc := range cases {
		if _, err := store.Add(ctx, tc.record); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestMatchScopes(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	ctx := context.Background()

	seedSeries(t, store, 55)
	seedSeries(t, store, 77)
	testsupport.AddRecord(t, store, history.Record{MediaType: history.MediaMovie, TMDBID: 55, Title: "Same id movie"})
	testsupport.AddRecord(t, store, history.Record{MediaType: history.MediaTV, TMDBID: 55, Season: 0, Episode: 1, Title: "Special"})

	cases := []struct {
		name string
		sel  history.Selector
		want int
	}{
		{"movie", history.Selector{MediaType: history.MediaMovie, TMDBID: 55}, 1},
		{"series", history.Selector{MediaType: history.MediaTV, TMDBID: 55}, 7},
		{"season", history.Selector{MediaType: history.MediaTV, TMDBID: 55, Season: history.IntRef(2)}, 3},
		{"specials", history.Selector{MediaType: history.MediaTV, TMDBID: 55, Season: history.IntRef(0)}, 1},
		{"episode", history.Selector{MediaType: history.MediaTV, TMDBID: 55, Season: history.IntRef(1), Episode: history.IntRef(3)}, 1},
		{"no match", history.Selector{MediaType: history.MediaTV, TMDBID: 99}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.Match(ctx, tc.sel)
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("expected %d records, got %d", tc.want, len(got))
			}
			for _, record := range got {
				if record.TMDBID != tc.sel.TMDBID || record.MediaType != tc.sel.MediaType {
					t.Fatalf("record outside selector: %#v", record)
				}
			}
		})
	}
}

func TestMatchRequiresIdentity(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	if _, err := store.Match(context.Background(), history.Selector{MediaType: history.MediaTV}); err == nil {
		t.Fatal("expected error without tmdb id")
	}
	if _, err := store.Match(context.Background(), history.Selector{TMDBID: 1}); err == nil {
		t.Fatal("expected error without media type")
	}
}

func TestListAndDelete(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first := seedSeries(t, store, 55)
	seedSeries(t, store, 77)

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 12 {
		t.Fatalf("expected 12 records, got %d", len(all))
	}
	filtered, err := store.List(ctx, 77)
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(filtered) != 6 {
		t.Fatalf("expected 6 records for tmdb 77, got %d", len(filtered))
	}

	removed, err := store.Delete(ctx, first[0].ID, first[1].ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if removed, err := store.Delete(ctx); err != nil || removed != 0 {
		t.Fatalf("expected empty delete to be a no-op, got %d err=%v", removed, err)
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 10 {
		t.Fatalf("expected 10 remaining, got %d", count)
	}
}

func TestDeleteMatchingRemovesOnlyScope(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	ctx := context.Background()
	seedSeries(t, store, 55)
	seedSeries(t, store, 77)
	before, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}

	removed, err := store.DeleteMatching(ctx, history.Selector{MediaType: history.MediaTV, TMDBID: 55, Season: history.IntRef(2)})
	if err != nil {
		t.Fatalf("DeleteMatching: %v", err)
	}
	if len(removed) != 3 {
		t.Fatalf("expected 3 removed records, got %d", len(removed))
	}
	for _, record := range removed {
		if record.TMDBID != 55 || record.Season != 2 {
			t.Fatalf("removed record outside scope: %#v", record)
		}
	}
	after, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if after != before-3 {
		t.Fatalf("expected %d records left, got %d", before-3, after)
	}

	removed, err = store.DeleteMatching(ctx, history.Selector{MediaType: history.MediaTV, TMDBID: 55, Season: history.IntRef(2)})
	if err != nil || len(removed) != 0 {
		t.Fatalf("expected nothing left to remove, got %d records err=%v", len(removed), err)
	}
}
