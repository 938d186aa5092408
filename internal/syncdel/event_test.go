package syncdel_test

import (
	"errors"
	"fmt"
	"testing"

	"mediasyncdel/internal/syncdel"
)

func deletionEvent(fields map[string]string) syncdel.RawEvent {
	raw := syncdel.RawEvent{
		syncdel.FieldEventType:     syncdel.EventTypeMediaDelete,
		syncdel.FieldItemIsVirtual: "False",
		syncdel.FieldMediaType:     "Movie",
		syncdel.FieldMediaName:     "Foo",
		syncdel.FieldTMDBID:        "123",
	}
	for k, v := range fields {
		if v == "<absent>" {
			delete(raw, k)
			continue
		}
		raw[k] = v
	}
	return raw
}

func TestNormalizeRejectsOtherEventTypes(t *testing.T) {
	for _, eventType := range []string{"", "<absent>", "media_add", "playback.start", "MEDIA_DEL"} {
		raw := deletionEvent(map[string]string{syncdel.FieldEventType: eventType})
		_, err := syncdel.Normalize(raw)
		if !errors.Is(err, syncdel.ErrNotApplicable) {
			t.Fatalf("event type %q: expected ErrNotApplicable, got %v", eventType, err)
		}
	}
}

func TestNormalizeRequiresMediaType(t *testing.T) {
	raw := deletionEvent(map[string]string{syncdel.FieldMediaType: "<absent>"})
	_, err := syncdel.Normalize(raw)
	if !errors.Is(err, syncdel.ErrMissingMediaType) {
		t.Fatalf("expected ErrMissingMediaType, got %v", err)
	}
	var rejection *syncdel.Rejection
	if !errors.As(err, &rejection) || rejection.MediaName != "Foo" {
		t.Fatalf("expected rejection carrying media name, got %#v", err)
	}
}

func TestNormalizeRequiresNumericExternalID(t *testing.T) {
	cases := []string{"<absent>", "", "tt0111161", "12a", "-5", "1.5"}
	for _, id := range cases {
		raw := deletionEvent(map[string]string{syncdel.FieldTMDBID: id})
		if _, err := syncdel.Normalize(raw); !errors.Is(err, syncdel.ErrMissingExternalID) {
			t.Fatalf("tmdb id %q: expected ErrMissingExternalID, got %v", id, err)
		}
	}
}

func TestNormalizeRejectsOutOfRangeExternalID(t *testing.T) {
	for _, id := range []string{"0", "000", "99999999999999999999", "9223372036854775808"} {
		raw := deletionEvent(map[string]string{syncdel.FieldTMDBID: id})
		_, err := syncdel.Normalize(raw)
		if !errors.Is(err, syncdel.ErrExternalIDRange) {
			t.Fatalf("tmdb id %q: expected ErrExternalIDRange, got %v", id, err)
		}
		if errors.Is(err, syncdel.ErrMissingExternalID) {
			t.Fatalf("tmdb id %q: must not be reported as missing", id)
		}
	}

	event, err := syncdel.Normalize(deletionEvent(map[string]string{syncdel.FieldTMDBID: "9223372036854775807"}))
	if err != nil {
		t.Fatalf("max int64 id: %v", err)
	}
	if event.TMDBID != 9223372036854775807 {
		t.Fatalf("unexpected id %d", event.TMDBID)
	}
}

func TestNormalizeZeroPadsSingleDigits(t *testing.T) {
	for v := 0; v < 10; v++ {
		raw := deletionEvent(map[string]string{
			syncdel.FieldSeasonNum:  fmt.Sprint(v),
			syncdel.FieldEpisodeNum: fmt.Sprint(v),
		})
		event, err := syncdel.Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		want := fmt.Sprintf("%02d", v)
		if event.SeasonNum != want || event.EpisodeNum != want {
			t.Fatalf("value %d: expected %q, got season %q episode %q", v, want, event.SeasonNum, event.EpisodeNum)
		}
	}
}

func TestNormalizeKeepsOtherNumbers(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10", "10"},
		{"12", "12"},
		{"123", "123"},
		{"07", "07"},
		{"00", "00"},
		{"Specials", "Specials"},
		{"<absent>", ""},
	}
	for _, tc := range tests {
		raw := deletionEvent(map[string]string{syncdel.FieldSeasonNum: tc.in})
		event, err := syncdel.Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if event.SeasonNum != tc.want {
			t.Fatalf("season %q: expected %q, got %q", tc.in, tc.want, event.SeasonNum)
		}
	}
}

func TestNormalizeCarriesFields(t *testing.T) {
	raw := deletionEvent(map[string]string{
		syncdel.FieldMediaType: "Trailer",
		syncdel.FieldMediaPath: "/media/movies/Foo (2020)/Foo.mkv",
		syncdel.FieldTMDBID:    "0042",
	})
	event, err := syncdel.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if event.MediaType != "Trailer" || event.MediaType.Known() {
		t.Fatalf("expected unknown media type to be carried through, got %q", event.MediaType)
	}
	if event.ExternalID != "0042" || event.TMDBID != 42 {
		t.Fatalf("unexpected external id: %q / %d", event.ExternalID, event.TMDBID)
	}
	if event.MediaPath != "/media/movies/Foo (2020)/Foo.mkv" {
		t.Fatalf("unexpected media path: %q", event.MediaPath)
	}
}
