package syncdel

import (
	"strconv"
	"strings"
)

// Webhook field names as delivered by the media server.
const (
	FieldEventType     = "event_type"
	FieldItemIsVirtual = "item_isvirtual"
	FieldMediaType     = "media_type"
	FieldMediaName     = "media_name"
	FieldMediaPath     = "media_path"
	FieldTMDBID        = "tmdb_id"
	FieldSeasonNum     = "season_num"
	FieldEpisodeNum    = "episode_num"
)

// EventTypeMediaDelete is the only event type the pipeline acts on.
const EventTypeMediaDelete = "media_del"

// RawEvent is an untrusted webhook payload with every value already rendered
// as a string. A key that is absent and a key with an empty value are
// treated the same.
type RawEvent map[string]string

// Get returns the trimmed value for key and whether it is non-empty.
func (e RawEvent) Get(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	value := strings.TrimSpace(e[key])
	return value, value != ""
}

// IsMediaDeletion reports whether the event type is media_del.
func (e RawEvent) IsMediaDeletion() bool {
	value, _ := e.Get(FieldEventType)
	return value == EventTypeMediaDelete
}

// MediaType is the library item kind named by the event. Values outside the
// four known types are carried through and ignored at dispatch.
type MediaType string

const (
	MediaMovie   MediaType = "Movie"
	MediaSeries  MediaType = "Series"
	MediaSeason  MediaType = "Season"
	MediaEpisode MediaType = "Episode"
)

// Known reports whether t has a deletion scope.
func (t MediaType) Known() bool {
	switch t {
	case MediaMovie, MediaSeries, MediaSeason, MediaEpisode:
		return true
	default:
		return false
	}
}

// NormalizedEvent is the validated form of a RawEvent.
type NormalizedEvent struct {
	MediaType MediaType
	MediaName string
	// MediaPath is empty when the server did not report one.
	MediaPath string
	// ExternalID is the TMDB id exactly as received (digits only).
	ExternalID string
	TMDBID     int64
	// SeasonNum and EpisodeNum hold zero-padded numbers, or the raw value
	// when it was not numeric. Empty means absent.
	SeasonNum  string
	EpisodeNum string
}

// Normalize extracts and validates the fields needed for dispatch. It returns
// a *Rejection for events that are not media deletions or lack a media type or
// numeric TMDB id. An all-digit id that is zero or overflows int64 is
// rejected with KindExternalIDOutOfRange.
func Normalize(raw RawEvent) (NormalizedEvent, error) {
	if !raw.IsMediaDeletion() {
		return NormalizedEvent{}, reject(KindNotApplicable, "")
	}

	name, _ := raw.Get(FieldMediaName)
	path, _ := raw.Get(FieldMediaPath)
	season, _ := raw.Get(FieldSeasonNum)
	episode, _ := raw.Get(FieldEpisodeNum)

	event := NormalizedEvent{
		MediaName:  name,
		MediaPath:  path,
		SeasonNum:  padNumber(season),
		EpisodeNum: padNumber(episode),
	}

	mediaType, ok := raw.Get(FieldMediaType)
	if !ok {
		return NormalizedEvent{}, reject(KindMissingMediaType, name)
	}
	event.MediaType = MediaType(mediaType)

	externalID, ok := raw.Get(FieldTMDBID)
	if !ok || !isDigits(externalID) {
		return NormalizedEvent{}, reject(KindMissingExternalID, name)
	}
	id, err := strconv.ParseInt(externalID, 10, 64)
	if err != nil || id == 0 {
		return NormalizedEvent{}, reject(KindExternalIDOutOfRange, name)
	}
	event.ExternalID = externalID
	event.TMDBID = id

	return event, nil
}

// padNumber renders single digit numbers with a leading zero. Longer numbers
// and non-numeric values pass through unchanged.
func padNumber(value string) string {
	if len(value) == 1 && isDigits(value) {
		return "0" + value
	}
	return value
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
