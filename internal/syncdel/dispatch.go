package syncdel

import (
	"fmt"
	"strconv"
)

// DeletionIntent is a validated request to remove one library scope.
type DeletionIntent struct {
	Scope MediaType
	// Descriptor is the label used in logs and notifications.
	Descriptor   string
	DeleteSource bool

	MediaName  string
	MediaPath  string
	ExternalID string
	TMDBID     int64
	// Season and Episode are zero-padded; empty when the scope is wider.
	Season  string
	Episode string
}

// SeasonNumber returns Season as an int, or 0 when unset.
func (i DeletionIntent) SeasonNumber() int {
	n, _ := strconv.Atoi(i.Season)
	return n
}

// EpisodeNumber returns Episode as an int, or 0 when unset.
func (i DeletionIntent) EpisodeNumber() int {
	n, _ := strconv.Atoi(i.Episode)
	return n
}

// Dispatch routes a normalized event to its deletion scope. Seasons need a
// numeric season and episodes a numeric season and episode. Unknown media
// types return ErrUnknownMediaType, which callers drop silently.
func Dispatch(event NormalizedEvent, settings Settings) (DeletionIntent, error) {
	intent := DeletionIntent{
		Scope:        event.MediaType,
		DeleteSource: settings.DeleteSource,
		MediaName:    event.MediaName,
		MediaPath:    event.MediaPath,
		ExternalID:   event.ExternalID,
		TMDBID:       event.TMDBID,
	}

	switch event.MediaType {
	case MediaMovie:
		intent.Descriptor = fmt.Sprintf("Movie %s %s", event.MediaName, event.ExternalID)
	case MediaSeries:
		intent.Descriptor = fmt.Sprintf("Series %s %s", event.MediaName, event.ExternalID)
	case MediaSeason:
		if !isDigits(event.SeasonNum) {
			return DeletionIntent{}, reject(KindMissingSeason, event.MediaName)
		}
		intent.Season = event.SeasonNum
		intent.Descriptor = fmt.Sprintf("Series %s S%s %s", event.MediaName, event.SeasonNum, event.ExternalID)
	case MediaEpisode:
		if !isDigits(event.SeasonNum) || !isDigits(event.EpisodeNum) {
			return DeletionIntent{}, reject(KindMissingEpisode, event.MediaName)
		}
		intent.Season = event.SeasonNum
		intent.Episode = event.EpisodeNum
		intent.Descriptor = fmt.Sprintf("Series %s S%sE%s %s", event.MediaName, event.SeasonNum, event.EpisodeNum, event.ExternalID)
	default:
		return DeletionIntent{}, reject(KindUnknownMediaType, event.MediaName)
	}
	return intent, nil
}
