package syncdel

import (
	"fmt"
	"log/slog"
)

// Kind classifies why an event stopped before producing an intent.
type Kind int

const (
	KindNone Kind = iota
	// KindInactive means the handler is switched off.
	KindInactive
	// KindNotApplicable means the event is not a media deletion.
	KindNotApplicable
	// KindMissingItemVirtualFlag means the server omitted item_isvirtual.
	KindMissingItemVirtualFlag
	// KindVirtualItem means the deleted item was a virtual placeholder.
	KindVirtualItem
	KindMissingMediaType
	KindMissingExternalID
	// KindExternalIDOutOfRange means the TMDB id is all digits but zero or
	// too large for a 64-bit id.
	KindExternalIDOutOfRange
	// KindPathExcluded means the media path sits under an excluded prefix.
	KindPathExcluded
	KindMissingSeason
	KindMissingEpisode
	// KindUnknownMediaType means the media type has no deletion scope.
	KindUnknownMediaType
)

var kindNames = map[Kind]string{
	KindNone:                   "none",
	KindInactive:               "inactive",
	KindNotApplicable:          "not_applicable",
	KindMissingItemVirtualFlag: "missing_item_virtual_flag",
	KindVirtualItem:            "virtual_item",
	KindMissingMediaType:       "missing_media_type",
	KindMissingExternalID:      "missing_external_id",
	KindExternalIDOutOfRange:   "external_id_out_of_range",
	KindPathExcluded:           "path_excluded",
	KindMissingSeason:          "missing_season",
	KindMissingEpisode:         "missing_episode",
	KindUnknownMediaType:       "unknown_media_type",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Silent reports whether events of this kind are dropped without comment.
func (k Kind) Silent() bool {
	switch k {
	case KindInactive, KindNotApplicable, KindUnknownMediaType:
		return true
	default:
		return false
	}
}

// Level is the log level at which a drop of this kind is reported.
func (k Kind) Level() slog.Level {
	switch k {
	case KindInactive, KindNotApplicable, KindUnknownMediaType:
		return slog.LevelDebug
	case KindVirtualItem, KindPathExcluded, KindNone:
		return slog.LevelInfo
	default:
		return slog.LevelError
	}
}

// Rejection is the error returned when Normalize or Dispatch refuses an event.
type Rejection struct {
	Kind      Kind
	MediaName string
}

// Sentinels for errors.Is; any Rejection matches the sentinel of its kind.
var (
	ErrNotApplicable     = &Rejection{Kind: KindNotApplicable}
	ErrMissingMediaType  = &Rejection{Kind: KindMissingMediaType}
	ErrMissingExternalID = &Rejection{Kind: KindMissingExternalID}
	ErrExternalIDRange   = &Rejection{Kind: KindExternalIDOutOfRange}
	ErrMissingSeason     = &Rejection{Kind: KindMissingSeason}
	ErrMissingEpisode    = &Rejection{Kind: KindMissingEpisode}
	ErrUnknownMediaType  = &Rejection{Kind: KindUnknownMediaType}
)

func (r *Rejection) Error() string {
	var reason string
	switch r.Kind {
	case KindNotApplicable:
		reason = "not a media deletion event"
	case KindMissingMediaType:
		reason = "media type missing"
	case KindMissingExternalID:
		reason = "tmdb id missing or not numeric"
	case KindExternalIDOutOfRange:
		reason = "tmdb id is not a positive 64-bit integer"
	case KindMissingSeason:
		reason = "season number missing"
	case KindMissingEpisode:
		reason = "season or episode number missing"
	case KindUnknownMediaType:
		reason = "media type has no deletion scope"
	default:
		reason = r.Kind.String()
	}
	if r.MediaName == "" {
		return "sync delete: " + reason
	}
	return fmt.Sprintf("sync delete %s: %s", r.MediaName, reason)
}

// Is matches any Rejection carrying the same kind.
func (r *Rejection) Is(target error) bool {
	other, ok := target.(*Rejection)
	return ok && other.Kind == r.Kind
}

func reject(kind Kind, mediaName string) *Rejection {
	return &Rejection{Kind: kind, MediaName: mediaName}
}
