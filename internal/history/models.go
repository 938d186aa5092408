package history

import "time"

// MediaType is the library category of a transfer record.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// Valid reports whether t is a stored category.
func (t MediaType) Valid() bool {
	return t == MediaMovie || t == MediaTV
}

// Record is one transferred file.
type Record struct {
	ID         int64
	MediaType  MediaType
	Title      string
	TMDBID     int64
	Season     int
	Episode    int
	SourcePath string
	DestPath   string
	CreatedAt  time.Time
}

// Selector narrows history records to a deletion scope. Season and Episode
// are ignored when nil, so a selector with only MediaType and TMDBID matches
// a whole movie or series. Season 0 is a valid season (specials).
type Selector struct {
	MediaType MediaType
	TMDBID    int64
	Season    *int
	Episode   *int
}

// IntRef returns a pointer to v for Selector fields.
func IntRef(v int) *int {
	return &v
}
