package radio

import "time"

// StationID uniquely identifies a station in the directory.
type StationID string

// HeaderStyle selects which response header block a listener receives before
// the audio starts. It has no effect on the broadcast bytes themselves.
type HeaderStyle int

const (
	// HeaderPlain sends ordinary HTTP headers only.
	HeaderPlain HeaderStyle = iota
	// HeaderICY adds the icy-* header block for Shoutcast-style players.
	HeaderICY
)

// String returns the style name used in logs.
func (h HeaderStyle) String() string {
	if h == HeaderICY {
		return "icy"
	}
	return "plain"
}

// TrackInfo is one playlist entry, discovered when the media library is
// scanned. Title and Artist fall back to the file name when the file carries
// no readable tags; Duration is a best-effort probe and zero when unknown.
// Wire shapes are built by the handlers, not marshaled from this struct.
type TrackInfo struct {
	Path     string
	Title    string
	Artist   string
	Duration time.Duration
}

// ClientMeta carries attach-time information about a new listener.
// HeaderStyle records which header block the transport already sent; the
// broadcast itself never varies by it.
type ClientMeta struct {
	RemoteAddr  string
	HeaderStyle HeaderStyle
}

// Status is a point-in-time snapshot of one station for monitoring.
// Track fields are empty whenever nothing is loaded (station never started,
// or it is between tracks waiting for a readable entry); TrackDuration is
// the probed track length truncated to seconds, omitted when unknown.
type Status struct {
	ID            StationID `json:"id"`
	Name          string    `json:"name"`
	Genre         string    `json:"genre,omitempty"`
	BitrateKbps   int       `json:"bitrate_kbps"`
	Playing       bool      `json:"playing"`
	TrackID       string    `json:"track_id,omitempty"`
	TrackTitle    string    `json:"track_title,omitempty"`
	TrackArtist   string    `json:"track_artist,omitempty"`
	TrackDuration string    `json:"track_duration,omitempty"`
	Offset        int       `json:"offset"`
	BufferLen     int       `json:"buffer_len"`
	Listeners     int       `json:"listeners"`
}
