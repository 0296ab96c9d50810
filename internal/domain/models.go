package domain

import "time"

// Snapshot is one immutable observation of playback state.
// It is either NoPlayback or Playback; no other implementations exist.
type Snapshot interface {
	// CapturedAt returns the wall-clock time the observation was taken
	CapturedAt() time.Time

	isSnapshot()
}

// NoPlayback means nothing is playing, or the source could not tell us
type NoPlayback struct {
	// At is the capture time
	At time.Time
}

// CapturedAt returns the capture time
func (n NoPlayback) CapturedAt() time.Time { return n.At }

func (NoPlayback) isSnapshot() {}

// Playback contains the state of the track currently loaded on the source
type Playback struct {
	// Title of the current track
	Title string
	// Artists in credit order, first one is the primary artist
	Artists []string
	// DurationMs is the track length in milliseconds
	DurationMs int
	// ProgressMs is the playback position in milliseconds, within [0, DurationMs]
	ProgressMs int
	// IsPlaying is false while paused
	IsPlaying bool
	// IsMuted is true when the output volume is zero
	IsMuted bool
	// VolumePercent is the output volume in [0, 100]
	VolumePercent int
	// At is the capture time
	At time.Time
}

// CapturedAt returns the capture time
func (p Playback) CapturedAt() time.Time { return p.At }

func (Playback) isSnapshot() {}

// IdentityKey identifies a track by title and primary artist.
// Two distinct recordings sharing both collide; this is accepted.
func (p Playback) IdentityKey() string {
	artist := ""
	if len(p.Artists) > 0 {
		artist = p.Artists[0]
	}
	return p.Title + "\x00" + artist
}

// Transition classifies the difference between two consecutive snapshots
type Transition int

const (
	// TransitionNone means the animators can keep running
	TransitionNone Transition = iota
	// TransitionTrackChanged means a different track is loaded
	TransitionTrackChanged
	// TransitionPlayPauseToggled means playback was paused or resumed
	TransitionPlayPauseToggled
	// TransitionMuteToggled means the volume went to or left zero
	TransitionMuteToggled
	// TransitionPositionJumped means the position moved further than extrapolation allows
	TransitionPositionJumped
	// TransitionBecameNothingPlaying means playback stopped entirely
	TransitionBecameNothingPlaying
	// TransitionBecamePlaying means a track appeared after nothing was playing
	TransitionBecamePlaying
)

var transitionNames = [...]string{
	TransitionNone:                 "none",
	TransitionTrackChanged:         "track_changed",
	TransitionPlayPauseToggled:     "play_pause_toggled",
	TransitionMuteToggled:          "mute_toggled",
	TransitionPositionJumped:       "position_jumped",
	TransitionBecameNothingPlaying: "became_nothing_playing",
	TransitionBecamePlaying:        "became_playing",
}

func (t Transition) String() string {
	if t < 0 || int(t) >= len(transitionNames) {
		return "unknown"
	}
	return transitionNames[t]
}

// FontRef selects one of the configured font faces
type FontRef int

const (
	// FontTitle is used for the track title line
	FontTitle FontRef = iota
	// FontArtist is used for the artist line
	FontArtist
	// FontSeek is used for the time labels
	FontSeek
	// FontStatus is used for placeholder messages
	FontStatus
)
