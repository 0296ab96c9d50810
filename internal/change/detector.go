// Package change classifies the difference between two playback snapshots.
package change

import (
	"time"

	"github.com/genricoloni/spotled/internal/domain"
)

// DefaultJumpThreshold is the position drift tolerated before a seek is assumed
const DefaultJumpThreshold = 5 * time.Second

// Detector decides which playback changes invalidate the animation state
type Detector struct {
	jumpThreshold time.Duration
}

// NewDetector creates a detector, a non-positive threshold selects the default
func NewDetector(jumpThreshold time.Duration) *Detector {
	if jumpThreshold <= 0 {
		jumpThreshold = DefaultJumpThreshold
	}
	return &Detector{jumpThreshold: jumpThreshold}
}

// Classify compares current against previous. Rules apply in priority order;
// a nil previous is treated as NoPlayback.
func (d *Detector) Classify(previous, current domain.Snapshot) domain.Transition {
	prev, prevPlaying := previous.(domain.Playback)
	cur, curPlaying := current.(domain.Playback)

	switch {
	case prevPlaying && !curPlaying:
		return domain.TransitionBecameNothingPlaying
	case !prevPlaying && curPlaying:
		return domain.TransitionBecamePlaying
	case !prevPlaying && !curPlaying:
		return domain.TransitionNone
	}

	if cur.IdentityKey() != prev.IdentityKey() {
		return domain.TransitionTrackChanged
	}
	if cur.IsPlaying != prev.IsPlaying {
		return domain.TransitionPlayPauseToggled
	}
	if cur.IsMuted != prev.IsMuted {
		return domain.TransitionMuteToggled
	}
	if cur.IsPlaying {
		drift := time.Duration(cur.ProgressMs)*time.Millisecond - Extrapolate(prev, cur.At)
		if drift < 0 {
			drift = -drift
		}
		if drift > d.jumpThreshold {
			return domain.TransitionPositionJumped
		}
	}
	return domain.TransitionNone
}

// Extrapolate returns where p's position should be at the given time
func Extrapolate(p domain.Playback, at time.Time) time.Duration {
	pos := time.Duration(p.ProgressMs) * time.Millisecond
	if p.IsPlaying {
		pos += at.Sub(p.At)
	}
	return pos
}
