package animation

import (
	"math"
	"time"
)

// Seek extrapolates the playback position between polls from wall-clock deltas.
// Elapsed time is not clamped; each poll resynchronizes it through Sync.
type Seek struct {
	elapsedSec float64
	totalSec   float64
	lastSyncAt time.Time
	viewport   int
	padding    int
	fillPx     int
}

// NewSeek creates the seek state for a position observed at the given time
func NewSeek(progressMs, durationMs int, at time.Time, viewport, padding int) *Seek {
	s := &Seek{
		totalSec: float64(durationMs) / 1000,
		viewport: viewport,
		padding:  padding,
	}
	s.Sync(progressMs, at)
	return s
}

// Sync resets the position to ground truth
func (s *Seek) Sync(progressMs int, at time.Time) {
	s.elapsedSec = float64(progressMs) / 1000
	s.lastSyncAt = at
	s.updateFill()
}

// Tick advances the position by the time elapsed since the previous tick,
// only while playing. A tick older than the last sync point advances nothing.
func (s *Seek) Tick(now time.Time, isPlaying bool) {
	if now.Before(s.lastSyncAt) {
		s.updateFill()
		return
	}
	diff := now.Sub(s.lastSyncAt).Seconds()
	s.lastSyncAt = now
	if isPlaying {
		s.elapsedSec += diff
	}
	s.updateFill()
}

func (s *Seek) updateFill() {
	s.fillPx = s.padding + int(math.Floor(s.percent()*float64(s.viewport-2*s.padding)))
}

// percent is 0 for streams of unknown length
func (s *Seek) percent() float64 {
	if s.totalSec <= 0 {
		return 0
	}
	return s.elapsedSec / s.totalSec
}

// ReachedEnd hints that the track is over and a poll is due
func (s *Seek) ReachedEnd() bool {
	return s.totalSec > 0 && s.percent() >= 1
}

// FillPx returns the x coordinate of the end of the progress fill
func (s *Seek) FillPx() int { return s.fillPx }

// Elapsed returns the extrapolated position in seconds
func (s *Seek) Elapsed() float64 { return s.elapsedSec }

// Total returns the track length in seconds
func (s *Seek) Total() float64 { return s.totalSec }
