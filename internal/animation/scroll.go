// Package animation contains the per-tick state machines driving the display:
// ping-pong scrolling of text fields wider than the viewport and seek bar
// extrapolation between polls.
package animation

// Phase is the state of a scrolling text field
type Phase int

const (
	// Idle fields fit the viewport and never move
	Idle Phase = iota
	// MovingLeft reveals the end of the text
	MovingLeft
	// MovingRight returns to the start position
	MovingRight
	// RestingAtStart waits at offset 0 before the next sweep
	RestingAtStart
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case MovingLeft:
		return "moving_left"
	case MovingRight:
		return "moving_right"
	case RestingAtStart:
		return "resting_at_start"
	default:
		return "unknown"
	}
}

// ScrollSpeeds configures sweep speeds (pixels per tick) and the rest length
type ScrollSpeeds struct {
	Left      float64
	Right     float64
	RestTicks int
}

// GroupContext is computed once per tick across all fields of a Group
type GroupContext struct {
	// AllScrollCapableResting is true when every non-idle field rests at the start
	AllScrollCapableResting bool
	// OnlyOneScrollCapable is true when a single field of the group can scroll
	OnlyOneScrollCapable bool
}

// Scroll animates one text field.
// offsetX is always <= 0 except that MovingLeft may overshoot the far bound by one tick.
type Scroll struct {
	text        string
	textWidth   float64
	viewport    float64
	speeds      ScrollSpeeds
	offsetX     float64
	phase       Phase
	restCounter int
}

// NewScroll creates the animator for text of the given rendered width
func NewScroll(text string, textWidth, viewport float64, speeds ScrollSpeeds) *Scroll {
	s := &Scroll{
		text:      text,
		textWidth: textWidth,
		viewport:  viewport,
		speeds:    speeds,
		phase:     Idle,
	}
	if textWidth > viewport {
		s.phase = MovingLeft
	}
	return s
}

// Tick advances the field by one step
func (s *Scroll) Tick(ctx GroupContext) {
	switch s.phase {
	case Idle:
		return

	case MovingLeft:
		s.offsetX -= s.speeds.Left
		if s.offsetX <= -(s.textWidth - s.viewport) {
			s.phase = MovingRight
		}

	case MovingRight:
		s.offsetX += s.speeds.Right
		if s.offsetX >= 0 {
			s.offsetX = 0
			s.phase = RestingAtStart
			s.restCounter = 0
		}

	case RestingAtStart:
		// Frozen until siblings are back at the start as well
		if !ctx.AllScrollCapableResting && !ctx.OnlyOneScrollCapable {
			return
		}
		s.restCounter++
		if s.restCounter > s.speeds.RestTicks {
			s.phase = MovingLeft
			s.restCounter = 0
		}
	}
}

// Text returns the animated text
func (s *Scroll) Text() string { return s.text }

// OffsetX returns the horizontal draw offset
func (s *Scroll) OffsetX() float64 { return s.offsetX }

// Phase returns the current phase
func (s *Scroll) Phase() Phase { return s.phase }

// RestCounter returns the ticks spent resting so far
func (s *Scroll) RestCounter() int { return s.restCounter }

// ScrollCapable reports whether the text is wider than the viewport
func (s *Scroll) ScrollCapable() bool { return s.phase != Idle }

// Moving reports whether the field is mid-sweep
func (s *Scroll) Moving() bool {
	return s.phase == MovingLeft || s.phase == MovingRight
}
