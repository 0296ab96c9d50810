package engine

import (
	"fmt"
	"math"

	"github.com/genricoloni/spotled/internal/domain"
	"go.uber.org/multierr"
)

// Fixed layout offsets in pixels
const (
	titleY           = 5
	artistFromBottom = 40
	labelFromBottom  = 11
	labelGap         = 5
)

// Footer is the element drawn at the bottom centre of an active frame
type Footer int

const (
	// FooterSeekBar shows the progress bar
	FooterSeekBar Footer = iota
	// FooterPause shows the pause glyph
	FooterPause
	// FooterMute shows the muted speaker glyph
	FooterMute
)

// FooterFor picks the footer: paused wins over muted, muted over the seek bar
func FooterFor(p domain.Playback) Footer {
	switch {
	case !p.IsPlaying:
		return FooterPause
	case p.IsMuted:
		return FooterMute
	default:
		return FooterSeekBar
	}
}

// FormatClock renders a position in seconds as mm:ss
func FormatClock(sec float64) string {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	total := int(sec)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// drawFrame draws the frame for the current state. EndFrame runs on every path.
func (e *Engine) drawFrame() (err error) {
	c := e.renderer.BeginFrame()
	defer func() {
		err = multierr.Append(err, e.renderer.EndFrame())
	}()

	switch cur := e.current.(type) {
	case domain.Playback:
		e.drawPlayback(c, cur)
	case domain.NoPlayback:
		e.drawStatus(c, "nothing playing", true)
	default:
		e.drawStatus(c, "loading", false)
	}
	return nil
}

func (e *Engine) drawPlayback(c domain.Canvas, p domain.Playback) {
	w, h := e.renderer.Size()
	width, height := float64(w), float64(h)
	padding := float64(e.cfg.Animation.SeekPadding)

	c.DrawText(e.title.OffsetX(), titleY, e.title.Text(), domain.FontTitle)
	c.DrawText(e.artist.OffsetX(), height-artistFromBottom, e.artist.Text(), domain.FontArtist)

	c.DrawText(0, height-labelFromBottom, FormatClock(e.seek.Elapsed()), domain.FontSeek)
	c.DrawText(width-padding+labelGap, height-labelFromBottom, FormatClock(e.seek.Total()), domain.FontSeek)

	switch FooterFor(p) {
	case FooterPause:
		drawPauseGlyph(c, width/2, height)
	case FooterMute:
		drawMuteGlyph(c, width/2, height)
	default:
		fill := float64(e.seek.FillPx())
		c.DrawRect(padding, height-6, width-padding, height-3, false)
		c.DrawRect(padding, height-5, fill+2, height-4, true)
	}
}

// drawStatus draws a centred message, optionally above a pause glyph
func (e *Engine) drawStatus(c domain.Canvas, msg string, withGlyph bool) {
	w, h := e.renderer.Size()
	width, height := float64(w), float64(h)

	x := (width - e.renderer.TextWidth(msg, domain.FontStatus)) / 2
	if x < 0 {
		x = 0
	}
	c.DrawText(x, height/2-8, msg, domain.FontStatus)
	if withGlyph {
		drawPauseGlyph(c, width/2, height)
	}
}

// drawPauseGlyph draws two bars standing on the bottom edge around cx
func drawPauseGlyph(c domain.Canvas, cx, bottom float64) {
	c.DrawRect(cx-9, bottom-labelFromBottom, cx-6, bottom, true)
	c.DrawRect(cx+3, bottom-labelFromBottom, cx+6, bottom, true)
}

// drawMuteGlyph draws a speaker with a cross next to it
func drawMuteGlyph(c domain.Canvas, cx, bottom float64) {
	top := bottom - labelFromBottom
	c.DrawRect(cx-9, bottom-8, cx-6, bottom-3, true)
	c.DrawLine(cx-6, bottom-8, cx-2, top)
	c.DrawLine(cx-2, top, cx-2, bottom)
	c.DrawLine(cx-2, bottom, cx-6, bottom-3)

	c.DrawLine(cx+1, bottom-8, cx+7, bottom-2)
	c.DrawLine(cx+1, bottom-2, cx+7, bottom-8)
}
