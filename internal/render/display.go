// Package render draws frames with gg and pushes them to the display device.
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/genricoloni/spotled/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Sink receives finished frames
type Sink interface {
	// Flush pushes a frame to the device
	Flush(frame image.Image) error
	// Close releases the device
	Close() error
}

// Display implements domain.Renderer on a gg context.
// Only the tick goroutine may use it.
type Display struct {
	logger *zap.Logger
	dc     *gg.Context
	fonts  *Fonts
	sink   Sink
	width  int
	height int
}

// NewDisplay creates a renderer for a width x height monochrome display
func NewDisplay(logger *zap.Logger, width, height int, fonts *Fonts, sink Sink) *Display {
	dc := gg.NewContext(width, height)
	dc.SetLineWidth(1)
	return &Display{
		logger: logger,
		dc:     dc,
		fonts:  fonts,
		sink:   sink,
		width:  width,
		height: height,
	}
}

// BeginFrame clears the back buffer
func (d *Display) BeginFrame() domain.Canvas {
	d.dc.SetColor(color.Black)
	d.dc.Clear()
	d.dc.SetColor(color.White)
	return canvas{d}
}

// EndFrame flushes the back buffer to the sink
func (d *Display) EndFrame() error {
	if err := d.sink.Flush(d.dc.Image()); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDeviceFault, err)
	}
	return nil
}

// TextWidth returns the rendered width of text in pixels
func (d *Display) TextWidth(text string, font domain.FontRef) float64 {
	return d.fonts.Width(text, font)
}

// Size returns the display geometry in pixels
func (d *Display) Size() (int, int) {
	return d.width, d.height
}

// Close blanks the display and releases the sink
func (d *Display) Close() error {
	d.BeginFrame()
	err := d.EndFrame()
	if cerr := d.sink.Close(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: closing: %w", domain.ErrDeviceFault, cerr))
	}
	d.logger.Info("Display released")
	return err
}

// canvas draws white on black
type canvas struct {
	d *Display
}

func (c canvas) DrawText(x, y float64, text string, font domain.FontRef) {
	c.d.dc.SetFontFace(c.d.fonts.Face(font))
	// ay=1 puts the top of the text at y
	c.d.dc.DrawStringAnchored(text, x, y, 0, 1)
}

func (c canvas) DrawRect(x1, y1, x2, y2 float64, fill bool) {
	dc := c.d.dc
	if fill {
		dc.DrawRectangle(x1, y1, x2-x1, y2-y1)
		dc.Fill()
		return
	}
	// Half pixel offsets keep one pixel strokes crisp
	dc.DrawRectangle(x1+0.5, y1+0.5, x2-x1-1, y2-y1-1)
	dc.Stroke()
}

func (c canvas) DrawLine(x1, y1, x2, y2 float64) {
	c.d.dc.DrawLine(x1+0.5, y1+0.5, x2+0.5, y2+0.5)
	c.d.dc.Stroke()
}
