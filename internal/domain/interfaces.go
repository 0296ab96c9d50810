package domain

import "context"

// PlaybackSource defines the interface for the remote playback state provider
//
//go:generate mockgen -destination=mocks/playback_source_mock.go -package=mocks github.com/genricoloni/spotled/internal/domain PlaybackSource
type PlaybackSource interface {
	// FetchSnapshot observes the current playback state.
	// Errors are *SourceError values classified by kind.
	FetchSnapshot(ctx context.Context) (Snapshot, error)

	// SetVolume sets the output volume, percent must be within [0, 100]
	SetVolume(ctx context.Context, percent int) error
}

// Canvas is the drawing surface of a single frame.
// Coordinates are in pixels, text is anchored at its top-left corner.
type Canvas interface {
	// DrawText draws a string with the given font
	DrawText(x, y float64, text string, font FontRef)

	// DrawRect draws the rectangle spanning (x1,y1)-(x2,y2), outlined or filled
	DrawRect(x1, y1, x2, y2 float64, fill bool)

	// DrawLine draws a one pixel line
	DrawLine(x1, y1, x2, y2 float64)
}

// Renderer defines the interface for the pixel display.
// A frame is drawn between BeginFrame and EndFrame; EndFrame must be called
// for every BeginFrame, including on error paths.
//
//go:generate mockgen -destination=mocks/renderer_mock.go -package=mocks github.com/genricoloni/spotled/internal/domain Renderer
type Renderer interface {
	// BeginFrame clears the back buffer and returns a canvas for it
	BeginFrame() Canvas

	// EndFrame flushes the back buffer to the device.
	// Device failures are reported wrapping ErrDeviceFault.
	EndFrame() error

	// TextWidth returns the rendered width of text in pixels
	TextWidth(text string, font FontRef) float64

	// Size returns the display geometry in pixels
	Size() (width, height int)

	// Close blanks the display and releases the device handle
	Close() error
}

// VolumeSetter is the part of PlaybackSource used by volume control
type VolumeSetter interface {
	SetVolume(ctx context.Context, percent int) error
}
