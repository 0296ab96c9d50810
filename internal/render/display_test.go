package render

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/genricoloni/spotled/internal/config"
	"github.com/genricoloni/spotled/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingSink keeps a copy of every flushed frame
type recordingSink struct {
	frames   []*image.NRGBA
	flushErr error
	closed   bool
}

func (s *recordingSink) Flush(frame image.Image) error {
	if s.flushErr != nil {
		return s.flushErr
	}
	s.frames = append(s.frames, imaging.Clone(frame))
	return nil
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}

func (s *recordingSink) last(t *testing.T) *image.NRGBA {
	t.Helper()
	require.NotEmpty(t, s.frames, "no frame flushed")
	return s.frames[len(s.frames)-1]
}

func newTestDisplay(t *testing.T, sink Sink) *Display {
	t.Helper()
	fonts, err := LoadFonts(config.FontConfig{})
	require.NoError(t, err)
	return NewDisplay(zap.NewNop(), 128, 64, fonts, sink)
}

func lit(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return r+g+b > 3*0x7fff
}

func countLit(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if lit(img, x, y) {
				n++
			}
		}
	}
	return n
}

func TestDisplay_SizeAndTextWidth(t *testing.T) {
	d := newTestDisplay(t, &recordingSink{})

	w, h := d.Size()
	assert.Equal(t, 128, w)
	assert.Equal(t, 64, h)

	// The bitmap face advances 7 pixels per glyph
	assert.Equal(t, 21.0, d.TextWidth("abc", domain.FontTitle))
	assert.Equal(t, 0.0, d.TextWidth("", domain.FontArtist))
}

func TestDisplay_FilledRect(t *testing.T) {
	sink := &recordingSink{}
	d := newTestDisplay(t, sink)

	d.BeginFrame().DrawRect(10, 10, 20, 20, true)
	require.NoError(t, d.EndFrame())

	frame := sink.last(t)
	assert.True(t, lit(frame, 15, 15))
	assert.True(t, lit(frame, 10, 10))
	assert.False(t, lit(frame, 25, 15))
	assert.False(t, lit(frame, 15, 5))
}

func TestDisplay_OutlineRect(t *testing.T) {
	sink := &recordingSink{}
	d := newTestDisplay(t, sink)

	d.BeginFrame().DrawRect(10, 10, 30, 20, false)
	require.NoError(t, d.EndFrame())

	frame := sink.last(t)
	assert.True(t, lit(frame, 10, 15), "left edge")
	assert.True(t, lit(frame, 20, 10), "top edge")
	assert.False(t, lit(frame, 20, 15), "interior")
}

func TestDisplay_TextIsTopAnchored(t *testing.T) {
	sink := &recordingSink{}
	d := newTestDisplay(t, sink)

	d.BeginFrame().DrawText(0, 20, "HHHH", domain.FontTitle)
	require.NoError(t, d.EndFrame())

	frame := sink.last(t)
	assert.Positive(t, countLit(frame))
	for y := 0; y < 20; y++ {
		for x := 0; x < 128; x++ {
			if lit(frame, x, y) {
				t.Fatalf("pixel (%d,%d) lit above the text origin", x, y)
			}
		}
	}
}

func TestDisplay_FramesStartBlank(t *testing.T) {
	sink := &recordingSink{}
	d := newTestDisplay(t, sink)

	d.BeginFrame().DrawLine(0, 32, 127, 32)
	require.NoError(t, d.EndFrame())
	assert.Positive(t, countLit(sink.last(t)))

	d.BeginFrame()
	require.NoError(t, d.EndFrame())
	assert.Zero(t, countLit(sink.last(t)))
}

func TestDisplay_FlushErrorIsDeviceFault(t *testing.T) {
	ioErr := errors.New("i2c: remote I/O error")
	d := newTestDisplay(t, &recordingSink{flushErr: ioErr})

	d.BeginFrame()
	err := d.EndFrame()
	assert.ErrorIs(t, err, domain.ErrDeviceFault)
	assert.ErrorIs(t, err, ioErr)
}

func TestDisplay_CloseBlanksAndReleases(t *testing.T) {
	sink := &recordingSink{}
	d := newTestDisplay(t, sink)

	d.BeginFrame().DrawRect(0, 0, 128, 64, true)
	require.NoError(t, d.EndFrame())

	require.NoError(t, d.Close())
	assert.True(t, sink.closed)
	assert.Zero(t, countLit(sink.last(t)))
}

func TestLoadFonts(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.FontConfig
		wantErr bool
	}{
		{"built-in face", config.FontConfig{}, false},
		{"missing file", config.FontConfig{Path: filepath.Join(os.TempDir(), "no-such-font.ttf"), TitleSize: 12}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fonts, err := LoadFonts(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadFonts() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && fonts.Face(domain.FontStatus) == nil {
				t.Error("Face() returned nil")
			}
		})
	}
}

func TestPreviewSink(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewPreviewSink(zap.NewNop(), config.DisplayConfig{
		PreviewDir:      dir,
		PreviewScale:    3,
		PreviewInterval: time.Second,
	})
	require.NoError(t, err)

	clock := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	sink.now = func() time.Time { return clock }

	frame := imaging.New(128, 64, color.Black)
	frame.Set(1, 1, color.White)
	require.NoError(t, sink.Flush(frame))

	saved, err := imaging.Open(sink.Path())
	require.NoError(t, err)
	assert.Equal(t, 384, saved.Bounds().Dx())
	assert.Equal(t, 192, saved.Bounds().Dy())
	assert.True(t, lit(saved, 4, 4), "scaled pixel")
	assert.False(t, lit(saved, 6, 4))

	// Throttled within the interval
	clock = clock.Add(500 * time.Millisecond)
	require.NoError(t, sink.Flush(imaging.New(128, 64, color.White)))
	saved, err = imaging.Open(sink.Path())
	require.NoError(t, err)
	assert.False(t, lit(saved, 100, 100))

	clock = clock.Add(time.Second)
	require.NoError(t, sink.Flush(imaging.New(128, 64, color.White)))
	saved, err = imaging.Open(sink.Path())
	require.NoError(t, err)
	assert.True(t, lit(saved, 100, 100))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files left behind")
	assert.NoError(t, sink.Close())
}
