package render

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/genricoloni/spotled/internal/config"
	"go.uber.org/zap"
)

const previewFilename = "frame.png"

// PreviewSink writes frames as an upscaled PNG for development without a panel
type PreviewSink struct {
	logger   *zap.Logger
	path     string
	scale    int
	interval time.Duration
	now      func() time.Time

	lastWrite time.Time
	written   int
}

// NewPreviewSink ensures the output directory exists
func NewPreviewSink(logger *zap.Logger, cfg config.DisplayConfig) (*PreviewSink, error) {
	if err := os.MkdirAll(cfg.PreviewDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create preview directory: %w", err)
	}

	path := filepath.Join(cfg.PreviewDir, previewFilename)
	logger.Info("Preview output enabled",
		zap.String("path", path),
		zap.Int("scale", cfg.PreviewScale),
		zap.Duration("interval", cfg.PreviewInterval))

	return &PreviewSink{
		logger:   logger,
		path:     path,
		scale:    cfg.PreviewScale,
		interval: cfg.PreviewInterval,
		now:      time.Now,
	}, nil
}

// Flush saves the frame unless one was written less than interval ago
func (s *PreviewSink) Flush(frame image.Image) error {
	now := s.now()
	if s.written > 0 && now.Sub(s.lastWrite) < s.interval {
		return nil
	}

	b := frame.Bounds()
	// Nearest neighbour keeps pixel edges sharp
	scaled := imaging.Resize(frame, b.Dx()*s.scale, b.Dy()*s.scale, imaging.NearestNeighbor)

	// Write then rename so viewers never read a partial file
	tmp := s.path + ".tmp.png"
	if err := imaging.Save(scaled, tmp); err != nil {
		return fmt.Errorf("failed to write preview frame: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace preview frame: %w", err)
	}

	s.lastWrite = now
	s.written++
	return nil
}

// Path returns the preview file location
func (s *PreviewSink) Path() string {
	return s.path
}

// Close logs how many frames were written
func (s *PreviewSink) Close() error {
	s.logger.Debug("Preview closed", zap.Int("frames", s.written))
	return nil
}
