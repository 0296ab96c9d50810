package render

import (
	"fmt"

	"github.com/genricoloni/spotled/internal/config"
	"go.uber.org/zap"
)

// New builds the display for the configured driver
func New(logger *zap.Logger, cfg *config.AppConfig) (*Display, error) {
	fonts, err := LoadFonts(cfg.Fonts)
	if err != nil {
		return nil, err
	}

	var sink Sink
	switch cfg.Display.Driver {
	case config.DriverPreview:
		sink, err = NewPreviewSink(logger, cfg.Display)
	case config.DriverSSD1306:
		sink, err = NewOLEDSink(logger, cfg.Display)
	default:
		return nil, fmt.Errorf("unknown display driver %q", cfg.Display.Driver)
	}
	if err != nil {
		return nil, err
	}

	return NewDisplay(logger, cfg.Display.Width, cfg.Display.Height, fonts, sink), nil
}
