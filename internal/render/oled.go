package render

import (
	"fmt"
	"image"

	"github.com/genricoloni/spotled/internal/config"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

const defaultOLEDAddress = 0x3C

// OLEDSink drives an SSD1306 panel over I2C
type OLEDSink struct {
	logger *zap.Logger
	bus    i2c.BusCloser
	dev    *ssd1306.Dev
}

// addrBus redirects every transaction to a fixed device address
type addrBus struct {
	i2c.Bus
	addr uint16
}

func (b addrBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

// NewOLEDSink opens the I2C bus and initializes the panel
func NewOLEDSink(logger *zap.Logger, cfg config.DisplayConfig) (*OLEDSink, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initializing host drivers: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("opening I2C bus %q: %w", cfg.I2CBus, err)
	}

	var target i2c.Bus = bus
	if cfg.I2CAddress != 0 && cfg.I2CAddress != defaultOLEDAddress {
		target = addrBus{Bus: bus, addr: cfg.I2CAddress}
	}

	opts := ssd1306.DefaultOpts
	opts.W = cfg.Width
	opts.H = cfg.Height
	dev, err := ssd1306.NewI2C(target, &opts)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("initializing ssd1306: %w", err)
	}

	logger.Info("OLED initialized",
		zap.String("bus", bus.String()),
		zap.Uint16("address", cfg.I2CAddress),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height))

	return &OLEDSink{logger: logger, bus: bus, dev: dev}, nil
}

// Flush draws the frame on the panel
func (s *OLEDSink) Flush(frame image.Image) error {
	return s.dev.Draw(s.dev.Bounds(), frame, image.Point{})
}

// Close turns the panel off and releases the bus
func (s *OLEDSink) Close() error {
	err := s.dev.Halt()
	if cerr := s.bus.Close(); err == nil {
		err = cerr
	}
	return err
}
