// Package input turns a rotary encoder into volume changes.
package input

import (
	"context"
	"fmt"
	"time"

	"github.com/genricoloni/spotled/internal/config"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Rotation directions
const (
	Clockwise        = 1
	CounterClockwise = -1
)

const edgeWait = 200 * time.Millisecond

// Decoder turns CLK edges into rotation steps
type Decoder struct {
	debounce time.Duration
	lastClk  gpio.Level
	lastAt   time.Time
}

// NewDecoder starts from the current CLK level
func NewDecoder(clk gpio.Level, debounce time.Duration) *Decoder {
	return &Decoder{debounce: debounce, lastClk: clk}
}

// Edge reports the step for an edge seen at the given time.
// Edges within the debounce window and edges that leave CLK unchanged are dropped.
func (d *Decoder) Edge(clk, dt gpio.Level, at time.Time) (int, bool) {
	if !d.lastAt.IsZero() && at.Sub(d.lastAt) < d.debounce {
		return 0, false
	}
	d.lastAt = at
	if clk == d.lastClk {
		return 0, false
	}
	d.lastClk = clk
	if dt != clk {
		return Clockwise, true
	}
	return CounterClockwise, true
}

// RotaryEncoder reads a two pin quadrature encoder through periph GPIO
type RotaryEncoder struct {
	logger  *zap.Logger
	clk     gpio.PinIO
	dt      gpio.PinIO
	decoder *Decoder
}

// NewRotaryEncoder configures CLK for edge detection and DT as a plain input
func NewRotaryEncoder(logger *zap.Logger, cfg config.InputConfig) (*RotaryEncoder, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initializing host drivers: %w", err)
	}

	clk := gpioreg.ByName(cfg.ClkPin)
	if clk == nil {
		return nil, fmt.Errorf("unknown GPIO pin %q", cfg.ClkPin)
	}
	dt := gpioreg.ByName(cfg.DtPin)
	if dt == nil {
		return nil, fmt.Errorf("unknown GPIO pin %q", cfg.DtPin)
	}

	if err := clk.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("configuring %s: %w", clk, err)
	}
	if err := dt.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configuring %s: %w", dt, err)
	}

	logger.Info("Rotary encoder ready",
		zap.String("clk", clk.Name()),
		zap.String("dt", dt.Name()),
		zap.Duration("debounce", cfg.Debounce))

	return &RotaryEncoder{
		logger:  logger,
		clk:     clk,
		dt:      dt,
		decoder: NewDecoder(clk.Read(), cfg.Debounce),
	}, nil
}

// Run sends a step to events for every detected rotation until ctx is done
func (e *RotaryEncoder) Run(ctx context.Context, events chan<- int) error {
	for ctx.Err() == nil {
		if !e.clk.WaitForEdge(edgeWait) {
			continue
		}
		step, ok := e.decoder.Edge(e.clk.Read(), e.dt.Read(), time.Now())
		if !ok {
			continue
		}
		select {
		case events <- step:
		case <-ctx.Done():
		}
	}
	return nil
}

// Close stops edge detection
func (e *RotaryEncoder) Close() error {
	return e.clk.In(gpio.PullUp, gpio.NoEdge)
}
