package input

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/genricoloni/spotled/internal/config"
	"github.com/genricoloni/spotled/internal/domain"
	"go.uber.org/zap"
)

// unknownLevel marks that no playback has been observed yet
const unknownLevel = -1

// VolumeControl applies rotation steps to the playback volume
type VolumeControl struct {
	logger  *zap.Logger
	setter  domain.VolumeSetter
	step    int
	timeout time.Duration

	level atomic.Int32
}

// NewVolumeControl creates a volume control stepping by cfg.VolumeStep percent
func NewVolumeControl(logger *zap.Logger, cfg config.InputConfig, timeout time.Duration, setter domain.VolumeSetter) *VolumeControl {
	v := &VolumeControl{
		logger:  logger,
		setter:  setter,
		step:    cfg.VolumeStep,
		timeout: timeout,
	}
	v.level.Store(unknownLevel)
	return v
}

// Observe records the volume of the latest snapshot.
// It is safe to call from the poller goroutine.
func (v *VolumeControl) Observe(snap domain.Snapshot) {
	if p, ok := snap.(domain.Playback); ok {
		v.level.Store(int32(p.VolumePercent))
	}
}

// Level returns the last known volume
func (v *VolumeControl) Level() (int, bool) {
	l := v.level.Load()
	return int(l), l != unknownLevel
}

// Step moves the volume one step in dir and returns the level requested.
// Nothing is sent while the level is unknown or already at the limit.
func (v *VolumeControl) Step(ctx context.Context, dir int) (int, error) {
	cur, ok := v.Level()
	if !ok {
		v.logger.Debug("Volume unknown, ignoring rotation", zap.Int("dir", dir))
		return 0, nil
	}

	target := min(max(cur+dir*v.step, 0), 100)
	if target == cur {
		return cur, nil
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	if err := v.setter.SetVolume(ctx, target); err != nil {
		return cur, err
	}

	// Optimistic until the next poll confirms it
	v.level.Store(int32(target))
	v.logger.Debug("Volume set", zap.Int("from", cur), zap.Int("to", target))
	return target, nil
}

// Run applies rotation events until ctx is done
func (v *VolumeControl) Run(ctx context.Context, events <-chan int) {
	for {
		select {
		case <-ctx.Done():
			return
		case dir := <-events:
			if _, err := v.Step(ctx, dir); err != nil {
				v.logger.Warn("Failed to set volume", zap.Int("dir", dir), zap.Error(err))
			}
		}
	}
}
