package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/genricoloni/spotled/internal/auth"
	"github.com/genricoloni/spotled/internal/change"
	"github.com/genricoloni/spotled/internal/config"
	"github.com/genricoloni/spotled/internal/domain"
	"github.com/genricoloni/spotled/internal/engine"
	"github.com/genricoloni/spotled/internal/input"
	"github.com/genricoloni/spotled/internal/render"
	"github.com/genricoloni/spotled/internal/source/mpris"
	"github.com/genricoloni/spotled/internal/source/spotify"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// appOptions builds the daemon's dependency graph
func appOptions(path config.Path) fx.Option {
	return fx.Options(
		fx.Supply(path),

		// Logger configuration
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),

		// Provide dependencies
		fx.Provide(
			config.NewAppConfig,
			newLogger,
			newPlaybackSource,
			newRenderer,
			newDetector,
			engine.NewPoller,
			engine.NewEngine,
		),

		// Lifecycle hooks, input first so it observes the first poll
		fx.Invoke(registerInput, registerHooks),
	)
}

// newLogger creates the zap logger from the log section of the configuration.
// Every entry carries a per-run session id.
func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Log.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log.level: %w", err)
	}
	zcfg.Level = level

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("session", uuid.NewString())), nil
}

// newPlaybackSource selects the configured source
func newPlaybackSource(lc fx.Lifecycle, logger *zap.Logger, cfg *config.AppConfig) (domain.PlaybackSource, error) {
	switch cfg.Source.Kind {
	case config.SourceSpotify:
		a, err := auth.New(logger.Named("auth"), cfg)
		if err != nil {
			return nil, err
		}
		client, err := a.Client()
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return a.Persist()
			},
		})
		return spotify.New(logger.Named("spotify"), client), nil

	case config.SourceMPRIS:
		conn, err := mpris.NewStdDBusClient()
		if err != nil {
			return nil, fmt.Errorf("connecting to session bus: %w", err)
		}
		src := mpris.New(logger.Named("mpris"), conn, cfg.MPRIS.Player)
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return src.Close()
			},
		})
		return src, nil

	default:
		return nil, fmt.Errorf("unknown source.kind %q", cfg.Source.Kind)
	}
}

func newRenderer(logger *zap.Logger, cfg *config.AppConfig) (domain.Renderer, error) {
	return render.New(logger.Named("render"), cfg)
}

func newDetector(cfg *config.AppConfig) *change.Detector {
	return change.NewDetector(cfg.Polling.JumpThreshold)
}

// registerHooks sets up application lifecycle hooks
func registerHooks(lc fx.Lifecycle, logger *zap.Logger, cfg *config.AppConfig, e *engine.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("spotled daemon started")
			cfg.LogSummary(logger)
			return e.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			err := e.Stop(ctx)
			_ = logger.Sync()
			return err
		},
	})
}

// registerInput wires the rotary encoder to volume control when enabled
func registerInput(
	lc fx.Lifecycle,
	logger *zap.Logger,
	cfg *config.AppConfig,
	poller *engine.Poller,
	source domain.PlaybackSource,
) {
	if !cfg.Input.Enabled {
		return
	}

	volume := input.NewVolumeControl(logger.Named("volume"), cfg.Input, cfg.Polling.Timeout, source)
	poller.Observe(volume.Observe)

	var (
		encoder *input.RotaryEncoder
		cancel  context.CancelFunc
		wg      sync.WaitGroup
	)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var err error
			encoder, err = input.NewRotaryEncoder(logger.Named("encoder"), cfg.Input)
			if err != nil {
				return err
			}

			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			events := make(chan int, 8)

			wg.Add(2)
			go func() {
				defer wg.Done()
				_ = encoder.Run(runCtx, events)
			}()
			go func() {
				defer wg.Done()
				volume.Run(runCtx, events)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			if cancel == nil {
				return nil
			}
			cancel()
			wg.Wait()
			return encoder.Close()
		},
	})
}
