package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/genricoloni/spotled/internal/animation"
	"github.com/genricoloni/spotled/internal/change"
	"github.com/genricoloni/spotled/internal/config"
	"github.com/genricoloni/spotled/internal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// State is what the engine currently shows
type State int

const (
	// StateLoading is shown until the first snapshot arrives
	StateLoading State = iota
	// StateIdle is shown while nothing is playing
	StateIdle
	// StateActive animates the current track
	StateActive
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// Engine owns the snapshot and animator state and renders one frame per tick.
// All of its state is confined to the tick goroutine; the poller is reached
// only through its channels.
type Engine struct {
	logger     *zap.Logger
	cfg        *config.AppConfig
	renderer   domain.Renderer
	poller     *Poller
	detector   *change.Detector
	shutdowner fx.Shutdowner

	current domain.Snapshot
	title   *animation.Scroll
	artist  *animation.Scroll
	scrolls animation.Group
	seek    *animation.Seek

	pollPending     bool
	lastPollRequest time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEngine creates the display engine.
// shutdowner may be nil, fatal errors are then only logged.
func NewEngine(
	logger *zap.Logger,
	cfg *config.AppConfig,
	renderer domain.Renderer,
	poller *Poller,
	detector *change.Detector,
	shutdowner fx.Shutdowner,
) *Engine {
	return &Engine{
		logger:     logger,
		cfg:        cfg,
		renderer:   renderer,
		poller:     poller,
		detector:   detector,
		shutdowner: shutdowner,
	}
}

// Start launches the poll task and the tick loop.
// It returns immediately (non-blocking).
func (e *Engine) Start(_ context.Context) error {
	e.logger.Info("Engine starting...",
		zap.Duration("tick", e.cfg.Animation.TickInterval()))

	// The start context expires once fx is done starting, the loops outlive it
	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	e.wg.Add(2)
	go func() {
		defer e.wg.Done()
		e.poller.Run(runCtx)
	}()
	go func() {
		defer e.wg.Done()
		err := e.Run(runCtx)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		e.logger.Error("Render loop failed, shutting down", zap.Error(err))
		if e.shutdowner != nil {
			if serr := e.shutdowner.Shutdown(fx.ExitCode(1)); serr != nil {
				e.logger.Error("Failed to request shutdown", zap.Error(serr))
			}
		}
	}()
	return nil
}

// Stop cancels both tasks, waits for them and releases the display
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping...")
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// The render loop may still be drawing, the display stays open
		return fmt.Errorf("waiting for engine tasks: %w", ctx.Err())
	}

	if err := e.renderer.Close(); err != nil {
		return fmt.Errorf("closing renderer: %w", err)
	}
	return nil
}

// Run renders at the configured tick rate until ctx is cancelled or the
// renderer fails
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.Animation.TickInterval())
	defer ticker.Stop()

	if err := e.Step(time.Now()); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return ctx.Err()
		case <-ticker.C:
			// Wall time, a snapshot drained this tick may be newer than the tick itself
			if err := e.Step(time.Now()); err != nil {
				return err
			}
		}
	}
}

// Step runs one tick: pick up at most one snapshot, advance the animators,
// draw, then decide whether a poll is due.
func (e *Engine) Step(now time.Time) error {
	select {
	case snap := <-e.poller.Snapshots():
		e.pollPending = false
		e.Apply(snap)
	default:
	}

	if p, ok := e.current.(domain.Playback); ok {
		e.seek.Tick(now, p.IsPlaying)
		e.scrolls.Tick()
	}

	if err := e.drawFrame(); err != nil {
		return fmt.Errorf("rendering frame: %w", err)
	}

	e.schedulePoll(now)
	return nil
}

// Apply reconciles the animators with a new snapshot and returns how it was classified
func (e *Engine) Apply(snap domain.Snapshot) domain.Transition {
	kind := e.detector.Classify(e.current, snap)
	prevState := e.State()
	e.current = snap

	switch kind {
	case domain.TransitionNone:
		if p, ok := snap.(domain.Playback); ok && e.seek != nil {
			e.seek.Sync(p.ProgressMs, p.At)
		}
	case domain.TransitionBecameNothingPlaying:
		e.release()
	default:
		e.rebuild(snap.(domain.Playback))
	}

	if kind != domain.TransitionNone || prevState != e.State() {
		e.logger.Debug("Snapshot applied",
			zap.Stringer("transition", kind),
			zap.Stringer("state", e.State()))
	}
	return kind
}

// State reports which kind of frame is being drawn
func (e *Engine) State() State {
	switch e.current.(type) {
	case domain.Playback:
		return StateActive
	case domain.NoPlayback:
		return StateIdle
	default:
		return StateLoading
	}
}

func (e *Engine) rebuild(p domain.Playback) {
	width, _ := e.renderer.Size()
	viewport := float64(width)
	speeds := animation.ScrollSpeeds{
		Left:      e.cfg.Animation.ScrollLeftSpeed,
		Right:     e.cfg.Animation.ScrollRightSpeed,
		RestTicks: e.cfg.Animation.RestTicks,
	}

	title := DisplayTitle(p.Title)
	artists := ArtistLine(p.Artists)
	e.title = animation.NewScroll(title, e.renderer.TextWidth(title, domain.FontTitle), viewport, speeds)
	e.artist = animation.NewScroll(artists, e.renderer.TextWidth(artists, domain.FontArtist), viewport, speeds)
	e.scrolls = animation.Group{e.title, e.artist}
	e.seek = animation.NewSeek(p.ProgressMs, p.DurationMs, p.At, width, e.cfg.Animation.SeekPadding)

	e.logger.Info("Now playing",
		zap.String("title", p.Title),
		zap.Strings("artists", p.Artists),
		zap.Bool("playing", p.IsPlaying),
		zap.Bool("muted", p.IsMuted),
		zap.Stringer("titleScroll", e.title.Phase()),
		zap.Stringer("artistScroll", e.artist.Phase()))
}

func (e *Engine) release() {
	e.title, e.artist, e.scrolls, e.seek = nil, nil, nil, nil
	e.logger.Info("Nothing playing")
}

// schedulePoll requests a poll when none is in flight, the minimum interval
// has passed and no text is mid-sweep. A finished track lifts the sweep
// deferral but not the interval.
func (e *Engine) schedulePoll(now time.Time) {
	if e.pollPending {
		return
	}
	if !e.lastPollRequest.IsZero() && now.Sub(e.lastPollRequest) < e.cfg.Polling.MinInterval {
		return
	}
	trackOver := e.seek != nil && e.seek.ReachedEnd()
	if e.scrolls.Moving() && !trackOver {
		return
	}
	if e.poller.Request() {
		e.pollPending = true
		e.lastPollRequest = now
	}
}

// DisplayTitle strips a "(feat. ...)" credit from a track title
func DisplayTitle(title string) string {
	start := strings.Index(title, "(feat")
	if start < 0 {
		start = strings.Index(title, "(Feat")
	}
	if start < 0 {
		return title
	}
	end := strings.Index(title[start:], ")")
	if end < 0 {
		return strings.TrimSpace(title[:start])
	}
	rest := strings.TrimSpace(title[start+end+1:])
	head := strings.TrimSpace(title[:start])
	if rest == "" {
		return head
	}
	return head + " " + rest
}

// ArtistLine joins the credited artists for the second text line
func ArtistLine(artists []string) string {
	return strings.Join(artists, ",")
}
