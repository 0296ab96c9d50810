// Package spotify provides a playback source backed by the Spotify Web API.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/genricoloni/spotled/internal/domain"
	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Source reads the player state of the current user.
// The underlying client should already be authenticated.
type Source struct {
	logger *zap.Logger
	api    *spotify.Client
	now    func() time.Time
}

// New creates a Spotify playback source
func New(logger *zap.Logger, api *spotify.Client) *Source {
	return &Source{
		logger: logger,
		api:    api,
		now:    time.Now,
	}
}

// FetchSnapshot implements domain.PlaybackSource
func (s *Source) FetchSnapshot(ctx context.Context) (domain.Snapshot, error) {
	state, err := s.api.PlayerState(ctx)
	at := s.now()
	if err != nil {
		return nil, classify(fmt.Errorf("fetching player state: %w", err))
	}
	return toSnapshot(state, at)
}

// SetVolume implements domain.PlaybackSource
func (s *Source) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("volume %d out of range", percent)
	}
	if err := s.api.Volume(ctx, percent); err != nil {
		return classify(fmt.Errorf("setting volume to %d: %w", percent, err))
	}
	s.logger.Debug("Volume set", zap.Int("percent", percent))
	return nil
}

// toSnapshot converts the player state, a missing item means nothing is loaded
func toSnapshot(state *spotify.PlayerState, at time.Time) (domain.Snapshot, error) {
	if state == nil || state.Item == nil {
		return domain.NoPlayback{At: at}, nil
	}

	item := state.Item
	if item.Name == "" {
		return nil, domain.NewSourceError(domain.KindMalformedResponse, errors.New("track has no name"))
	}
	if len(item.Artists) == 0 {
		return nil, domain.NewSourceError(domain.KindMalformedResponse,
			fmt.Errorf("track %q has no artists", item.Name))
	}

	artists := make([]string, len(item.Artists))
	for i, a := range item.Artists {
		artists[i] = a.Name
	}

	duration := int(item.Duration)
	progress := clamp(int(state.Progress), 0, duration)
	volume := clamp(int(state.Device.Volume), 0, 100)

	return domain.Playback{
		Title:         item.Name,
		Artists:       artists,
		DurationMs:    duration,
		ProgressMs:    progress,
		IsPlaying:     state.Playing,
		IsMuted:       volume == 0,
		VolumePercent: volume,
		At:            at,
	}, nil
}

// classify maps client failures onto the source error kinds
func classify(err error) error {
	status := 0
	var apiErr spotify.Error
	var apiErrPtr *spotify.Error
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Status
	case errors.As(err, &apiErrPtr):
		status = apiErrPtr.Status
	}

	var retrieveErr *oauth2.RetrieveError
	var netErr net.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case status == http.StatusUnauthorized || errors.As(err, &retrieveErr):
		return domain.NewSourceError(domain.KindAuthExpired, err)
	case status == http.StatusTooManyRequests:
		return domain.NewSourceError(domain.KindRateLimited, err)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return domain.NewSourceError(domain.KindNetworkTimeout, err)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.ErrUnexpectedEOF):
		return domain.NewSourceError(domain.KindMalformedResponse, err)
	default:
		return domain.NewSourceError(domain.KindUnavailable, err)
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
