// Package mpris provides a playback source reading a local media player over
// the MPRIS D-Bus interface.
package mpris

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/genricoloni/spotled/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	busPrefix   = "org.mpris.MediaPlayer2."
	objectPath  = "/org/mpris/MediaPlayer2"
	playerIface = "org.mpris.MediaPlayer2.Player"

	propMetadata = playerIface + ".Metadata"
	propStatus   = playerIface + ".PlaybackStatus"
	propPosition = playerIface + ".Position"
	propVolume   = playerIface + ".Volume"

	errNoReply = "org.freedesktop.DBus.Error.NoReply"
)

// Source polls the configured MPRIS player, or the first one on the bus
type Source struct {
	logger *zap.Logger
	conn   DBusClient
	player string
	now    func() time.Time

	// last player seen by FetchSnapshot, only used for change logging
	lastPlayer string
}

// New creates an MPRIS playback source.
// player is a bus name suffix such as "spotify" or "vlc", empty for any player.
func New(logger *zap.Logger, conn DBusClient, player string) *Source {
	return &Source{
		logger: logger,
		conn:   conn,
		player: strings.TrimPrefix(player, busPrefix),
		now:    time.Now,
	}
}

// FetchSnapshot implements domain.PlaybackSource
func (s *Source) FetchSnapshot(ctx context.Context) (domain.Snapshot, error) {
	player, err := s.findPlayer(ctx)
	if err != nil {
		return nil, classify(fmt.Errorf("listing players: %w", err))
	}
	at := s.now()
	if player == "" {
		return domain.NoPlayback{At: at}, nil
	}

	statusVar, err := s.conn.GetProperty(ctx, player, objectPath, propStatus)
	if err != nil {
		return nil, classify(fmt.Errorf("reading playback status of %s: %w", player, err))
	}
	status, _ := statusVar.Value().(string)
	if status != "Playing" && status != "Paused" {
		return domain.NoPlayback{At: at}, nil
	}

	metaVar, err := s.conn.GetProperty(ctx, player, objectPath, propMetadata)
	if err != nil {
		return nil, classify(fmt.Errorf("reading metadata of %s: %w", player, err))
	}
	metadata, ok := metaVar.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, domain.NewSourceError(domain.KindMalformedResponse,
			fmt.Errorf("metadata of %s has type %T", player, metaVar.Value()))
	}

	p, err := s.parseMetadata(metadata)
	if err != nil {
		return nil, domain.NewSourceError(domain.KindMalformedResponse, fmt.Errorf("%s: %w", player, err))
	}
	p.IsPlaying = status == "Playing"
	p.At = at

	// Players may omit Position and Volume
	if v, err := s.conn.GetProperty(ctx, player, objectPath, propPosition); err == nil {
		if us, ok := asInt64(v.Value()); ok {
			p.ProgressMs = clamp(int(us/1000), 0, p.DurationMs)
		}
	}
	p.VolumePercent = 100
	if v, err := s.conn.GetProperty(ctx, player, objectPath, propVolume); err == nil {
		if vol, ok := v.Value().(float64); ok {
			p.VolumePercent = clamp(int(math.Round(vol*100)), 0, 100)
		}
	}
	p.IsMuted = p.VolumePercent == 0

	return p, nil
}

// SetVolume implements domain.PlaybackSource
func (s *Source) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("volume %d out of range", percent)
	}
	player, err := s.lookupPlayer(ctx)
	if err != nil {
		return classify(fmt.Errorf("listing players: %w", err))
	}
	if player == "" {
		return domain.NewSourceError(domain.KindUnavailable, errors.New("no MPRIS player running"))
	}
	if err := s.conn.SetProperty(ctx, player, objectPath, propVolume, float64(percent)/100); err != nil {
		return classify(fmt.Errorf("setting volume of %s: %w", player, err))
	}
	return nil
}

// Close closes the D-Bus connection
func (s *Source) Close() error {
	return s.conn.Close()
}

// findPlayer looks up the player and logs when it changes.
// Only the poll goroutine calls it.
func (s *Source) findPlayer(ctx context.Context) (string, error) {
	found, err := s.lookupPlayer(ctx)
	if err != nil {
		return "", err
	}

	if found != s.lastPlayer {
		if found == "" {
			s.logger.Info("MPRIS player removed", zap.String("player", s.lastPlayer))
		} else {
			s.logger.Info("MPRIS player detected", zap.String("player", found))
		}
		s.lastPlayer = found
	}
	return found, nil
}

// lookupPlayer returns the bus name to read, or "" when no matching player runs
func (s *Source) lookupPlayer(ctx context.Context) (string, error) {
	names, err := s.conn.ListNames(ctx)
	if err != nil {
		return "", err
	}

	for _, name := range names {
		if !strings.HasPrefix(name, busPrefix) {
			continue
		}
		suffix := strings.TrimPrefix(name, busPrefix)
		// Instance suffixes like "vlc.instance1234" match "vlc"
		if s.player == "" || suffix == s.player || strings.HasPrefix(suffix, s.player+".") {
			return name, nil
		}
	}
	return "", nil
}

// parseMetadata converts MPRIS metadata to a playback snapshot
func (s *Source) parseMetadata(metadata map[string]dbus.Variant) (domain.Playback, error) {
	var p domain.Playback

	if titleVar, ok := metadata["xesam:title"]; ok {
		p.Title, _ = titleVar.Value().(string)
	}
	if p.Title == "" {
		return p, errors.New("track has no title")
	}

	// Extract artists (should be an array, some players send a string)
	if artistVar, ok := metadata["xesam:artist"]; ok {
		switch artists := artistVar.Value().(type) {
		case []string:
			for _, a := range artists {
				if a != "" {
					p.Artists = append(p.Artists, a)
				}
			}
		case string:
			if artists != "" {
				p.Artists = []string{artists}
			}
		default:
			s.logger.Debug("Unexpected artist type in metadata",
				zap.String("type", fmt.Sprintf("%T", artistVar.Value())))
		}
	}
	if len(p.Artists) == 0 {
		return p, fmt.Errorf("track %q has no artists", p.Title)
	}

	if lengthVar, ok := metadata["mpris:length"]; ok {
		if us, ok := asInt64(lengthVar.Value()); ok && us > 0 {
			p.DurationMs = int(us / 1000)
		}
	}
	return p, nil
}

// asInt64 accepts the integer types players use for microsecond values
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func classify(err error) error {
	var dbusErr dbus.Error
	var dbusErrPtr *dbus.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewSourceError(domain.KindNetworkTimeout, err)
	case errors.As(err, &dbusErr) && dbusErr.Name == errNoReply,
		errors.As(err, &dbusErrPtr) && dbusErrPtr.Name == errNoReply:
		return domain.NewSourceError(domain.KindNetworkTimeout, err)
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
