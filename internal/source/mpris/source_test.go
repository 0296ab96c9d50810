package mpris

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/genricoloni/spotled/internal/domain"
	"github.com/genricoloni/spotled/internal/source/mpris/mocks"
	"github.com/godbus/dbus/v5"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const spotifyPlayer = "org.mpris.MediaPlayer2.spotify"

var captured = time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

func newTestSource(conn DBusClient, player string) *Source {
	s := New(zap.NewNop(), conn, player)
	s.now = func() time.Time { return captured }
	return s
}

func expectPlayer(m *mocks.MockDBusClient, status string, metadata map[string]dbus.Variant) {
	m.EXPECT().ListNames(gomock.Any()).
		Return([]string{"org.freedesktop.DBus", ":1.42", spotifyPlayer}, nil)
	m.EXPECT().GetProperty(gomock.Any(), spotifyPlayer, objectPath, propStatus).
		Return(dbus.MakeVariant(status), nil)
	if metadata != nil {
		m.EXPECT().GetProperty(gomock.Any(), spotifyPlayer, objectPath, propMetadata).
			Return(dbus.MakeVariant(metadata), nil)
	}
}

// TestFetchSnapshot covers the metadata scenarios:
// valid tracks, stopped players and invalid data.
func TestFetchSnapshot(t *testing.T) {
	validMeta := map[string]dbus.Variant{
		"xesam:title":  dbus.MakeVariant("Stairway to Heaven"),
		"xesam:artist": dbus.MakeVariant([]string{"Led Zeppelin"}),
		"mpris:length": dbus.MakeVariant(int64(482_000_000)),
	}

	tests := []struct {
		name      string
		setupMock func(*mocks.MockDBusClient)
		want      domain.Snapshot
		wantErr   error
	}{
		{
			name: "Success - Playing",
			setupMock: func(m *mocks.MockDBusClient) {
				expectPlayer(m, "Playing", validMeta)
				m.EXPECT().GetProperty(gomock.Any(), spotifyPlayer, objectPath, propPosition).
					Return(dbus.MakeVariant(int64(60_500_000)), nil)
				m.EXPECT().GetProperty(gomock.Any(), spotifyPlayer, objectPath, propVolume).
					Return(dbus.MakeVariant(0.8), nil)
			},
			want: domain.Playback{
				Title:         "Stairway to Heaven",
				Artists:       []string{"Led Zeppelin"},
				DurationMs:    482000,
				ProgressMs:    60500,
				IsPlaying:     true,
				VolumePercent: 80,
				At:            captured,
			},
		},
		{
			name: "Success - Paused and muted, optional properties missing",
			setupMock: func(m *mocks.MockDBusClient) {
				expectPlayer(m, "Paused", map[string]dbus.Variant{
					"xesam:title":  dbus.MakeVariant("Intro"),
					"xesam:artist": dbus.MakeVariant("Solo Artist"),
				})
				m.EXPECT().GetProperty(gomock.Any(), spotifyPlayer, objectPath, propPosition).
					Return(dbus.Variant{}, fmt.Errorf("property not supported"))
				m.EXPECT().GetProperty(gomock.Any(), spotifyPlayer, objectPath, propVolume).
					Return(dbus.MakeVariant(0.0), nil)
			},
			want: domain.Playback{
				Title:         "Intro",
				Artists:       []string{"Solo Artist"},
				IsMuted:       true,
				VolumePercent: 0,
				At:            captured,
			},
		},
		{
			name: "Stopped player",
			setupMock: func(m *mocks.MockDBusClient) {
				expectPlayer(m, "Stopped", nil)
			},
			want: domain.NoPlayback{At: captured},
		},
		{
			name: "No player on the bus",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().ListNames(gomock.Any()).Return([]string{"org.freedesktop.DBus"}, nil)
			},
			want: domain.NoPlayback{At: captured},
		},
		{
			name: "DBus Error - ListNames",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().ListNames(gomock.Any()).Return(nil, fmt.Errorf("connection closed"))
			},
			wantErr: domain.ErrUnavailable,
		},
		{
			name: "DBus Error - No reply",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().ListNames(gomock.Any()).Return([]string{spotifyPlayer}, nil)
				m.EXPECT().GetProperty(gomock.Any(), spotifyPlayer, objectPath, propStatus).
					Return(dbus.Variant{}, dbus.Error{Name: errNoReply})
			},
			wantErr: domain.ErrNetworkTimeout,
		},
		{
			name: "Invalid Data - Metadata is Int not Map",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().ListNames(gomock.Any()).Return([]string{spotifyPlayer}, nil)
				m.EXPECT().GetProperty(gomock.Any(), spotifyPlayer, objectPath, propStatus).
					Return(dbus.MakeVariant("Playing"), nil)
				m.EXPECT().GetProperty(gomock.Any(), spotifyPlayer, objectPath, propMetadata).
					Return(dbus.MakeVariant(12345), nil)
			},
			wantErr: domain.ErrMalformedResponse,
		},
		{
			name: "Invalid Data - No artists",
			setupMock: func(m *mocks.MockDBusClient) {
				expectPlayer(m, "Playing", map[string]dbus.Variant{
					"xesam:title":  dbus.MakeVariant("Untitled"),
					"xesam:artist": dbus.MakeVariant([]string{""}),
				})
			},
			wantErr: domain.ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockClient := mocks.NewMockDBusClient(ctrl)
			tt.setupMock(mockClient)

			got, err := newTestSource(mockClient, "").FetchSnapshot(context.Background())

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			gotP, gotIsPlayback := got.(domain.Playback)
			wantP, wantIsPlayback := tt.want.(domain.Playback)
			if gotIsPlayback != wantIsPlayback {
				t.Fatalf("got %T, want %T", got, tt.want)
			}
			if !gotIsPlayback {
				if got != tt.want {
					t.Errorf("got %+v, want %+v", got, tt.want)
				}
				return
			}
			if gotP.Title != wantP.Title || gotP.DurationMs != wantP.DurationMs ||
				gotP.ProgressMs != wantP.ProgressMs || gotP.IsPlaying != wantP.IsPlaying ||
				gotP.IsMuted != wantP.IsMuted || gotP.VolumePercent != wantP.VolumePercent ||
				!gotP.At.Equal(wantP.At) || fmt.Sprint(gotP.Artists) != fmt.Sprint(wantP.Artists) {
				t.Errorf("got %+v, want %+v", gotP, wantP)
			}
		})
	}
}

// TestFindPlayer verifies player selection from the bus names.
func TestFindPlayer(t *testing.T) {
	names := []string{
		"org.freedesktop.DBus",
		"org.mpris.MediaPlayer2.firefox.instance_1_42",
		"org.mpris.MediaPlayer2.vlc.instance1234",
		"org.mpris.MediaPlayer2.spotify",
	}

	tests := []struct {
		name       string
		configured string
		want       string
	}{
		{"First player", "", "org.mpris.MediaPlayer2.firefox.instance_1_42"},
		{"Exact name", "spotify", "org.mpris.MediaPlayer2.spotify"},
		{"Full bus name", "org.mpris.MediaPlayer2.spotify", "org.mpris.MediaPlayer2.spotify"},
		{"Instance suffix", "vlc", "org.mpris.MediaPlayer2.vlc.instance1234"},
		{"Not running", "rhythmbox", ""},
		{"No partial match", "spot", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockClient := mocks.NewMockDBusClient(ctrl)
			mockClient.EXPECT().ListNames(gomock.Any()).Return(names, nil)

			got, err := newTestSource(mockClient, tt.configured).findPlayer(context.Background())
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("findPlayer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetVolume(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockDBusClient(ctrl)
	mockClient.EXPECT().ListNames(gomock.Any()).Return([]string{spotifyPlayer}, nil)
	mockClient.EXPECT().SetProperty(gomock.Any(), spotifyPlayer, objectPath, propVolume, 0.3).Return(nil)

	s := newTestSource(mockClient, "")
	if err := s.SetVolume(context.Background(), 30); err != nil {
		t.Fatalf("SetVolume() error = %v", err)
	}
	if err := s.SetVolume(context.Background(), 130); err == nil {
		t.Error("SetVolume(130) should fail")
	}
}

func TestSetVolume_NoPlayer(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockDBusClient(ctrl)
	mockClient.EXPECT().ListNames(gomock.Any()).Return(nil, nil)

	err := newTestSource(mockClient, "").SetVolume(context.Background(), 50)
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("error = %v, want %v", err, domain.ErrUnavailable)
	}
}

func TestSplitProperty(t *testing.T) {
	iface, name := splitProperty(propMetadata)
	if iface != playerIface || name != "Metadata" {
		t.Errorf("splitProperty() = %q, %q", iface, name)
	}
}

// TestConcurrentPollAndVolume runs the poll and volume paths together, as the
// daemon does with the encoder enabled. Run with -race.
func TestConcurrentPollAndVolume(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockDBusClient(ctrl)

	var calls atomic.Int64
	mockClient.EXPECT().ListNames(gomock.Any()).DoAndReturn(func(context.Context) ([]string, error) {
		// Player appears and disappears between calls
		if calls.Add(1)%2 == 0 {
			return []string{"org.freedesktop.DBus"}, nil
		}
		return []string{spotifyPlayer}, nil
	}).AnyTimes()
	mockClient.EXPECT().GetProperty(gomock.Any(), spotifyPlayer, objectPath, propStatus).
		Return(dbus.MakeVariant("Stopped"), nil).AnyTimes()
	mockClient.EXPECT().SetProperty(gomock.Any(), spotifyPlayer, objectPath, propVolume, 0.5).
		Return(nil).AnyTimes()

	s := newTestSource(mockClient, "")
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := s.FetchSnapshot(ctx); err != nil {
				t.Errorf("FetchSnapshot() error = %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			err := s.SetVolume(ctx, 50)
			if err != nil && !errors.Is(err, domain.ErrUnavailable) {
				t.Errorf("SetVolume() error = %v", err)
				return
			}
		}
	}()
	wg.Wait()
}
