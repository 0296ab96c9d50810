package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestSourceError_Is(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		sentinel error
	}{
		{KindAuthExpired, ErrAuthExpired},
		{KindNetworkTimeout, ErrNetworkTimeout},
		{KindRateLimited, ErrRateLimited},
		{KindMalformedResponse, ErrMalformedResponse},
		{KindUnavailable, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := fmt.Errorf("fetching playback: %w", NewSourceError(tt.kind, context.DeadlineExceeded))

			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false, want true", err, tt.sentinel)
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Error("wrapped cause should stay reachable")
			}
			if got := KindOf(err); got != tt.kind {
				t.Errorf("KindOf() = %q, want %q", got, tt.kind)
			}
		})
	}
}

func TestKindOf_PlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindUnavailable {
		t.Errorf("KindOf() = %q, want %q", got, KindUnavailable)
	}
}

func TestPlayback_IdentityKey(t *testing.T) {
	a := Playback{Title: "A", Artists: []string{"X", "Y"}}
	b := Playback{Title: "A", Artists: []string{"X"}, ProgressMs: 1000}
	c := Playback{Title: "AX"}

	if a.IdentityKey() != b.IdentityKey() {
		t.Error("featured artists must not change the identity key")
	}
	if c.IdentityKey() == (Playback{Title: "A", Artists: []string{"X"}}).IdentityKey() {
		t.Error("separator must keep title and artist apart")
	}
	if c.IdentityKey() != "AX\x00" {
		t.Errorf("IdentityKey() without artists = %q", c.IdentityKey())
	}
}

func TestTransition_String(t *testing.T) {
	if got := TransitionMuteToggled.String(); got != "mute_toggled" {
		t.Errorf("String() = %q", got)
	}
	if got := Transition(42).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
}
