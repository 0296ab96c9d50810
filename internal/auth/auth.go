package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/genricoloni/spotled/internal/config"
	"github.com/google/uuid"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const callbackTimeout = 2 * time.Minute

var (
	// ErrNotLoggedIn is returned when no cached token exists yet.
	ErrNotLoggedIn = errors.New("no cached Spotify token, run `spotled login` first")

	// ErrAuthTimeout is returned when the OAuth callback is not received in time.
	ErrAuthTimeout = errors.New("authentication timed out waiting for callback")

	// ErrStateMismatch is returned when the OAuth state parameter doesn't match.
	ErrStateMismatch = errors.New("OAuth state mismatch")
)

// Authenticator handles Spotify OAuth2 authentication.
type Authenticator struct {
	logger      *zap.Logger
	auth        *spotifyauth.Authenticator
	cache       *TokenCache
	redirectURL *url.URL

	// issued is the token handed to the running client
	issued *oauth2.Token
	client *spotify.Client
}

// New creates an Authenticator from the spotify section of the configuration
func New(logger *zap.Logger, cfg *config.AppConfig) (*Authenticator, error) {
	if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" {
		return nil, errors.New("spotify.client_id and spotify.client_secret are required")
	}

	redirect, err := url.Parse(cfg.Spotify.RedirectURI)
	if err != nil || redirect.Host == "" {
		return nil, fmt.Errorf("invalid spotify.redirect_uri %q", cfg.Spotify.RedirectURI)
	}

	cache := NewTokenCache(cfg.Spotify.TokenPath)
	if cfg.Spotify.TokenPath == "" {
		cache, err = DefaultTokenCache()
		if err != nil {
			return nil, fmt.Errorf("creating token cache: %w", err)
		}
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.Spotify.ClientID),
		spotifyauth.WithClientSecret(cfg.Spotify.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.Spotify.RedirectURI),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadPlaybackState,
			spotifyauth.ScopeUserModifyPlaybackState,
		),
	)

	return &Authenticator{
		logger:      logger,
		auth:        auth,
		cache:       cache,
		redirectURL: redirect,
	}, nil
}

// Client returns a Spotify client built from the cached token.
// The oauth2 transport refreshes the token as needed; Persist writes the
// refreshed token back.
func (a *Authenticator) Client() (*spotify.Client, error) {
	token, err := a.cache.Load()
	if err != nil {
		return nil, fmt.Errorf("loading cached token: %w", err)
	}
	if token == nil {
		return nil, ErrNotLoggedIn
	}

	// Refreshes outlive any single request
	a.issued = token
	a.client = spotify.New(a.auth.Client(context.Background(), token))
	a.logger.Info("Using cached Spotify token",
		zap.String("path", a.cache.Path()),
		zap.Time("expiry", token.Expiry))
	return a.client, nil
}

// Persist saves the client's current token if it was refreshed since Client
func (a *Authenticator) Persist() error {
	if a.client == nil {
		return nil
	}
	token, err := a.client.Token()
	if err != nil {
		return fmt.Errorf("reading current token: %w", err)
	}
	if token.AccessToken == a.issued.AccessToken {
		return nil
	}
	if err := a.cache.Save(token); err != nil {
		return err
	}
	a.issued = token
	a.logger.Info("Refreshed Spotify token saved", zap.Time("expiry", token.Expiry))
	return nil
}

// Login performs the OAuth authorization code flow and caches the token.
// The authorization URL is written to out.
func (a *Authenticator) Login(ctx context.Context, out io.Writer) error {
	state := uuid.NewString()

	// Channel to receive the token from callback
	tokenCh := make(chan *oauth2.Token, 1)
	errCh := make(chan error, 1)

	path := a.redirectURL.Path
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		a.handleCallback(w, r, state, tokenCh, errCh)
	})

	listener, err := net.Listen("tcp", a.redirectURL.Host)
	if err != nil {
		return fmt.Errorf("listening for callback on %s: %w", a.redirectURL.Host, err)
	}
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- fmt.Errorf("callback server error: %w", err):
			default:
			}
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	fmt.Fprintln(out, "To authenticate, open this URL in your browser:")
	fmt.Fprintln(out, a.auth.AuthURL(state))
	fmt.Fprintln(out, "Waiting for authentication...")

	var token *oauth2.Token
	select {
	case token = <-tokenCh:
	case err := <-errCh:
		return err
	case <-time.After(callbackTimeout):
		return ErrAuthTimeout
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := a.cache.Save(token); err != nil {
		return fmt.Errorf("caching token: %w", err)
	}
	a.logger.Info("Spotify login complete", zap.String("path", a.cache.Path()))
	fmt.Fprintln(out, "Authentication successful, token saved to", a.cache.Path())
	return nil
}

// handleCallback processes the OAuth callback from Spotify.
func (a *Authenticator) handleCallback(w http.ResponseWriter, r *http.Request, expectedState string, tokenCh chan<- *oauth2.Token, errCh chan<- error) {
	if r.URL.Query().Get("state") != expectedState {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		sendErr(errCh, ErrStateMismatch)
		return
	}

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		http.Error(w, "Authentication failed: "+errMsg, http.StatusBadRequest)
		sendErr(errCh, fmt.Errorf("spotify auth error: %s", errMsg))
		return
	}

	token, err := a.auth.Token(r.Context(), expectedState, r)
	if err != nil {
		http.Error(w, "Failed to get token", http.StatusInternalServerError)
		sendErr(errCh, fmt.Errorf("exchanging code for token: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>spotled</title></head>
<body>
<h1>Authentication Successful!</h1>
<p>You can close this window and return to the terminal.</p>
</body>
</html>`)

	select {
	case tokenCh <- token:
	default:
	}
}

// sendErr never blocks, only the first failure is reported
func sendErr(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
}

// Logout removes the cached token.
func (a *Authenticator) Logout() error {
	return a.cache.Delete()
}

// TokenPath returns where the token is cached
func (a *Authenticator) TokenPath() string {
	return a.cache.Path()
}
