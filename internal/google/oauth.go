package google

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/browser"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/dzdrive/internal/instrumentation"
	"github.com/teemow/dzdrive/internal/logging"
)

var (
	// ErrMissingClientCredentials is returned when the OAuth client id or secret is empty.
	ErrMissingClientCredentials = errors.New("OAuth client id and secret are required")

	// ErrAuthorizationDenied is returned when the user refuses the consent screen.
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrStateMismatch is returned when the OAuth callback carries an unexpected state.
	ErrStateMismatch = errors.New("invalid state parameter received")
)

// Config configures a CredentialStore.
type Config struct {
	// ClientID and ClientSecret identify the installed application.
	ClientID     string
	ClientSecret string

	// TokenFile is where the OAuth token is persisted (default: DefaultTokenFile()).
	TokenFile string

	// Scopes requested by the installed-app flow (default: DefaultOAuthScopes).
	Scopes []string

	// Endpoint overrides the Google OAuth endpoint, for tests.
	Endpoint *oauth2.Endpoint

	// OpenURL opens the consent screen (default: browser.OpenURL).
	OpenURL func(url string) error

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// CredentialStore hands out authorized HTTP clients. It reuses the token
// persisted in the token file and falls back to the interactive
// installed-application flow when no token has been stored yet.
type CredentialStore struct {
	config  *oauth2.Config
	store   *FileTokenStore
	openURL func(string) error
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// DefaultTokenFile returns the token path derived from the invoking executable,
// "<argv0>-oauth2.json".
func DefaultTokenFile() string {
	return os.Args[0] + "-oauth2.json"
}

// NewCredentialStore validates cfg and returns a CredentialStore.
func NewCredentialStore(cfg Config) (*CredentialStore, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingClientCredentials
	}

	tokenFile := cfg.TokenFile
	if tokenFile == "" {
		tokenFile = DefaultTokenFile()
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultOAuthScopes
	}
	endpoint := google.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	openURL := cfg.OpenURL
	if openURL == nil {
		openURL = browser.OpenURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &CredentialStore{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       scopes,
		},
		store:   NewFileTokenStore(tokenFile),
		openURL: openURL,
		logger:  logging.WithOperation(logger, "google.oauth"),
		metrics: cfg.Metrics,
	}, nil
}

// TokenFile returns the path of the persisted token.
func (s *CredentialStore) TokenFile() string {
	return s.store.Path()
}

// HTTPClient returns an HTTP client authorized for the configured scopes.
// A persisted token is reused without an auth round trip; otherwise the
// installed-app flow runs and its token is persisted. Refreshed tokens are
// written back to the token file.
func (s *CredentialStore) HTTPClient(ctx context.Context) (*http.Client, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}

	ts := &persistingTokenSource{
		base:   s.config.TokenSource(ctx, tok),
		store:  s.store,
		last:   tok.AccessToken,
		logger: s.logger,
	}
	return oauth2.NewClient(ctx, ts), nil
}

// Token loads the persisted token, running the installed-app flow when none exists.
func (s *CredentialStore) Token(ctx context.Context) (*oauth2.Token, error) {
	tok, err := s.store.Load()
	switch {
	case err == nil:
		s.logger.Debug("using persisted token",
			"token_file", s.store.Path(),
			"access_token", logging.SanitizeToken(tok.AccessToken))
		s.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultCached)
		return tok, nil
	case errors.Is(err, fs.ErrNotExist):
		return s.Authorize(ctx)
	default:
		s.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		return nil, err
	}
}

type authResult struct {
	code string
	err  error
}

// Authorize runs the installed-application flow: it serves the OAuth redirect
// on a loopback port, opens the consent screen, exchanges the returned code and
// persists the token.
func (s *CredentialStore) Authorize(ctx context.Context) (*oauth2.Token, error) {
	tok, err := s.authorize(ctx)
	if err != nil {
		s.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		return nil, err
	}
	s.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)
	return tok, nil
}

func (s *CredentialStore) authorize(ctx context.Context) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start OAuth callback listener: %w", err)
	}

	conf := *s.config
	conf.RedirectURL = "http://" + listener.Addr().String() + "/"
	state := uuid.NewString()

	results := make(chan authResult, 1)
	report := func(res authResult) {
		select {
		case results <- res:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		res := parseCallback(r, state)
		report(res)
		if res.err != nil {
			http.Error(w, "Authorization failed. You can close this window.", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization successful. You can close this window and return to Dropzone.")
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			report(authResult{err: fmt.Errorf("callback server error: %w", err)})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("failed to shutdown OAuth callback server", logging.Err(err))
		}
	}()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	s.logger.Info("waiting for Google Drive authorization in the browser")
	if err := s.openURL(authURL); err != nil {
		s.logger.Warn("could not open the browser, open the authorization URL manually",
			"url", authURL, logging.Err(err))
	}

	var res authResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization cancelled: %w", ctx.Err())
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := conf.Exchange(ctx, res.code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code for token: %w", err)
	}

	if err := s.store.Save(tok); err != nil {
		return nil, err
	}
	s.logger.Info("authorization stored", "token_file", s.store.Path())
	return tok, nil
}

func parseCallback(r *http.Request, state string) authResult {
	if errMsg := r.FormValue("error"); errMsg != "" {
		return authResult{err: fmt.Errorf("%w: %s", ErrAuthorizationDenied, errMsg)}
	}
	if r.FormValue("state") != state {
		return authResult{err: ErrStateMismatch}
	}
	code := r.FormValue("code")
	if code == "" {
		return authResult{err: errors.New("authorization callback carried no code")}
	}
	return authResult{code: code}
}
