package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/dzdrive/internal/logging"
)

// FileTokenStore persists an OAuth token as JSON in a single file.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a token store backed by path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Path returns the token file location.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Load reads the persisted token. A missing file yields an error matching fs.ErrNotExist.
func (s *FileTokenStore) Load() (*oauth2.Token, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("token file %s is empty; delete it to authorize again", s.path)
		}
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("token file %s holds no token; delete it to authorize again", s.path)
	}
	return tok, nil
}

// Save writes the token with user-only permissions.
func (s *FileTokenStore) Save(tok *oauth2.Token) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("failed to encode token to file: %w", err)
	}
	return nil
}

// persistingTokenSource writes every newly minted token back to the store so a
// refresh survives the process.
type persistingTokenSource struct {
	mu     sync.Mutex
	base   oauth2.TokenSource
	store  *FileTokenStore
	last   string
	logger *slog.Logger
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		if err := p.store.Save(tok); err != nil {
			p.logger.Warn("failed to persist refreshed token", logging.Err(err))
		} else {
			p.logger.Debug("persisted refreshed token",
				"access_token", logging.SanitizeToken(tok.AccessToken))
		}
	}
	return tok, nil
}
