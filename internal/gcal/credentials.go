// Package gcal wraps read-only access to a shared Google Calendar: loading
// and refreshing the OAuth credential bundle, and listing events in a
// future window as explicit raw records.
package gcal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"gitea.jw6.us/james/coursebot/internal/config"
	calendar "google.golang.org/api/calendar/v3"
)

// ErrNoCredentials is returned by Load when the token file is absent or
// unreadable; the caller should run the consent flow.
var ErrNoCredentials = errors.New("gcal: no stored credentials")

// ConsentFunc completes the interactive consent step: it presents the
// authorization URL to the operator and returns the code they obtained.
type ConsentFunc func(authURL string) (code string, err error)

// CredentialStore owns the persisted token bundle. No other component
// inspects its contents.
type CredentialStore struct {
	conf      *oauth2.Config
	tokenPath string
}

// NewCredentialStore builds the store and the OAuth configuration for
// read-only calendar access.
func NewCredentialStore(cfg *config.Config) *CredentialStore {
	return &CredentialStore{
		conf: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes:       []string{calendar.CalendarReadonlyScope},
			Endpoint:     google.Endpoint,
		},
		tokenPath: cfg.Google.TokenFile,
	}
}

// Load reads the persisted token bundle. A missing or malformed file is
// reported as ErrNoCredentials, never as a hard failure.
func (s *CredentialStore) Load() (*oauth2.Token, error) {
	f, err := os.Open(s.tokenPath)
	if err != nil {
		return nil, ErrNoCredentials
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, ErrNoCredentials
	}
	return tok, nil
}

// Persist writes the token bundle to stable storage.
func (s *CredentialStore) Persist(tok *oauth2.Token) error {
	f, err := os.OpenFile(s.tokenPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// Authorize returns the stored token if present, otherwise drives the
// consent flow and persists the result before returning it. A failed
// consent exchange propagates to the caller; there is no retry.
func (s *CredentialStore) Authorize(ctx context.Context, consent ConsentFunc) (*oauth2.Token, error) {
	if tok, err := s.Load(); err == nil {
		return tok, nil
	}

	authURL := s.conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	code, err := consent(authURL)
	if err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}

	tok, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("authorize: exchange code: %w", err)
	}

	if err := s.Persist(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// Config exposes the OAuth configuration for building an authorized client.
func (s *CredentialStore) Config() *oauth2.Config {
	return s.conf
}

// ConsoleConsent prompts on w and reads the authorization code from r.
func ConsoleConsent(r io.Reader, w io.Writer) ConsentFunc {
	return func(authURL string) (string, error) {
		fmt.Fprintf(w, "Open the following link in your browser, then paste the authorization code:\n%v\n> ", authURL)
		scanner := bufio.NewScanner(r)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", errors.New("consent cancelled")
		}
		return scanner.Text(), nil
	}
}
