package graph

import "sync"

// Settings holds the Graph API connection settings shared by a client:
// the API base URL, the application client id, and the app secret used
// for request signing. Unset values read as the empty string.
//
// Settings is safe for concurrent use; callers typically populate it once
// at startup and hand it to NewClient, but individual values may be
// swapped at runtime (e.g., rotating an app secret).
type Settings struct {
	mu        sync.RWMutex
	graphURL  string
	clientID  string
	appSecret string
}

// NewSettings builds a Settings value from the given base URL, client id,
// and app secret. Any of the three may be empty.
func NewSettings(graphURL, clientID, appSecret string) *Settings {
	return &Settings{
		graphURL:  graphURL,
		clientID:  clientID,
		appSecret: appSecret,
	}
}

// GraphURL returns the configured API base URL.
func (s *Settings) GraphURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graphURL
}

// SetGraphURL updates the API base URL.
func (s *Settings) SetGraphURL(v string) {
	s.mu.Lock()
	s.graphURL = v
	s.mu.Unlock()
}

// ClientID returns the configured application client id.
func (s *Settings) ClientID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientID
}

// SetClientID updates the application client id.
func (s *Settings) SetClientID(v string) {
	s.mu.Lock()
	s.clientID = v
	s.mu.Unlock()
}

// AppSecret returns the configured app secret, or "" when signing is disabled.
func (s *Settings) AppSecret() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appSecret
}

// SetAppSecret updates the app secret. Setting it to "" disables request
// signing for calls that sign conditionally.
func (s *Settings) SetAppSecret(v string) {
	s.mu.Lock()
	s.appSecret = v
	s.mu.Unlock()
}
