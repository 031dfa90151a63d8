package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oseducation/kgrest/rest"
)

// Store holds the credentials of the current authenticated session and keeps
// every bound client in step with them. Nothing is persisted.
type Store struct {
	mu        sync.RWMutex
	token     string
	csrf      string
	expiresAt time.Time
	clients   []*rest.Client
}

func New() *Store {
	return &Store{
		mu:        sync.RWMutex{},
		token:     "",
		csrf:      "",
		expiresAt: time.Time{},
		clients:   nil,
	}
}

// Login replaces the session credentials. Either value may be empty.
func (s *Store) Login(token, csrf string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.csrf = csrf
	s.expiresAt = tokenExpiry(token)

	s.pushLocked()
}

func (s *Store) Logout() {
	s.Login("", "")
}

// Bind makes c send the current credentials and every later change to them.
func (s *Store) Bind(c *rest.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients = append(s.clients, c)

	c.SetToken(s.token)
	c.SetCSRF(s.csrf)
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

func (s *Store) CSRF() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.csrf
}

// ExpiresAt reports the exp claim of a JWT bearer token. Opaque tokens and
// tokens without exp have no expiry.
func (s *Store) ExpiresAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.expiresAt, !s.expiresAt.IsZero()
}

func (s *Store) Expired(now time.Time) bool {
	expiresAt, ok := s.ExpiresAt()

	return ok && !now.Before(expiresAt)
}

func (s *Store) pushLocked() {
	for _, c := range s.clients {
		c.SetToken(s.token)
		c.SetCSRF(s.csrf)
	}
}

// tokenExpiry reads exp without verifying the signature; the server remains
// the authority on whether the token is accepted.
func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}

	return exp.Time
}
