package auth

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session holds the access token issued by the hosted auth provider. It only
// reads the claims it needs (subject and expiry); signature verification is
// the provider's job.
type Session struct {
	mu     sync.RWMutex
	token  string
	userID string
	expiry time.Time
	now    func() time.Time
}

func NewSession() *Session {
	return &Session{now: time.Now}
}

// Login installs token as the current session.
func (s *Session) Login(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is empty")
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("jwt.ParseUnverified: %w", err)
	}
	if claims.Subject == "" {
		return fmt.Errorf("token has no subject")
	}

	var expiry time.Time
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
		if !expiry.After(s.now()) {
			return fmt.Errorf("token expired at %s", expiry.Format(time.RFC3339))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.userID = claims.Subject
	s.expiry = expiry
	return nil
}

func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.userID = ""
	s.expiry = time.Time{}
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.CurrentSessionToken()
	return ok
}

// CurrentSessionToken returns the token while it is present and unexpired.
func (s *Session) CurrentSessionToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", false
	}
	if !s.expiry.IsZero() && !s.expiry.After(s.now()) {
		return "", false
	}
	return s.token, true
}

// UserID is the subject claim of the current token.
func (s *Session) UserID() (string, bool) {
	if !s.IsAuthenticated() {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, true
}
