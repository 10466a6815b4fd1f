// Package session holds the signed-in user and bearer token.
//
// A Session is either anonymous or authenticated. The user and token are
// persisted together under fixed keys and always cleared together.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sadopc/agenda/internal/model"
	"github.com/sadopc/agenda/internal/store"
)

const (
	KeyUser  = "user"
	KeyToken = "token"
)

// ErrInvalidLogin is returned by Begin for an empty token or a user without id.
var ErrInvalidLogin = errors.New("login response missing user or token")

// Storage is the durable key/value backing of a session.
type Storage interface {
	GetValue(key string) (string, error)
	SetValues(values map[string]string) error
	DeleteValues(keys ...string) error
}

type Session struct {
	mu    sync.RWMutex
	store Storage
	now   func() time.Time

	user  *model.User
	token string
}

// New returns an anonymous session backed by st. Call Restore to pick up a
// previously persisted login.
func New(st Storage) *Session {
	return &Session{store: st, now: time.Now}
}

// Restore loads the persisted user and token. A partial record, an unreadable
// user or a JWT whose exp has passed is discarded and the session stays
// anonymous. It reports whether the session is authenticated afterwards.
func (s *Session) Restore() (bool, error) {
	rawUser, errUser := s.store.GetValue(KeyUser)
	token, errToken := s.store.GetValue(KeyToken)
	if errUser != nil || errToken != nil {
		for _, err := range []error{errUser, errToken} {
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return false, fmt.Errorf("restore session: %w", err)
			}
		}
		return false, s.End()
	}

	var u model.User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil || token == "" {
		return false, s.End()
	}
	if Expired(token, s.now()) {
		return false, s.End()
	}

	s.mu.Lock()
	s.user = &u
	s.token = token
	s.mu.Unlock()
	return true, nil
}

// Begin persists user and token and marks the session authenticated.
func (s *Session) Begin(u model.User, token string) error {
	if token == "" || u.ID == 0 {
		return ErrInvalidLogin
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.SetValues(map[string]string{KeyUser: string(raw), KeyToken: token}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.user = &u
	s.token = token
	s.mu.Unlock()
	return nil
}

// End clears the persisted user and token and makes the session anonymous.
// Ending an anonymous session is a no-op.
func (s *Session) End() error {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.store.DeleteValues(KeyUser, KeyToken); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

func (s *Session) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

func (s *Session) UserID() int64 {
	u, _ := s.User()
	return u.ID
}

// Token returns the bearer token, or "" when anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Expired reports whether token is a JWT whose exp claim is before now.
// Opaque tokens and JWTs without exp never expire locally; the backend
// still decides with a 401.
func Expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
