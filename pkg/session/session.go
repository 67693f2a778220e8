// Package session keeps the signed-in user's token and profile. It persists
// both under the "token" and "user" keys of a storage.Store, restores them
// at startup, and serves the token to the API client.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/tileboard/pkg/api"
	"gitlab.com/tinyland/lab/tileboard/pkg/storage"
)

// Storage keys.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Fallback messages when the server gives none.
const (
	LoginFailed    = "Login failed"
	RegisterFailed = "Registration failed"
)

// User is the profile returned at login. Fields the backend adds beyond
// these are kept in Extra so a restore round-trips them.
type User struct {
	ID    api.ID         `json:"id,omitempty"`
	Email string         `json:"email,omitempty"`
	Name  string         `json:"name,omitempty"`
	Extra map[string]any `json:"-"`
}

// Label returns the best human-readable name for u.
func (u User) Label() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	case u.ID != "":
		return "user " + u.ID.String()
	}
	return "unknown user"
}

// AuthError is a failed login or registration. Msg is what the user sees.
type AuthError struct {
	Msg string
	Err error
}

func (e *AuthError) Error() string { return e.Msg }

func (e *AuthError) Unwrap() error { return e.Err }

// ErrExpired reports a restored token whose exp claim has passed.
var ErrExpired = errors.New("session: token expired")

type loginResponse struct {
	AccessToken string          `json:"access_token"`
	User        json.RawMessage `json:"user"`
}

// Store is the session. It is safe for concurrent use.
type Store struct {
	client *api.Client
	store  *storage.Store
	log    *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	token string
	user  *User
	raw   json.RawMessage
}

// New returns a signed-out session bound to client and store, and installs
// itself as client's token source.
func New(client *api.Client, store *storage.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{client: client, store: store, log: log, now: time.Now}
	client.SetTokenSource(s)
	return s
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user.
func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Authenticated reports whether both a token and a user are held.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Login exchanges credentials for a token and persists the session.
func (s *Store) Login(ctx context.Context, email, password string) (User, error) {
	var resp loginResponse
	err := s.client.Post(ctx, "/auth/login", map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	}, &resp)
	if err != nil {
		s.log.Info("login failed", zap.String("email", email), zap.Error(err))
		return User{}, &AuthError{Msg: api.Message(err, LoginFailed), Err: err}
	}
	if resp.AccessToken == "" {
		return User{}, &AuthError{Msg: LoginFailed, Err: errors.New("session: response has no access_token")}
	}

	raw := resp.User
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage(`{}`)
	}
	u, err := decodeUser(raw)
	if err != nil {
		return User{}, &AuthError{Msg: LoginFailed, Err: err}
	}
	if u.Email == "" {
		u.Email = strings.TrimSpace(email)
	}

	if err := s.persist(resp.AccessToken, raw); err != nil {
		s.log.Warn("persist session", zap.Error(err))
	}

	s.mu.Lock()
	s.token = resp.AccessToken
	s.user = &u
	s.raw = raw
	s.mu.Unlock()
	s.log.Info("logged in", zap.String("user", u.Label()))
	return u, nil
}

// Register creates an account. It does not sign the user in.
func (s *Store) Register(ctx context.Context, email, password string) error {
	err := s.client.Post(ctx, "/auth/register", map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	}, nil)
	if err != nil {
		s.log.Info("register failed", zap.String("email", email), zap.Error(err))
		return &AuthError{Msg: api.Message(err, RegisterFailed), Err: err}
	}
	return nil
}

// Logout clears the session from memory and storage.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.raw = nil
	s.mu.Unlock()

	var errs []error
	if err := s.store.Delete(TokenKey); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Delete(UserKey); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Restore loads a persisted session. It reports true only when both keys
// are present and decode. A JWT whose exp claim has passed is dropped and
// ErrExpired returned.
func (s *Store) Restore() (bool, error) {
	token, ok := s.store.GetString(TokenKey)
	if !ok || token == "" {
		return false, nil
	}
	rawUser, ok := s.store.Get(UserKey)
	if !ok {
		return false, nil
	}
	u, err := decodeUser(rawUser)
	if err != nil {
		return false, fmt.Errorf("session: decode stored user: %w", err)
	}
	if s.expired(token) {
		_ = s.Logout()
		return false, ErrExpired
	}

	s.mu.Lock()
	s.token = token
	s.user = &u
	s.raw = json.RawMessage(rawUser)
	s.mu.Unlock()
	return true, nil
}

// expired reports whether token is a JWT with an exp claim in the past.
// Tokens that are not JWTs, or carry no exp, never expire here; the server
// is the authority and answers 401.
func (s *Store) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !s.now().Before(exp.Time)
}

func (s *Store) persist(token string, rawUser json.RawMessage) error {
	if err := s.store.PutString(TokenKey, token); err != nil {
		return err
	}
	return s.store.Put(UserKey, rawUser)
}

func decodeUser(raw []byte) (User, error) {
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return User{}, err
	}
	var all map[string]any
	if err := json.Unmarshal(raw, &all); err == nil {
		delete(all, "id")
		delete(all, "email")
		delete(all, "name")
		if len(all) > 0 {
			u.Extra = all
		}
	}
	return u, nil
}
