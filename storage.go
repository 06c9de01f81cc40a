package main

import (
	"fmt"

	cache "github.com/patrickmn/go-cache"
)

// Storage keys. The pending-state key is written before the redirect to the
// identity provider and read-and-deleted on the return trip; the session
// keys hold the durable credential for the rest of the process lifetime.
const (
	pendingStateKey = "sso.pending_state"
	accessTokenKey  = "session.access_token"
	userNameKey     = "session.user_name"
	userEmailKey    = "session.user_email"
)

// Storage is the scoped key-value capability the handshake persists through.
// Injected so tests can substitute their own instance and so a desktop host
// can back it with whatever secure storage it has.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// sessionStore is the default Storage: a process-scoped in-memory cache
// that does not survive restarts, matching session-scoped storage semantics.
type sessionStore struct {
	c *cache.Cache
}

func newSessionStore() *sessionStore {
	return &sessionStore{c: cache.New(cache.NoExpiration, 0)}
}

func (s *sessionStore) Get(key string) (string, bool) {
	v, ok := s.c.Get(key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

func (s *sessionStore) Set(key, value string) {
	s.c.Set(key, value, cache.NoExpiration)
}

func (s *sessionStore) Delete(key string) {
	s.c.Delete(key)
}

// SessionCredential is the durable outcome of a successful handshake.
// Overwritten wholesale on every login.
type SessionCredential struct {
	AccessToken string
	DisplayName string
	Email       string
}

// persistCredential writes the credential all-or-nothing: without an access
// token nothing is stored, while a missing display name or email never
// blocks storing the token.
func persistCredential(store Storage, cred *SessionCredential) error {
	if cred == nil || cred.AccessToken == "" {
		return fmt.Errorf("refusing to store credential without access token")
	}
	store.Set(accessTokenKey, cred.AccessToken)
	if cred.DisplayName != "" {
		store.Set(userNameKey, cred.DisplayName)
	}
	if cred.Email != "" {
		store.Set(userEmailKey, cred.Email)
	}
	return nil
}
