package main

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestBeginLogin(t *testing.T) {
	api := newTestAPIConfig()
	store := newSessionStore()

	loginURL := beginLogin(api, store, "http://localhost:1212/auth/callback")

	pending, ok := store.Get(pendingStateKey)
	if !ok || pending == "" {
		t.Fatal("beginLogin did not store a pending state")
	}
	if _, err := uuid.Parse(pending); err != nil {
		t.Errorf("pending state %q is not a UUID: %v", pending, err)
	}

	u, err := url.Parse(loginURL)
	if err != nil {
		t.Fatalf("login URL unparsable: %v", err)
	}
	if !strings.HasPrefix(loginURL, api.Base()+"auth/workos/login?") {
		t.Errorf("login URL = %q, want %q prefix", loginURL, api.Base()+"auth/workos/login?")
	}
	if got := u.Query().Get("state"); got != pending {
		t.Errorf("state in URL = %q, want stored value %q", got, pending)
	}
	if got := u.Query().Get("redirect_uri"); got != "http://localhost:1212/auth/callback" {
		t.Errorf("redirect_uri in URL = %q", got)
	}
}

func TestBeginLogin_FreshStateEachTime(t *testing.T) {
	api := newTestAPIConfig()
	store := newSessionStore()

	beginLogin(api, store, "http://localhost:1212/auth/callback")
	first, _ := store.Get(pendingStateKey)
	beginLogin(api, store, "http://localhost:1212/auth/callback")
	second, _ := store.Get(pendingStateKey)

	if first == second {
		t.Error("consecutive logins reused the same state value")
	}
}
