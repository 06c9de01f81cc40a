package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestExchange_ImplicitTokenSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	h := newTestHandshake(t, srv)
	cred, err := h.exchange(context.Background(), CallbackParams{
		AccessToken: "tok123",
		Name:        "Ada",
		Email:       "a@x.com",
	})
	if err != nil {
		t.Fatalf("exchange() error: %v", err)
	}
	if cred.AccessToken != "tok123" || cred.DisplayName != "Ada" || cred.Email != "a@x.com" {
		t.Errorf("unexpected credential: %+v", cred)
	}
	if calls.Load() != 0 {
		t.Errorf("implicit flow hit the network %d times", calls.Load())
	}
}

func TestExchange_MissingCodeAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	h := newTestHandshake(t, srv)
	_, err := h.exchange(context.Background(), CallbackParams{})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Missing authorization code or token in callback URL." {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestExchange_FailureMessages(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantMsg string
	}{
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantMsg: "SSO exchange failed.",
		},
		{
			name: "unparsable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "<html>not json</html>")
			},
			wantMsg: "SSO exchange failed: invalid server response.",
		},
		{
			name: "missing token field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"name": "Ada"})
			},
			wantMsg: "SSO exchange failed: missing access token.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			h := newTestHandshake(t, srv)
			_, err := h.exchange(context.Background(), CallbackParams{Code: "abc", State: "s1"})
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestExchange_Success(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "tok456",
			"name":         "Ada",
			"email":        "a@x.com",
		})
	}))
	defer srv.Close()

	h := newTestHandshake(t, srv)
	cred, err := h.exchange(context.Background(), CallbackParams{Code: "abc", State: "s1"})
	if err != nil {
		t.Fatalf("exchange() error: %v", err)
	}

	if gotPath != "/auth/workos/callback" {
		t.Errorf("path = %q, want /auth/workos/callback", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody["code"] != "abc" || gotBody["state"] != "s1" {
		t.Errorf("request body = %v, want code=abc state=s1", gotBody)
	}
	if cred.AccessToken != "tok456" || cred.DisplayName != "Ada" || cred.Email != "a@x.com" {
		t.Errorf("unexpected credential: %+v", cred)
	}
}

func TestExchange_ResponseAPIHintGoesThroughTrustGate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "tok",
			"api_url":      "https://evil.example.net/api",
		})
	}))
	defer srv.Close()

	h := newTestHandshake(t, srv)
	before := h.api.Base()

	if _, err := h.exchange(context.Background(), CallbackParams{Code: "abc"}); err != nil {
		t.Fatalf("exchange() error: %v", err)
	}
	if got := h.api.Base(); got != before {
		t.Errorf("cross-origin api_url hint adopted: %q", got)
	}
}

func TestExchange_ResponseAPIHintAdoptedWhenAllowListed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "tok",
			"api_url":      "https://api.example.com/v1",
		})
	}))
	defer srv.Close()

	h := newTestHandshake(t, srv)
	h.api.allowlist = append(h.api.allowlist, "https://api.example.com")

	if _, err := h.exchange(context.Background(), CallbackParams{Code: "abc"}); err != nil {
		t.Fatalf("exchange() error: %v", err)
	}
	if got := h.api.Base(); got != "https://api.example.com/v1/" {
		t.Errorf("allow-listed api_url hint not adopted, Base() = %q", got)
	}
}
