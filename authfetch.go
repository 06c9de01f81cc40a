package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	retry "github.com/appleboy/go-httpretry"
	"golang.org/x/oauth2"
)

// newAuthClient builds the retrying HTTP client used for authenticated API
// calls after the handshake. The stored access token, when present, rides
// as a bearer credential on every request; the shared cookie jar rides
// along regardless so cookie-session backends keep working.
func newAuthClient(store Storage) (*retry.Client, error) {
	transport := baseTransport
	if transport == nil {
		transport = http.DefaultTransport
	}

	base := &http.Client{
		Transport: transport,
		Jar:       cookieJar,
	}
	if token, ok := store.Get(accessTokenKey); ok && token != "" {
		base.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: token,
				TokenType:   "Bearer",
			}),
			Base: transport,
		}
	}

	return retry.NewBackgroundClient(retry.WithHTTPClient(base))
}

// fetchWithAuth issues one authenticated request against the trusted API
// base. Every screen outside the handshake core goes through this
// primitive; it retries transient failures, unlike the handshake itself.
func fetchWithAuth(
	ctx context.Context,
	api *APIConfig,
	store Storage,
	method, path string,
	body io.Reader,
) (*http.Response, error) {
	client, err := newAuthClient(store)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth client: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, api.Base()+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return client.DoWithContext(ctx, req)
}
