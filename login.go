package main

import (
	"net/url"

	"github.com/google/uuid"
)

// beginLogin is the write-before-redirect half of the CSRF story: it
// generates a fresh random state, stashes it for the return trip, and
// returns the provider login URL to send the user to.
func beginLogin(api *APIConfig, store Storage, redirectURI string) string {
	state := uuid.NewString()
	store.Set(pendingStateKey, state)
	return buildLoginURL(api, redirectURI, state)
}

func buildLoginURL(api *APIConfig, redirectURI, state string) string {
	params := url.Values{}
	params.Set("redirect_uri", redirectURI)
	params.Set("state", state)
	return api.Base() + "auth/workos/login?" + params.Encode()
}
