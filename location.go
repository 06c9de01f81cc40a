package main

import (
	"fmt"
	"net/url"
	"strings"
)

// Location is a snapshot of the web view's navigable location. The fragment
// is kept separate from the path because providers disagree on whether the
// callback arrives path-based or fragment-based.
type Location struct {
	Path     string
	RawQuery string
	Fragment string
}

// ParseLocation splits a full URL into a Location.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("invalid callback URL: %w", err)
	}
	return Location{
		Path:     u.Path,
		RawQuery: u.RawQuery,
		Fragment: u.Fragment,
	}, nil
}

// CallbackParams holds the provider-supplied fields recovered from one
// callback location. Absent fields are empty strings. Derived fresh on
// every read and discarded after one handshake attempt.
type CallbackParams struct {
	Code          string
	State         string
	AccessToken   string
	Name          string
	Email         string
	APIOriginHint string
}

// isCallback reports whether the location is an SSO return trip: either the
// path ends in the callback segment, or the fragment's path-like portion
// (its own query stripped) contains it. Pure and cheap; it gates whether
// the rest of the handshake runs at all.
func isCallback(loc Location) bool {
	if strings.HasSuffix(loc.Path, callbackSegment) {
		return true
	}
	if loc.Fragment == "" {
		return false
	}
	fragPath := loc.Fragment
	if i := strings.Index(fragPath, "?"); i >= 0 {
		fragPath = fragPath[:i]
	}
	return strings.Contains(fragPath, callbackSegment)
}

// parseParams pulls the callback fields out of the location. The main query
// string wins over the fragment; code and state are only ever read from the
// main query because the code flow never redirects via fragment here.
func parseParams(loc Location) CallbackParams {
	query, _ := url.ParseQuery(loc.RawQuery)
	frag := fragmentQuery(loc.Fragment)

	pick := func(key string) string {
		if v := query.Get(key); v != "" {
			return v
		}
		return frag.Get(key)
	}

	return CallbackParams{
		Code:          query.Get("code"),
		State:         query.Get("state"),
		AccessToken:   pick("access_token"),
		Name:          pick("name"),
		Email:         pick("email"),
		APIOriginHint: pick("api_url"),
	}
}

// fragmentQuery treats the fragment as its own mini-URL: everything after a
// literal "?" is query-like; failing that, a fragment containing "=" is a
// flat query string. Malformed fragments yield whatever pairs did parse,
// never an error.
func fragmentQuery(fragment string) url.Values {
	if fragment == "" {
		return url.Values{}
	}
	if i := strings.Index(fragment, "?"); i >= 0 {
		values, _ := url.ParseQuery(fragment[i+1:])
		return values
	}
	if strings.Contains(fragment, "=") {
		values, _ := url.ParseQuery(fragment)
		return values
	}
	return url.Values{}
}
