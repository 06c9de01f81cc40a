package main

import (
	"net/url"
	"slices"
	"strings"
)

// APIConfig is the process-wide record of which backend the application is
// willing to send authenticated requests to. Every component reads it
// through Base; all mutation goes through Adopt, which enforces the
// same-origin/allow-list rule so a hostile redirect cannot repoint the app
// at an attacker-controlled backend.
type APIConfig struct {
	pageOrigin   string
	fallbackBase string
	allowlist    []string
	base         string
}

func NewAPIConfig(pageOrigin, fallbackBase string, allowlist []string) *APIConfig {
	return &APIConfig{
		pageOrigin:   strings.TrimRight(pageOrigin, "/"),
		fallbackBase: ensureTrailingSlash(fallbackBase),
		allowlist:    allowlist,
	}
}

// Base returns the trusted origin+path, always with a trailing slash. Until
// a hint has been adopted it falls back to the compiled-in default.
func (c *APIConfig) Base() string {
	if c.base == "" {
		return c.fallbackBase
	}
	return c.base
}

// Adopt considers candidate as the new trusted API base. The candidate's
// origin must equal the page origin or appear in the allow-list; anything
// else, including an unparsable candidate, is a no-op. An established
// third-party base (neither the page origin nor the fallback origin) is
// never downgraded by a same-origin candidate, so page-level script cannot
// silently override a backend trust relationship set up through a vetted
// path.
func (c *APIConfig) Adopt(candidate string) {
	origin, base, ok := splitBase(candidate)
	if !ok {
		return
	}
	if origin != c.pageOrigin && !slices.Contains(c.allowlist, origin) {
		return
	}
	if c.base != "" && origin == c.pageOrigin {
		current, _, _ := splitBase(c.base)
		fallback, _, _ := splitBase(c.fallbackBase)
		if current != c.pageOrigin && current != fallback {
			return
		}
	}
	c.base = base
}

// splitBase parses a raw URL into its origin and its origin+path base.
func splitBase(raw string) (origin, base string, ok bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", "", false
	}
	origin = u.Scheme + "://" + u.Host
	return origin, ensureTrailingSlash(origin + u.Path), true
}

func ensureTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
