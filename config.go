package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	fallbackAPIBase   string
	pageOrigin        string
	allowedOrigins    []string
	redirectURI       string
	callbackURL       string
	configInitialized bool

	apiConfig     *APIConfig
	cookieJar     http.CookieJar
	baseTransport http.RoundTripper
	httpClient    *http.Client

	flagAPIBase     *string
	flagPageOrigin  *string
	flagAllowed     *string
	flagCallbackURL *string
)

const (
	// defaultFallbackAPIBase is the compiled-in backend used when no
	// trustworthy api_url hint has ever been adopted.
	defaultFallbackAPIBase = "http://localhost:8338/"

	// defaultPageOrigin is where the embedded web view is served from
	// during local development.
	defaultPageOrigin = "http://localhost:1212"

	// callbackSegment marks a navigation as an SSO return trip, whether it
	// appears at the end of the path or inside the fragment.
	callbackSegment = "auth/callback"

	// exchangePath and confirmPath are resolved against the trusted API base.
	exchangePath = "auth/workos/callback"
	confirmPath  = "auth/me"

	exchangeTimeout       = 10 * time.Second
	confirmRequestTimeout = 5 * time.Second

	defaultConfirmAttempts = 10
	defaultConfirmInterval = 300 * time.Millisecond

	// reloadDelay gives the web view a beat to paint the root route before
	// the full reload kicks in.
	reloadDelay = 200 * time.Millisecond
)

func init() {
	_ = godotenv.Load()

	flagAPIBase = flag.String(
		"api-url",
		"",
		"Fallback API base URL (default: http://localhost:8338/ or API_URL env)",
	)
	flagPageOrigin = flag.String(
		"page-origin",
		"",
		"Origin the embedded web view is served from (default: http://localhost:1212 or PAGE_ORIGIN env)",
	)
	flagAllowed = flag.String(
		"allowed-api-origins",
		"",
		"Comma-separated origins that may be adopted as the API base (or ALLOWED_API_ORIGINS env)",
	)
	flagCallbackURL = flag.String(
		"callback-url",
		"",
		"SSO callback URL to process (skips the interactive login prompt)",
	)
}

func initConfig() {
	if configInitialized {
		return
	}
	configInitialized = true

	flag.Parse()

	fallbackAPIBase = getConfig(*flagAPIBase, "API_URL", defaultFallbackAPIBase)
	pageOrigin = getConfig(*flagPageOrigin, "PAGE_ORIGIN", defaultPageOrigin)
	allowedOrigins = splitOrigins(getConfig(*flagAllowed, "ALLOWED_API_ORIGINS", ""))
	callbackURL = *flagCallbackURL

	if err := validateBaseURL(fallbackAPIBase); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid API_URL: %v\n", err)
		os.Exit(1)
	}
	if err := validateBaseURL(pageOrigin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid PAGE_ORIGIN: %v\n", err)
		os.Exit(1)
	}

	if strings.HasPrefix(strings.ToLower(fallbackAPIBase), "http://") &&
		!strings.HasPrefix(strings.ToLower(fallbackAPIBase), "http://localhost") {
		fmt.Fprintln(
			os.Stderr,
			"WARNING: Using HTTP instead of HTTPS. Tokens will be transmitted in plaintext!",
		)
		fmt.Fprintln(os.Stderr)
	}

	apiConfig = NewAPIConfig(pageOrigin, fallbackAPIBase, allowedOrigins)

	// The redirect URI registered with the identity provider points back at
	// the web view's own callback route.
	redirectURI = strings.TrimRight(pageOrigin, "/") + "/" + callbackSegment

	jar, err := cookiejar.New(nil)
	if err != nil {
		panic(fmt.Sprintf("failed to create cookie jar: %v", err))
	}
	cookieJar = jar

	baseTransport = &http.Transport{
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	// The handshake client carries the session cookie jar and never retries
	// on its own: a failed exchange is terminal, and the confirmation
	// poller does its own bounded looping.
	httpClient = &http.Client{
		Transport: baseTransport,
		Jar:       cookieJar,
	}
}

func getConfig(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return getEnv(envKey, defaultValue)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func validateBaseURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got: %s", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}

// splitOrigins parses a comma-separated origin list, dropping empty entries.
func splitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			origins = append(origins, strings.TrimRight(part, "/"))
		}
	}
	return origins
}
