package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

func main() {
	initConfig()

	fmt.Printf("=== Transformer Lab SSO Handshake (desktop host) ===\n")
	fmt.Printf("API base    : %s\n", apiConfig.Base())
	fmt.Printf("Page origin : %s\n", pageOrigin)
	if len(allowedOrigins) > 0 {
		fmt.Printf("Allow-list  : %s\n", strings.Join(allowedOrigins, ", "))
	}
	fmt.Println()

	ctx := context.Background()
	store := newSessionStore()
	handshake := NewHandshake(apiConfig, store, stdoutNavigator{}, httpClient)

	raw := callbackURL
	if raw == "" {
		loginURL := beginLogin(apiConfig, store, redirectURI)
		fmt.Println("Step 1: Open this link in your browser and sign in:")
		fmt.Printf("\n  %s\n\n", loginURL)
		fmt.Print("Step 2: Paste the callback URL you were redirected to: ")

		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			fmt.Fprintln(os.Stderr, "No callback URL provided.")
			os.Exit(1)
		}
		raw = strings.TrimSpace(scanner.Text())
	}

	loc, err := ParseLocation(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !isCallback(loc) {
		fmt.Fprintln(os.Stderr, "Error: that URL is not an SSO callback.")
		os.Exit(1)
	}

	fmt.Println("\nStep 3: Processing callback...")
	result := handshake.HandleCallback(ctx, loc)
	if !result.OK {
		fmt.Fprintln(os.Stderr, result.Message)
		os.Exit(1)
	}

	fmt.Println("Login successful.")
	if name, ok := store.Get(userNameKey); ok {
		fmt.Printf("Signed in as : %s\n", name)
	}
	if email, ok := store.Get(userEmailKey); ok {
		fmt.Printf("Email        : %s\n", email)
	}
	fmt.Printf("Trusted API  : %s\n", apiConfig.Base())

	// Prove the session works through the same primitive the rest of the
	// app uses for authenticated requests.
	fmt.Println("\nVerifying session with server...")
	resp, err := fetchWithAuth(ctx, apiConfig, store, http.MethodGet, confirmPath, nil)
	if err != nil {
		fmt.Printf("Session verification failed: %v\n", err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Failed to read verification response: %v\n", err)
		return
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Session verification returned status %d: %s\n", resp.StatusCode, string(body))
		return
	}
	fmt.Printf("Identity: %s\n", string(body))
}
