package main

import "fmt"

// rootRoute is where the user lands after a finished handshake.
const rootRoute = "#/"

// Navigator abstracts the embedding web view's location so the finalizer
// can run against a real window or a test double.
type Navigator interface {
	// Replace swaps the current history entry for target without pushing a
	// new one, so back-navigation cannot return to the callback URL.
	Replace(target string)
	// Reload performs a full reload so every component re-mounts against
	// the new session.
	Reload()
}

// finish strips the sensitive callback URL from view, routes to the root,
// and forces a reload after a short delay.
func (h *Handshake) finish() {
	h.nav.Replace(rootRoute)
	h.sleep(reloadDelay)
	h.nav.Reload()
}

// stdoutNavigator narrates navigation for the CLI host, which has no real
// web view to drive.
type stdoutNavigator struct{}

func (stdoutNavigator) Replace(target string) {
	fmt.Printf("Navigating to %s (history entry replaced)\n", target)
}

func (stdoutNavigator) Reload() {
	fmt.Println("Reloading application view...")
}
