package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Status tracks one handshake through its idle → loading → success/error
// lifecycle. There is no cancel transition.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

// HandshakeResult is the terminal value of one callback attempt, consumed
// by the UI layer. Never persisted.
type HandshakeResult struct {
	OK      bool
	Message string
}

// userError is a handshake failure whose text is shown to the user as-is.
// Anything that is not a userError is unexpected and gets reported through
// the generic exception message instead.
type userError struct {
	msg string
}

func (e *userError) Error() string {
	return e.msg
}

// Handshake wires the callback-processing chain together: trust gate,
// state validation, token exchange, credential persistence, confirmation
// polling, and navigation cleanup. One instance serves the whole process;
// callers are expected to run at most one handshake per navigation event.
type Handshake struct {
	api    *APIConfig
	store  Storage
	nav    Navigator
	client *http.Client
	status Status

	confirmAttempts int
	confirmInterval time.Duration
	sleep           func(time.Duration)
}

func NewHandshake(api *APIConfig, store Storage, nav Navigator, client *http.Client) *Handshake {
	return &Handshake{
		api:             api,
		store:           store,
		nav:             nav,
		client:          client,
		confirmAttempts: defaultConfirmAttempts,
		confirmInterval: defaultConfirmInterval,
		sleep:           time.Sleep,
	}
}

func (h *Handshake) Status() Status {
	return h.status
}

// HandleCallback runs one full handshake against the given location. A
// location that is not a callback is a no-op. Known failures surface their
// exact user-facing message; anything unexpected — including a panic from a
// collaborator — is reported as an exception and clears the pending state
// so the user can retry cleanly.
func (h *Handshake) HandleCallback(ctx context.Context, loc Location) (result HandshakeResult) {
	if !isCallback(loc) {
		return HandshakeResult{}
	}

	h.status = StatusLoading
	defer func() {
		if r := recover(); r != nil {
			h.store.Delete(pendingStateKey)
			h.status = StatusError
			result = HandshakeResult{
				Message: fmt.Sprintf("Exception processing callback: %v", r),
			}
		}
	}()

	params := parseParams(loc)

	if params.APIOriginHint != "" {
		h.api.Adopt(params.APIOriginHint)
	}

	if err := validateState(h.store, params); err != nil {
		return h.fail(fmt.Sprintf("Login failed: %s.", err))
	}

	cred, err := h.exchange(ctx, params)
	if err != nil {
		var ue *userError
		if errors.As(err, &ue) {
			return h.fail(ue.msg)
		}
		h.store.Delete(pendingStateKey)
		return h.fail("Exception processing callback: " + err.Error())
	}

	if err := persistCredential(h.store, cred); err != nil {
		h.store.Delete(pendingStateKey)
		return h.fail("Exception processing callback: " + err.Error())
	}

	if !h.confirmLogin(ctx, cred.AccessToken) {
		// Best-effort confirmation: proceed anyway rather than block the
		// UI on a slow backend.
		fmt.Println("Session not yet confirmed by backend, continuing.")
	}

	h.finish()
	h.status = StatusSuccess
	return HandshakeResult{OK: true}
}

func (h *Handshake) fail(msg string) HandshakeResult {
	h.status = StatusError
	return HandshakeResult{OK: false, Message: msg}
}
