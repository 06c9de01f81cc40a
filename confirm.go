package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// confirmLogin polls the identity endpoint until it reports an
// authenticated session or the attempt budget runs out. Best effort: a slow
// backend must not hold the UI hostage, so exhaustion is not an error and
// there is no external cancellation beyond the caller's context.
func (h *Handshake) confirmLogin(ctx context.Context, token string) bool {
	for attempt := 0; attempt < h.confirmAttempts; attempt++ {
		if attempt > 0 {
			h.sleep(h.confirmInterval)
		}
		if ctx.Err() != nil {
			return false
		}
		if checkAuthenticated(ctx, h.client, h.api, token) {
			return true
		}
	}
	return false
}

// checkAuthenticated makes one "who am I" probe. The bearer header is only
// attached when a token is held; the client's cookie jar rides along either
// way, so both token-based and cookie-session backends are satisfied.
func checkAuthenticated(ctx context.Context, client *http.Client, api *APIConfig, token string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, confirmRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, api.Base()+confirmPath, nil)
	if err != nil {
		return false
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		return false
	}

	var me struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		return false
	}
	return me.Authenticated
}
