package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Failures the user may see verbatim. Each exchange failure shape gets its
// own message so a broken backend is diagnosable from the error alone.
var (
	errExchangeFailed        = &userError{"SSO exchange failed."}
	errInvalidServerResponse = &userError{"SSO exchange failed: invalid server response."}
	errMissingAccessToken    = &userError{"SSO exchange failed: missing access token."}
	errMissingCodeOrToken    = &userError{"Missing authorization code or token in callback URL."}
)

type exchangeResponse struct {
	AccessToken string `json:"access_token"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	APIUrl      string `json:"api_url"`
}

// exchange turns the callback parameters into a session credential. An
// implicit-flow token is final as-is and skips the network entirely;
// otherwise the authorization code is redeemed in a single round trip with
// no automatic retry. A backend-supplied api_url hint goes back through the
// trust gate before the credential is considered final.
func (h *Handshake) exchange(ctx context.Context, params CallbackParams) (*SessionCredential, error) {
	if params.AccessToken != "" {
		return &SessionCredential{
			AccessToken: params.AccessToken,
			DisplayName: params.Name,
			Email:       params.Email,
		}, nil
	}
	if params.Code == "" {
		return nil, errMissingCodeOrToken
	}

	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{
		"code":  params.Code,
		"state": params.State,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode exchange payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		h.api.Base()+exchangePath,
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read exchange response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errExchangeFailed
	}

	var tokenResp exchangeResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, errInvalidServerResponse
	}
	if tokenResp.AccessToken == "" {
		return nil, errMissingAccessToken
	}

	if tokenResp.APIUrl != "" {
		h.api.Adopt(tokenResp.APIUrl)
	}

	cred := &SessionCredential{
		AccessToken: tokenResp.AccessToken,
		DisplayName: tokenResp.Name,
		Email:       tokenResp.Email,
	}
	if cred.DisplayName == "" {
		cred.DisplayName = params.Name
	}
	if cred.Email == "" {
		cred.Email = params.Email
	}
	return cred, nil
}
