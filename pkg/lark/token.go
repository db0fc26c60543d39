package lark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const tokenPath = "/open-apis/auth/v3/tenant_access_token/internal"

type tokenResponse struct {
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
}

// tenantAccessToken exchanges app credentials for a tenant access token.
// Tokens are short-lived and never cached here: each elevated operation
// re-exchanges its own.
func (b *Bot) tenantAccessToken(ctx context.Context) (string, error) {
	if b.appID == "" || b.appSecret == "" {
		return "", ErrMissingCredentials
	}

	body, err := json.Marshal(map[string]string{
		"app_id":     b.appID,
		"app_secret": b.appSecret,
	})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+tokenPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Op: "get tenant token", Err: err}
	}
	defer resp.Body.Close()

	var result tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &TransportError{Op: "decode token response", Err: err}
	}
	if result.Msg != "ok" {
		return "", &AuthError{Msg: result.Msg}
	}
	return result.TenantAccessToken, nil
}
