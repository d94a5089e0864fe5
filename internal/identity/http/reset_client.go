package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ResetClient asks the identity provider to email a reset-credential code.
type ResetClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

func NewResetClient(url, apiKey string, timeout time.Duration) *ResetClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ResetClient{
		url:        url,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type resetRequest struct {
	Strategy   string `json:"strategy"`
	Identifier string `json:"identifier"`
}

func (c *ResetClient) StartCredentialReset(ctx context.Context, email string) error {
	if c.url == "" {
		return fmt.Errorf("identity reset url is not configured")
	}

	jsonData, err := json.Marshal(resetRequest{Strategy: "reset_password_email_code", Identifier: email})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
