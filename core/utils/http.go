package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// apiResponse is a read-through of an HTTP response body.
type apiResponse struct {
	Status int
	Body   []byte
}

// doJSON sends a request with an optional JSON body and returns the status
// and the full response body. Only transport failures are errors; status
// handling is left to the caller.
func doJSON(ctx context.Context, client *http.Client, method, url, token string, payload any) (*apiResponse, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	setAuth(req, token)

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &apiResponse{Status: resp.StatusCode, Body: respBody}, nil
}

// setAuth sets the Authorization header for a credential. "user:secret"
// credentials use Basic auth; anything else is a personal access token sent
// as a Bearer token.
func setAuth(req *http.Request, token string) {
	if token == "" {
		return
	}
	if strings.Contains(token, ":") {
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(token)))
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

func truncateBody(b []byte) string {
	const max = 512
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
