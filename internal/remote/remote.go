// Package remote talks to a running chatmark service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lvrach/chatmark/internal/annotate"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

type payload struct {
	Text string `json:"text"`
}

// Client calls the compile endpoint of a chatmark service.
type Client struct {
	BaseURL string
	Token   string
}

// Compile sends text to the service and returns its result.
func (c Client) Compile(ctx context.Context, text string) (annotate.Result, error) {
	body, err := json.Marshal(payload{Text: text})
	if err != nil {
		return annotate.Result{}, fmt.Errorf("marshal payload: %w", err)
	}

	var res annotate.Result
	if err := c.do(ctx, http.MethodPost, "/v1/compile", bytes.NewReader(body), &res); err != nil {
		return annotate.Result{}, err
	}
	return res, nil
}

// Ping checks that the service is up.
func (c Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health/ready", nil, nil)
}

func (c Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chatmark returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
