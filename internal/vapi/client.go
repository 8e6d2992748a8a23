package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"accountability_buddy/internal/metrics"
)

// DefaultBaseURL is the production platform endpoint.
const DefaultBaseURL = "https://api.vapi.ai"

// Client talks to the calling platform's REST API. It is a blocking,
// single-caller resource; one workflow run owns it for the whole invocation.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ListCalls returns call summaries, most recent first per platform behavior.
func (c *Client) ListCalls(ctx context.Context) ([]CallSummary, error) {
	metrics.IncCallsListed()
	var calls []CallSummary
	if err := c.do(ctx, http.MethodGet, "/call", nil, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}

// GetCall fetches the full detail for one call, including any artifact.
func (c *Client) GetCall(ctx context.Context, id string) (*Call, error) {
	metrics.IncDetailFetched()
	var call Call
	if err := c.do(ctx, http.MethodGet, "/call/"+id, nil, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

// CreateCall starts an outbound call. Fire-and-forget: the returned summary
// reflects the queued call, not its eventual result.
func (c *Client) CreateCall(ctx context.Context, assistantID, phoneNumberID, customerNumber string) (*CallSummary, error) {
	body := map[string]any{
		"assistantId":   assistantID,
		"phoneNumberId": phoneNumberID,
		"customer":      map[string]string{"number": customerNumber},
	}
	var call CallSummary
	if err := c.do(ctx, http.MethodPost, "/call", body, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

// UpdateAssistantPrompt replaces the assistant's system prompt so the evening
// assistant can be briefed with the morning goals before calling.
func (c *Client) UpdateAssistantPrompt(ctx context.Context, assistantID, provider, model, prompt string) error {
	body := map[string]any{
		"model": map[string]any{
			"provider": provider,
			"model":    model,
			"messages": []map[string]string{{"role": "system", "content": prompt}},
		},
	}
	return c.do(ctx, http.MethodPatch, "/assistant/"+assistantID, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("vapi: %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
