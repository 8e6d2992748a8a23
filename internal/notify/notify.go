// Package notify posts a one-line run summary to an optional webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Message is the outbound summary payload.
type Message struct {
	Text string `json:"text"`
}

// Send posts the message to the webhook. A blank URL is a silent no-op so
// callers never have to branch on whether notifications are configured.
func Send(ctx context.Context, webhookURL string, msg Message) error {
	if webhookURL == "" {
		return nil
	}
	buf, _ := json.Marshal(msg)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook status %d", resp.StatusCode)
	}
	return nil
}
