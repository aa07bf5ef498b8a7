// Package mail sends transactional email through an HTTP mail API.
// Delivery is best-effort: membership writes are authoritative whether or not
// the notification goes out.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultTimeout = 15 * time.Second

// sendTimeout bounds a single async send so a slow mail API cannot pile up
// goroutines.
const sendTimeout = 10 * time.Second

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// APIClient sends mail via a JSON mail API (e.g. a hosted transactional mail
// service). The payload shape is fixed; templating is out of scope.
type APIClient struct {
	APIKey     string
	BaseURL    string
	From       string
	HTTPClient *http.Client
}

// NewAPIClient returns a client that uses the given API key, base URL, and
// sender address.
func NewAPIClient(apiKey, baseURL, from string) *APIClient {
	return &APIClient{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		From:       from,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Send posts the message to the mail API. Returns an error on any non-200
// response; never logs message bodies.
func (c *APIClient) Send(ctx context.Context, msg Message) error {
	if c.APIKey == "" {
		return fmt.Errorf("mail: API key not configured")
	}
	body := map[string]interface{}{
		"from":    c.From,
		"to":      msg.To,
		"subject": msg.Subject,
		"text":    msg.Body,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}

// SendAsync delivers msg in a goroutine so the caller is never blocked on the
// mail API. Errors are logged, never returned; the goroutine uses a fresh
// context so request cancellation does not abort an in-flight send.
func SendAsync(sender Sender, msg Message, log logrus.FieldLogger) {
	if sender == nil {
		return
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := sender.Send(ctx, msg); err != nil {
			log.WithError(err).Warnf("mail: async send to %s failed", msg.To)
		}
	}()
}

// NopSender discards messages. Used when no mail API is configured.
type NopSender struct{}

func (NopSender) Send(context.Context, Message) error { return nil }
