package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// EmailMessage carries both renderings of one email.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// EmailSender delivers one message through a provider and returns the
// provider's message id.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (string, error)
	Name() string
}

const (
	ProviderResend     = "resend"
	ProviderSendGrid   = "sendgrid"
	ProviderMailerSend = "mailersend"
	ProviderSMTP       = "smtp"
	ProviderLog        = "log"
)

func formatFrom(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload interface{}) (*http.Response, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp, nil, err
	}
	return resp, respBody, nil
}

func statusError(provider string, resp *http.Response, body []byte) error {
	return fmt.Errorf("%s error: status=%d body=%s", provider, resp.StatusCode, strings.TrimSpace(string(body)))
}

// ResendSender posts to the Resend emails API.
type ResendSender struct {
	APIKey  string
	From    string
	BaseURL string
	Client  *http.Client
}

func (s *ResendSender) Name() string { return ProviderResend }

func (s *ResendSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	payload := map[string]interface{}{
		"from":    s.From,
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
		"text":    msg.Text,
	}
	resp, body, err := postJSON(ctx, s.Client, s.BaseURL+"/emails", map[string]string{
		"Authorization": "Bearer " + s.APIKey,
	}, payload)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(ProviderResend, resp, body)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("resend: decode response: %w", err)
	}
	return out.ID, nil
}

// SendGridSender posts to the SendGrid v3 mail send API.
type SendGridSender struct {
	APIKey    string
	FromEmail string
	FromName  string
	BaseURL   string
	Client    *http.Client
}

func (s *SendGridSender) Name() string { return ProviderSendGrid }

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	to := map[string]string{"email": msg.To}
	if msg.ToName != "" {
		to["name"] = msg.ToName
	}
	payload := map[string]interface{}{
		"personalizations": []map[string]interface{}{{"to": []map[string]string{to}}},
		"from":             map[string]string{"email": s.FromEmail, "name": s.FromName},
		"subject":          msg.Subject,
		"content": []map[string]string{
			{"type": "text/plain", "value": msg.Text},
			{"type": "text/html", "value": msg.HTML},
		},
	}
	resp, body, err := postJSON(ctx, s.Client, s.BaseURL+"/v3/mail/send", map[string]string{
		"Authorization": "Bearer " + s.APIKey,
	}, payload)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusAccepted {
		return "", statusError(ProviderSendGrid, resp, body)
	}
	return resp.Header.Get("X-Message-Id"), nil
}
