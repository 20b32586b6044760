package notifications

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mailersend/mailersend-go"
)

// MailerSendSender delivers through the MailerSend SDK.
type MailerSendSender struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSendSender(apiKey, fromName, fromEmail string) *MailerSendSender {
	return &MailerSendSender{
		client: mailersend.NewMailersend(apiKey),
		from:   mailersend.From{Name: fromName, Email: fromEmail},
	}
}

func (s *MailerSendSender) Name() string { return ProviderMailerSend }

func (s *MailerSendSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	m := s.client.Email.NewMessage()
	m.SetFrom(s.from)
	m.SetRecipients([]mailersend.Recipient{{Name: msg.ToName, Email: msg.To}})
	m.SetSubject(msg.Subject)
	if strings.TrimSpace(msg.Text) != "" {
		m.SetText(msg.Text)
	}
	if strings.TrimSpace(msg.HTML) != "" {
		m.SetHTML(msg.HTML)
	}

	res, err := s.client.Email.Send(ctx, m)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return res.Header.Get("X-Message-Id"), nil
}
