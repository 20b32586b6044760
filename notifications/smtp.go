package notifications

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender writes a multipart/alternative message through net/smtp.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	return &SMTPSender{
		Host:     strings.TrimSpace(host),
		Port:     strings.TrimSpace(port),
		Username: strings.TrimSpace(username),
		Password: password,
		From:     strings.TrimSpace(from),
		send:     smtp.SendMail,
	}
}

func (s *SMTPSender) Name() string { return ProviderSMTP }

func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	if s.Host == "" || s.Port == "" || s.From == "" {
		return "", fmt.Errorf("SMTP not configured")
	}
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return "", fmt.Errorf("empty recipient email")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var auth smtp.Auth
	if s.Username != "" && s.Password != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	addr := s.Host + ":" + s.Port
	return "", s.send(addr, auth, s.From, []string{to}, buildMIME(s.From, to, msg))
}

func buildMIME(from, to string, msg EmailMessage) []byte {
	var buf bytes.Buffer
	boundary := "alt-boundary"
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", msg.Text)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", msg.HTML)

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes()
}
