package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"wellness-ops-backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResendSender(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"re_123"}`))
	}))
	defer srv.Close()

	s := &ResendSender{APIKey: "re_key", From: "Ops <ops@example.com>", BaseURL: srv.URL, Client: srv.Client()}
	id, err := s.Send(context.Background(), EmailMessage{To: "a@example.com", Subject: "Hi", HTML: "<p>x</p>", Text: "x"})

	require.NoError(t, err)
	assert.Equal(t, "re_123", id)
	assert.Equal(t, "Ops <ops@example.com>", got["from"])
	assert.Equal(t, []interface{}{"a@example.com"}, got["to"])
}

func TestResendSender_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"bad from"}`))
	}))
	defer srv.Close()

	s := &ResendSender{APIKey: "k", BaseURL: srv.URL, Client: srv.Client()}
	_, err := s.Send(context.Background(), EmailMessage{To: "a@example.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=422")
}

func TestSendGridSender(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		w.Header().Set("X-Message-Id", "sg_1")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := &SendGridSender{APIKey: "k", FromEmail: "ops@example.com", BaseURL: srv.URL, Client: srv.Client()}
	id, err := s.Send(context.Background(), EmailMessage{To: "a@example.com", ToName: "A"})

	require.NoError(t, err)
	assert.Equal(t, "sg_1", id)
}

func TestSendGridSender_RejectsOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := &SendGridSender{APIKey: "k", BaseURL: srv.URL, Client: srv.Client()}
	_, err := s.Send(context.Background(), EmailMessage{To: "a@example.com"})
	assert.Error(t, err)
}

func TestSMTPSender(t *testing.T) {
	var addr string
	var raw []byte
	s := NewSMTPSender("smtp.example.com", "587", "", "", "ops@example.com")
	s.send = func(a string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		addr = a
		raw = msg
		return nil
	}

	_, err := s.Send(context.Background(), EmailMessage{To: "a@example.com", Subject: "Code", Text: "plain", HTML: "<b>rich</b>"})

	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", addr)
	assert.Contains(t, string(raw), "Subject: Code")
	assert.Contains(t, string(raw), "multipart/alternative")
	assert.Contains(t, string(raw), "<b>rich</b>")
}

func TestSMTPSender_EmptyRecipient(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", "587", "", "", "ops@example.com")
	_, err := s.Send(context.Background(), EmailMessage{To: " "})
	assert.Error(t, err)
}

func TestNewEmailSender(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.EmailConfig
		want    string
		wantErr bool
	}{
		{"resend", config.EmailConfig{Provider: "resend", ResendAPIKey: "k"}, ProviderResend, false},
		{"resend missing key", config.EmailConfig{Provider: "resend"}, "", true},
		{"sendgrid", config.EmailConfig{Provider: "sendgrid", SendGridAPIKey: "k"}, ProviderSendGrid, false},
		{"mailersend", config.EmailConfig{Provider: "mailersend", MailerSendAPIKey: "k"}, ProviderMailerSend, false},
		{"smtp", config.EmailConfig{Provider: "smtp", SMTPHost: "h", SMTPPort: "25"}, ProviderSMTP, false},
		{"log", config.EmailConfig{Provider: "log"}, ProviderLog, false},
		{"unknown", config.EmailConfig{Provider: "pigeon"}, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewEmailSender(tc.cfg, quietLogger())
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, s.Name())
		})
	}
}

type stubSender struct {
	id   string
	err  error
	sent []EmailMessage
}

func (s *stubSender) Name() string { return "stub" }

func (s *stubSender) Send(_ context.Context, msg EmailMessage) (string, error) {
	s.sent = append(s.sent, msg)
	return s.id, s.err
}

func TestMailer_Disabled(t *testing.T) {
	stub := &stubSender{id: "x"}
	m := NewMailerWithSender(config.EmailConfig{Enabled: false}, stub, quietLogger())

	res := m.SendOTP(context.Background(), "a@example.com", "Admin", "123456")

	assert.Equal(t, StatusDisabled, res.Status)
	assert.Empty(t, stub.sent)
}

func TestMailer_ConfigError(t *testing.T) {
	m := NewMailer(config.EmailConfig{Enabled: true, Provider: "resend"}, quietLogger())

	res := m.SendOTP(context.Background(), "a@example.com", "Admin", "123456")

	assert.Equal(t, StatusConfigError, res.Status)
	assert.False(t, res.Delivered())
	assert.Contains(t, res.Error(), "RESEND_API_KEY")
}

func TestMailer_SentAndFailed(t *testing.T) {
	cfg := config.EmailConfig{Enabled: true, FromName: "Serene Spa", Timeout: time.Second}

	ok := &stubSender{id: "msg-1"}
	res := NewMailerWithSender(cfg, ok, quietLogger()).SendOTP(context.Background(), "a@example.com", "Asha Rao", "654321")
	assert.Equal(t, StatusSent, res.Status)
	assert.Equal(t, "msg-1", res.MessageID)
	require.Len(t, ok.sent, 1)
	assert.Contains(t, ok.sent[0].HTML, "654321")
	assert.Contains(t, ok.sent[0].Text, "Hi Asha")
	assert.Contains(t, ok.sent[0].Subject, "Serene Spa")

	bad := &stubSender{err: errors.New("boom")}
	res = NewMailerWithSender(cfg, bad, quietLogger()).SendOTP(context.Background(), "a@example.com", "", "1")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "boom", res.Error())
}

func TestCredentialsEmail_EscapesHTML(t *testing.T) {
	cfg := config.EmailConfig{FromName: "Spa", PortalURL: "https://portal.example.com"}
	msg := credentialsEmail(cfg, "t@example.com", "<script>Eve</script> Doe", "eve123", "010190")

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "eve123")
	assert.Contains(t, msg.HTML, "010190")
	assert.Contains(t, msg.Text, "https://portal.example.com")
}

func TestFeedbackText(t *testing.T) {
	text := FeedbackText("Serene Spa", Feedback{CustomerName: "Ravi Kumar", TherapyType: "Balinese", PropertyName: "Palm Court"}, "https://f.example.com")
	assert.True(t, strings.HasPrefix(text, "Hi Ravi,"))
	assert.Contains(t, text, "Serene Spa at Palm Court")
	assert.Contains(t, text, "Balinese session")
	assert.Contains(t, text, "https://f.example.com")

	bare := FeedbackText("S", Feedback{}, "u")
	assert.True(t, strings.HasPrefix(bare, "Hi there,"))
	assert.Contains(t, bare, "choosing S!")
	assert.Contains(t, bare, "your session.")
}
