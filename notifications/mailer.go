package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"wellness-ops-backend/config"
)

const (
	resendBaseURL   = "https://api.resend.com"
	sendGridBaseURL = "https://api.sendgrid.com"
)

// NewEmailSender builds the sender named by cfg.Provider. It returns an error
// when the provider is unknown or its credentials are missing.
func NewEmailSender(cfg config.EmailConfig, log *slog.Logger) (EmailSender, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Provider {
	case ProviderResend:
		if cfg.ResendAPIKey == "" {
			return nil, errors.New("RESEND_API_KEY not configured")
		}
		return &ResendSender{
			APIKey:  cfg.ResendAPIKey,
			From:    formatFrom(cfg.FromName, cfg.FromEmail),
			BaseURL: resendBaseURL,
			Client:  client,
		}, nil
	case ProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, errors.New("SENDGRID_API_KEY not configured")
		}
		return &SendGridSender{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
			BaseURL:   sendGridBaseURL,
			Client:    client,
		}, nil
	case ProviderMailerSend:
		if cfg.MailerSendAPIKey == "" {
			return nil, errors.New("MAILERSEND_API_KEY not configured")
		}
		return NewMailerSendSender(cfg.MailerSendAPIKey, cfg.FromName, cfg.FromEmail), nil
	case ProviderSMTP:
		if cfg.SMTPHost == "" {
			return nil, errors.New("SMTP_HOST not configured")
		}
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword,
			formatFrom(cfg.FromName, cfg.FromEmail)), nil
	case ProviderLog:
		return &LogSender{Log: log}, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// Mailer renders the application's emails and hands them to an EmailSender.
type Mailer struct {
	cfg     config.EmailConfig
	sender  EmailSender
	initErr error
	log     *slog.Logger
}

// NewMailer builds the sender from cfg. A sender that cannot be built is
// reported as config_error on every send instead of failing startup.
func NewMailer(cfg config.EmailConfig, log *slog.Logger) *Mailer {
	m := &Mailer{cfg: cfg, log: log}
	if cfg.Enabled {
		m.sender, m.initErr = NewEmailSender(cfg, log)
		if m.initErr != nil {
			log.Warn("email sender not configured", "provider", cfg.Provider, "error", m.initErr)
		}
	}
	return m
}

// NewMailerWithSender wires an explicit sender, bypassing provider selection.
func NewMailerWithSender(cfg config.EmailConfig, sender EmailSender, log *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, sender: sender, log: log}
}

// Send delivers msg once. Failures are logged and returned in the Result.
func (m *Mailer) Send(ctx context.Context, msg EmailMessage) Result {
	if !m.cfg.Enabled {
		return Result{Status: StatusDisabled}
	}
	if m.sender == nil {
		err := m.initErr
		if err == nil {
			err = errors.New("email sender not configured")
		}
		return failed(StatusConfigError, err)
	}

	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	id, err := m.sender.Send(ctx, msg)
	if err != nil {
		m.log.Error("email delivery failed", "provider", m.sender.Name(), "to", msg.To, "subject", msg.Subject, "error", err)
		return failed(StatusFailed, err)
	}
	m.log.Info("email sent", "provider", m.sender.Name(), "to", msg.To, "message_id", id)
	return sent(id)
}

// SendTherapistCredentials mails login details to a newly onboarded therapist.
func (m *Mailer) SendTherapistCredentials(ctx context.Context, to, name, username, password string) Result {
	return m.Send(ctx, credentialsEmail(m.cfg, to, name, username, password))
}

// SendOTP mails a password-reset code.
func (m *Mailer) SendOTP(ctx context.Context, to, name, code string) Result {
	return m.Send(ctx, otpEmail(m.cfg, to, name, code))
}

// SendFeedbackRequest asks a customer to rate their session.
func (m *Mailer) SendFeedbackRequest(ctx context.Context, to, customerName, therapyType, feedbackURL string) Result {
	return m.Send(ctx, feedbackEmail(m.cfg, to, customerName, therapyType, feedbackURL))
}
