package notifications

import (
	"fmt"
	"html"
	"strings"

	"wellness-ops-backend/config"
)

const buttonStyle = `display:inline-block;padding:12px 24px;background:#2f855a;color:#ffffff;text-decoration:none;border-radius:8px;font-weight:bold;`

func firstName(name, fallback string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return fallback
	}
	return fields[0]
}

func brand(cfg config.EmailConfig) string {
	if cfg.FromName != "" {
		return cfg.FromName
	}
	return "Wellness Operations"
}

func credentialsEmail(cfg config.EmailConfig, to, name, username, password string) EmailMessage {
	b := brand(cfg)
	first := firstName(name, "there")
	subject := fmt.Sprintf("Your %s therapist account", b)

	body := fmt.Sprintf(`<h2>Welcome to %s!</h2>
<p>Hi %s,</p>
<p>Your therapist account has been created. Use these details to sign in:</p>
<div style="background:#f5f5f5;padding:15px;border-radius:8px;margin:20px 0;">
<p style="margin:5px 0;"><strong>Username:</strong> %s</p>
<p style="margin:5px 0;"><strong>Email:</strong> %s</p>
<p style="margin:5px 0;"><strong>Password:</strong> %s</p>
</div>
<p><a href="%s" style="%s">Open the portal</a></p>
<p>Your password is your date of birth in DDMMYY format unless your manager set a different one.</p>
<p>The %s Team</p>`,
		html.EscapeString(b), html.EscapeString(first), html.EscapeString(username),
		html.EscapeString(to), html.EscapeString(password), cfg.PortalURL, buttonStyle, html.EscapeString(b))

	text := fmt.Sprintf("Welcome to %s!\n\nHi %s,\n\nYour therapist account has been created.\nUsername: %s\nEmail: %s\nPassword: %s\n\nSign in at %s\n\nThe %s Team\n",
		b, first, username, to, password, cfg.PortalURL, b)

	return EmailMessage{To: to, ToName: name, Subject: subject, HTML: body, Text: text}
}

func otpEmail(cfg config.EmailConfig, to, name, code string) EmailMessage {
	b := brand(cfg)
	first := firstName(name, "Admin")
	subject := fmt.Sprintf("Your %s password reset code", b)

	body := fmt.Sprintf(`<h2>Password Reset</h2>
<p>Hi %s,</p>
<p>Your one-time code is:</p>
<p style="font-size:28px;letter-spacing:6px;font-weight:bold;">%s</p>
<p>This code expires in 10 minutes. If you didn't request it, you can ignore this email.</p>
<p>The %s Team</p>`, html.EscapeString(first), html.EscapeString(code), html.EscapeString(b))

	text := fmt.Sprintf("Hi %s,\n\nYour one-time code is %s. It expires in 10 minutes.\n\nThe %s Team\n", first, code, b)

	return EmailMessage{To: to, ToName: name, Subject: subject, HTML: body, Text: text}
}

func feedbackEmail(cfg config.EmailConfig, to, customerName, therapyType, feedbackURL string) EmailMessage {
	b := brand(cfg)
	first := firstName(customerName, "there")
	subject := fmt.Sprintf("How was your %s session?", therapyType)

	body := fmt.Sprintf(`<h2>Thank you for visiting %s!</h2>
<p>Hi %s,</p>
<p>We hope you enjoyed your <strong>%s</strong> session. We'd love to hear how it went.</p>
<p><a href="%s" style="%s">Share your feedback</a></p>
<p>The %s Team</p>`,
		html.EscapeString(b), html.EscapeString(first), html.EscapeString(therapyType),
		feedbackURL, buttonStyle, html.EscapeString(b))

	text := fmt.Sprintf("Hi %s,\n\nThank you for choosing %s for your %s session. Share your feedback: %s\n\nThe %s Team\n",
		first, b, therapyType, feedbackURL, b)

	return EmailMessage{To: to, ToName: customerName, Subject: subject, HTML: body, Text: text}
}

// Feedback describes the session a customer is asked to rate.
type Feedback struct {
	CustomerName string
	TherapyType  string
	PropertyName string
}

// FeedbackText is the WhatsApp and SMS body sent after a session.
func FeedbackText(brandName string, f Feedback, feedbackURL string) string {
	place := brandName
	if f.PropertyName != "" {
		place = brandName + " at " + f.PropertyName
	}
	session := "session"
	if f.TherapyType != "" {
		session = f.TherapyType + " session"
	}
	return fmt.Sprintf("Hi %s, thank you for choosing %s! We hope you enjoyed your %s. Please share your feedback: %s",
		firstName(f.CustomerName, "there"), place, session, feedbackURL)
}
