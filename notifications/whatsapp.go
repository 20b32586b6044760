package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"wellness-ops-backend/config"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

const (
	WhatsAppProviderTwilio      = "twilio"
	WhatsAppProviderBusinessAPI = "whatsapp_business_api"
)

// MessageCreator is the part of the Twilio REST client used here.
type MessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// FeedbackDispatcher sends the post-session feedback message over WhatsApp,
// falling back to SMS once when WhatsApp delivery fails.
type FeedbackDispatcher struct {
	cfg    config.WhatsAppConfig
	twilio MessageCreator
	http   *http.Client
	log    *slog.Logger
}

func NewFeedbackDispatcher(cfg config.WhatsAppConfig, log *slog.Logger) *FeedbackDispatcher {
	d := &FeedbackDispatcher{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
	if cfg.HasTwilioCredentials() {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
		d.twilio = client.Api
	}
	return d
}

// NewFeedbackDispatcherWith wires explicit clients.
func NewFeedbackDispatcherWith(cfg config.WhatsAppConfig, creator MessageCreator, client *http.Client, log *slog.Logger) *FeedbackDispatcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &FeedbackDispatcher{cfg: cfg, twilio: creator, http: client, log: log}
}

// E164 prefixes "+" to a phone number that lacks it.
func E164(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+" + phone
}

// SendFeedback delivers the feedback message for f to phone.
func (d *FeedbackDispatcher) SendFeedback(ctx context.Context, phone string, f Feedback) Result {
	if strings.TrimSpace(phone) == "" {
		return Result{Status: StatusSkipped}
	}
	body := FeedbackText(d.cfg.BrandName, f, d.cfg.FeedbackURL)
	to := E164(phone)

	if !d.cfg.Enabled {
		return d.sendSMS(ctx, to, body)
	}

	res := d.sendWhatsApp(ctx, to, body)
	if res.Delivered() {
		d.log.Info("feedback sent via whatsapp", "to", to, "message_id", res.MessageID)
		return res
	}
	if res.Status == StatusConfigError {
		d.log.Warn("whatsapp not configured", "provider", d.cfg.Provider, "error", res.Error())
	} else {
		d.log.Error("whatsapp delivery failed", "provider", d.cfg.Provider, "to", to, "error", res.Error())
	}

	return d.sendSMS(ctx, to, body)
}

func (d *FeedbackDispatcher) sendWhatsApp(ctx context.Context, to, body string) Result {
	switch d.cfg.Provider {
	case WhatsAppProviderTwilio:
		if d.twilio == nil {
			return failed(StatusConfigError, errors.New("twilio credentials not configured"))
		}
		params := &twilioApi.CreateMessageParams{}
		params.SetTo("whatsapp:" + to)
		params.SetFrom("whatsapp:" + E164(d.cfg.TwilioWhatsAppNumber))
		params.SetBody(body)
		return d.createMessage(ctx, params)
	case WhatsAppProviderBusinessAPI:
		if d.cfg.BusinessAPIToken == "" || d.cfg.BusinessPhoneID == "" {
			return failed(StatusConfigError, errors.New("whatsapp business api credentials not configured"))
		}
		return d.sendBusinessAPI(ctx, to, body)
	default:
		return failed(StatusConfigError, fmt.Errorf("unknown whatsapp provider %q", d.cfg.Provider))
	}
}

func (d *FeedbackDispatcher) sendBusinessAPI(ctx context.Context, to, body string) Result {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                strings.TrimPrefix(to, "+"),
		"type":              "text",
		"text":              map[string]string{"body": body},
	}
	url := strings.TrimRight(d.cfg.BusinessAPIBaseURL, "/") + "/" + d.cfg.BusinessPhoneID + "/messages"
	resp, respBody, err := postJSON(ctx, d.http, url, map[string]string{
		"Authorization": "Bearer " + d.cfg.BusinessAPIToken,
	}, payload)
	if err != nil {
		return failed(StatusException, err)
	}
	if resp.StatusCode != http.StatusOK {
		return failed(StatusFailed, statusError("whatsapp", resp, respBody))
	}

	var out struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return failed(StatusException, fmt.Errorf("whatsapp: decode response: %w", err))
	}
	var id string
	if len(out.Messages) > 0 {
		id = out.Messages[0].ID
	}
	return sent(id)
}

func (d *FeedbackDispatcher) sendSMS(ctx context.Context, to, body string) Result {
	if !d.cfg.SMSEnabled {
		return Result{Status: StatusSMSDisabled}
	}
	if d.twilio == nil || d.cfg.TwilioSMSNumber == "" {
		return failed(StatusConfigError, errors.New("twilio sms not configured"))
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(E164(d.cfg.TwilioSMSNumber))
	params.SetBody(body)

	res := d.createMessage(ctx, params)
	if !res.Delivered() {
		d.log.Error("sms delivery failed", "to", to, "error", res.Error())
		return res
	}
	d.log.Info("feedback sent via sms", "to", to, "message_id", res.MessageID)
	res.Status = StatusSentViaSMS
	return res
}

// createMessage bounds the blocking SDK call by the configured timeout.
func (d *FeedbackDispatcher) createMessage(ctx context.Context, params *twilioApi.CreateMessageParams) Result {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	type reply struct {
		msg *twilioApi.ApiV2010Message
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		msg, err := d.twilio.CreateMessage(params)
		ch <- reply{msg, err}
	}()

	select {
	case <-ctx.Done():
		return failed(StatusException, fmt.Errorf("twilio: %w", ctx.Err()))
	case r := <-ch:
		if r.err != nil {
			return failed(StatusFailed, r.err)
		}
		var sid string
		if r.msg != nil && r.msg.Sid != nil {
			sid = *r.msg.Sid
		}
		return sent(sid)
	}
}

func (d *FeedbackDispatcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.cfg.Timeout)
}
