package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wellness-ops-backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeTwilio struct {
	calls []twilioApi.CreateMessageParams
	// failWhatsApp makes every whatsapp: send fail.
	failWhatsApp bool
	failSMS      bool
	delay        time.Duration
}

func (f *fakeTwilio) CreateMessage(p *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.calls = append(f.calls, *p)
	isWhatsApp := p.To != nil && len(*p.To) > 9 && (*p.To)[:9] == "whatsapp:"
	if isWhatsApp && f.failWhatsApp {
		return nil, errors.New("whatsapp rejected")
	}
	if !isWhatsApp && f.failSMS {
		return nil, errors.New("sms rejected")
	}
	sid := "SM1"
	if isWhatsApp {
		sid = "WA1"
	}
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

var ravi = Feedback{CustomerName: "Ravi", TherapyType: "Swedish", PropertyName: "Palm Court"}

func twilioConfig() config.WhatsAppConfig {
	return config.WhatsAppConfig{
		Enabled:              true,
		Provider:             WhatsAppProviderTwilio,
		TwilioWhatsAppNumber: "+14155238886",
		TwilioSMSNumber:      "+15550001111",
		SMSEnabled:           true,
		BrandName:            "Serene Spa",
		FeedbackURL:          "https://f.example.com",
		Timeout:              time.Second,
	}
}

func TestE164(t *testing.T) {
	assert.Equal(t, "+919876543210", E164("919876543210"))
	assert.Equal(t, "+919876543210", E164("+919876543210"))
	assert.Equal(t, "", E164(" "))
}

func TestSendFeedback_TwilioWhatsApp(t *testing.T) {
	fake := &fakeTwilio{}
	d := NewFeedbackDispatcherWith(twilioConfig(), fake, nil, quietLogger())

	res := d.SendFeedback(context.Background(), "919876543210", ravi)

	assert.Equal(t, StatusSent, res.Status)
	assert.Equal(t, "WA1", res.MessageID)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "whatsapp:+919876543210", *fake.calls[0].To)
	assert.Equal(t, "whatsapp:+14155238886", *fake.calls[0].From)
	require.NotNil(t, fake.calls[0].Body)
	assert.Contains(t, *fake.calls[0].Body, "Serene Spa at Palm Court")
	assert.Contains(t, *fake.calls[0].Body, "Swedish session")
}

func TestSendFeedback_FallsBackToSMS(t *testing.T) {
	fake := &fakeTwilio{failWhatsApp: true}
	d := NewFeedbackDispatcherWith(twilioConfig(), fake, nil, quietLogger())

	res := d.SendFeedback(context.Background(), "+919876543210", ravi)

	assert.Equal(t, StatusSentViaSMS, res.Status)
	assert.Equal(t, "SM1", res.MessageID)
	require.Len(t, fake.calls, 2)
	assert.Equal(t, "+919876543210", *fake.calls[1].To)
	assert.Equal(t, "+15550001111", *fake.calls[1].From)
}

func TestSendFeedback_FallbackDisabled(t *testing.T) {
	cfg := twilioConfig()
	cfg.SMSEnabled = false
	fake := &fakeTwilio{failWhatsApp: true}
	d := NewFeedbackDispatcherWith(cfg, fake, nil, quietLogger())

	res := d.SendFeedback(context.Background(), "+919876543210", ravi)

	assert.Equal(t, StatusSMSDisabled, res.Status)
	assert.Len(t, fake.calls, 1)
}

func TestSendFeedback_BothFail(t *testing.T) {
	fake := &fakeTwilio{failWhatsApp: true, failSMS: true}
	d := NewFeedbackDispatcherWith(twilioConfig(), fake, nil, quietLogger())

	res := d.SendFeedback(context.Background(), "+919876543210", ravi)

	assert.Equal(t, StatusFailed, res.Status)
	assert.False(t, res.Delivered())
}

func TestSendFeedback_WhatsAppDisabledGoesStraightToSMS(t *testing.T) {
	cfg := twilioConfig()
	cfg.Enabled = false
	fake := &fakeTwilio{}
	d := NewFeedbackDispatcherWith(cfg, fake, nil, quietLogger())

	res := d.SendFeedback(context.Background(), "+919876543210", ravi)

	assert.Equal(t, StatusSentViaSMS, res.Status)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "+919876543210", *fake.calls[0].To)
}

func TestSendFeedback_NoCredentials(t *testing.T) {
	cfg := twilioConfig()
	cfg.SMSEnabled = false
	d := NewFeedbackDispatcherWith(cfg, nil, nil, quietLogger())

	res := d.SendFeedback(context.Background(), "+919876543210", ravi)
	assert.Equal(t, StatusSMSDisabled, res.Status)

	cfg.SMSEnabled = true
	d = NewFeedbackDispatcherWith(cfg, nil, nil, quietLogger())
	res = d.SendFeedback(context.Background(), "+919876543210", ravi)
	assert.Equal(t, StatusConfigError, res.Status)
}

func TestSendFeedback_EmptyPhone(t *testing.T) {
	d := NewFeedbackDispatcherWith(twilioConfig(), &fakeTwilio{}, nil, quietLogger())
	assert.Equal(t, StatusSkipped, d.SendFeedback(context.Background(), "", ravi).Status)
}

func TestSendFeedback_Timeout(t *testing.T) {
	cfg := twilioConfig()
	cfg.SMSEnabled = false
	cfg.Timeout = 10 * time.Millisecond
	fake := &fakeTwilio{delay: 200 * time.Millisecond}
	d := NewFeedbackDispatcherWith(cfg, fake, nil, quietLogger())

	start := time.Now()
	res := d.SendFeedback(context.Background(), "+919876543210", ravi)

	assert.Equal(t, StatusSMSDisabled, res.Status)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestSendFeedback_BusinessAPI(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/PHONE1/messages", r.URL.Path)
		assert.Equal(t, "Bearer wa_token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	cfg := twilioConfig()
	cfg.Provider = WhatsAppProviderBusinessAPI
	cfg.BusinessAPIToken = "wa_token"
	cfg.BusinessPhoneID = "PHONE1"
	cfg.BusinessAPIBaseURL = srv.URL
	d := NewFeedbackDispatcherWith(cfg, nil, srv.Client(), quietLogger())

	res := d.SendFeedback(context.Background(), "+919876543210", ravi)

	assert.Equal(t, StatusSent, res.Status)
	assert.Equal(t, "wamid.1", res.MessageID)
	assert.Equal(t, "whatsapp", got["messaging_product"])
	assert.Equal(t, "919876543210", got["to"])
	assert.Equal(t, "text", got["type"])
}

func TestSendFeedback_BusinessAPIErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := twilioConfig()
	cfg.Provider = WhatsAppProviderBusinessAPI
	cfg.BusinessAPIToken = "t"
	cfg.BusinessPhoneID = "P"
	cfg.BusinessAPIBaseURL = srv.URL
	fake := &fakeTwilio{}
	d := NewFeedbackDispatcherWith(cfg, fake, srv.Client(), quietLogger())

	res := d.SendFeedback(context.Background(), "+919876543210", ravi)

	assert.Equal(t, StatusSentViaSMS, res.Status)
	assert.Len(t, fake.calls, 1)
}

func TestSendFeedback_UnknownProvider(t *testing.T) {
	cfg := twilioConfig()
	cfg.Provider = "carrier-pigeon"
	cfg.SMSEnabled = false
	d := NewFeedbackDispatcherWith(cfg, &fakeTwilio{}, nil, quietLogger())

	res := d.SendFeedback(context.Background(), "+919876543210", ravi)
	assert.Equal(t, StatusSMSDisabled, res.Status)
}
