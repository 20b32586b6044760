package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Admin     AdminConfig
	Email     EmailConfig
	WhatsApp  WhatsAppConfig
	Storage   StorageConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	CORSOrigins []string
}

func (s ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AdminConfig seeds the bootstrap administrator account.
type AdminConfig struct {
	Email    string
	Username string
	Password string
	Name     string
}

type EmailConfig struct {
	Enabled          bool
	Provider         string // resend, sendgrid, mailersend, smtp, log
	FromEmail        string
	FromName         string
	ResendAPIKey     string
	SendGridAPIKey   string
	MailerSendAPIKey string
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	PortalURL        string
	Timeout          time.Duration
}

type WhatsAppConfig struct {
	Enabled              bool
	Provider             string // twilio, whatsapp_business_api
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string
	TwilioSMSNumber      string
	SMSEnabled           bool
	BusinessAPIToken     string
	BusinessPhoneID      string
	BusinessAPIBaseURL   string
	FeedbackURL          string
	BrandName            string
	Timeout              time.Duration
}

func (w WhatsAppConfig) HasTwilioCredentials() bool {
	return w.TwilioAccountSID != "" && w.TwilioAuthToken != ""
}

type StorageConfig struct {
	Bucket      string
	Credentials string
}

type SchedulerConfig struct {
	Enabled            bool
	OTPPurgeSpec       string
	MonthlyClosingSpec string
}

func LoadEnv() error {
	// A missing .env is normal in production, where variables come from the host.
	_ = godotenv.Load()
	return nil
}

// ValidateEnv checks that critical environment variables are set.
// Missing optional provider settings only produce warnings.
func ValidateEnv() error {
	var missing []string

	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if os.Getenv("DATABASE_URL") == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	if GetBool("EMAIL_ENABLED", false) {
		switch GetEnv("EMAIL_PROVIDER", "resend") {
		case "resend":
			warnIfEmpty("RESEND_API_KEY", "emails will not be delivered")
		case "sendgrid":
			warnIfEmpty("SENDGRID_API_KEY", "emails will not be delivered")
		case "mailersend":
			warnIfEmpty("MAILERSEND_API_KEY", "emails will not be delivered")
		case "smtp":
			warnIfEmpty("SMTP_HOST", "emails will not be delivered")
		}
	}
	if GetBool("WHATSAPP_ENABLED", false) || GetBool("SMS_ENABLED", false) {
		warnIfEmpty("TWILIO_ACCOUNT_SID", "WhatsApp and SMS feedback will fail")
		warnIfEmpty("TWILIO_AUTH_TOKEN", "WhatsApp and SMS feedback will fail")
	}
	warnIfEmpty("FIREBASE_STORAGE_BUCKET", "therapist document uploads will fail")
	warnIfEmpty("FRONTEND_URL", "CORS falls back to localhost")

	return nil
}

func warnIfEmpty(key, consequence string) {
	if os.Getenv(key) == "" {
		slog.Warn("environment variable not set", "key", key, "effect", consequence)
	}
}

// Load builds the process configuration once. It is passed by reference to
// every component that needs provider settings.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        GetEnv("PORT", "8080"),
			Env:         GetEnv("APP_ENV", "production"),
			CORSOrigins: splitList(os.Getenv("FRONTEND_URL"), os.Getenv("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    GetInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    GetInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(GetInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)) * time.Minute,
		},
		Admin: AdminConfig{
			Email:    GetEnv("ADMIN_EMAIL", "admin@wellness-ops.local"),
			Username: GetEnv("ADMIN_USERNAME", "admin"),
			Password: GetEnv("ADMIN_PASSWORD", "admin123"),
			Name:     GetEnv("ADMIN_NAME", "Administrator"),
		},
		Email: EmailConfig{
			Enabled:          GetBool("EMAIL_ENABLED", false),
			Provider:         GetEnv("EMAIL_PROVIDER", "resend"),
			FromEmail:        GetEnv("FROM_EMAIL", "noreply@wellness-ops.local"),
			FromName:         GetEnv("FROM_NAME", "Wellness Operations"),
			ResendAPIKey:     os.Getenv("RESEND_API_KEY"),
			SendGridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
			MailerSendAPIKey: os.Getenv("MAILERSEND_API_KEY"),
			SMTPHost:         os.Getenv("SMTP_HOST"),
			SMTPPort:         GetEnv("SMTP_PORT", "587"),
			SMTPUsername:     os.Getenv("SMTP_USERNAME"),
			SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
			PortalURL:        GetEnv("PORTAL_URL", "http://localhost:3000"),
			Timeout:          10 * time.Second,
		},
		WhatsApp: WhatsAppConfig{
			Enabled:              GetBool("WHATSAPP_ENABLED", false),
			Provider:             GetEnv("WHATSAPP_PROVIDER", "twilio"),
			TwilioAccountSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
			TwilioAuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
			TwilioWhatsAppNumber: GetEnv("TWILIO_WHATSAPP_NUMBER", "+14155238886"),
			TwilioSMSNumber:      os.Getenv("TWILIO_SMS_NUMBER"),
			SMSEnabled:           GetBool("SMS_ENABLED", false),
			BusinessAPIToken:     os.Getenv("WHATSAPP_API_TOKEN"),
			BusinessPhoneID:      os.Getenv("WHATSAPP_PHONE_ID"),
			BusinessAPIBaseURL:   GetEnv("WHATSAPP_API_BASE_URL", "https://graph.facebook.com/v18.0"),
			FeedbackURL:          GetEnv("FEEDBACK_URL", "http://localhost:3000/feedback"),
			BrandName:            GetEnv("BRAND_NAME", "Wellness Operations"),
			Timeout:              10 * time.Second,
		},
		Storage: StorageConfig{
			Bucket:      os.Getenv("FIREBASE_STORAGE_BUCKET"),
			Credentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		},
		Scheduler: SchedulerConfig{
			Enabled:            GetBool("SCHEDULER_ENABLED", true),
			OTPPurgeSpec:       GetEnv("OTP_PURGE_CRON", "0 * * * *"),
			MonthlyClosingSpec: GetEnv("MONTHLY_CLOSING_CRON", "30 0 1 * *"),
		},
	}
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return value
}

func GetInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
