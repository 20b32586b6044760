package notifications

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogSender only logs messages. It backs local development.
type LogSender struct {
	Log *slog.Logger
}

func (s *LogSender) Name() string { return ProviderLog }

func (s *LogSender) Send(_ context.Context, msg EmailMessage) (string, error) {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("email logged instead of sent", "to", msg.To, "subject", msg.Subject, "text", msg.Text)
	return "log-" + uuid.NewString(), nil
}
