// Package notifications delivers email, WhatsApp and SMS messages. Every
// dispatch returns a Result; none of them return an error to the caller.
package notifications

// Delivery status tags persisted on the triggering record.
const (
	StatusSent        = "sent"
	StatusSentViaSMS  = "sent_via_sms"
	StatusFailed      = "failed"
	StatusDisabled    = "disabled"
	StatusSMSDisabled = "sms_disabled"
	StatusConfigError = "config_error"
	StatusException   = "exception"
	StatusSkipped     = "skipped"
)

// Result is the outcome of one dispatch.
type Result struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id,omitempty"`
	Err       error  `json:"-"`
}

// Delivered reports whether any channel accepted the message.
func (r Result) Delivered() bool {
	return r.Status == StatusSent || r.Status == StatusSentViaSMS
}

// Error returns the failure text, or "" when delivered.
func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

func sent(id string) Result { return Result{Status: StatusSent, MessageID: id} }

func failed(status string, err error) Result { return Result{Status: status, Err: err} }
