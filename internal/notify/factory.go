package notify

import (
	"fmt"
	"strings"

	"github.com/mkitchen/catering-backend/pkg/config"
	"github.com/mkitchen/catering-backend/pkg/enums"
	"github.com/mkitchen/catering-backend/pkg/logger"
)

const (
	DriverLog      = "log"
	DriverSendgrid = "sendgrid"
	DriverTwilio   = "twilio"
)

// Pair is the email and SMS notifier used by checkout.
type Pair struct {
	Email Notifier
	SMS   Notifier
}

// FromConfig builds both notifiers, each bounded by the checkout notification
// timeout and instrumented with metrics.
func FromConfig(cfg *config.Config, metrics notificationRecorder, logg *logger.Logger) (Pair, error) {
	var email Notifier
	switch strings.ToLower(strings.TrimSpace(cfg.Sendgrid.Driver)) {
	case DriverSendgrid:
		n, err := NewSendgridEmail(cfg.Sendgrid)
		if err != nil {
			return Pair{}, fmt.Errorf("email notifier: %w", err)
		}
		email = n
	case DriverLog, "":
		email = NewLogNotifier(enums.NotificationChannelEmail, logg)
	default:
		return Pair{}, fmt.Errorf("unknown email driver %q", cfg.Sendgrid.Driver)
	}

	var sms Notifier
	switch strings.ToLower(strings.TrimSpace(cfg.Twilio.Driver)) {
	case DriverTwilio:
		n, err := NewTwilioSMS(cfg.Twilio)
		if err != nil {
			return Pair{}, fmt.Errorf("sms notifier: %w", err)
		}
		sms = n
	case DriverLog, "":
		sms = NewLogNotifier(enums.NotificationChannelSMS, logg)
	default:
		return Pair{}, fmt.Errorf("unknown sms driver %q", cfg.Twilio.Driver)
	}

	timeout := cfg.Checkout.NotificationTimeout
	return Pair{
		Email: Instrumented(enums.NotificationChannelEmail, WithTimeout(email, timeout), metrics, logg),
		SMS:   Instrumented(enums.NotificationChannelSMS, WithTimeout(sms, timeout), metrics, logg),
	}, nil
}
