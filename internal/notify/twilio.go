package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/mkitchen/catering-backend/internal/orders"
	"github.com/mkitchen/catering-backend/pkg/config"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSNotifier texts the kitchen's notify number through Twilio.
type SMSNotifier struct {
	client messageCreator
	from   string
	to     string
}

// NewTwilioSMS builds an SMSNotifier from configuration.
func NewTwilioSMS(cfg config.TwilioConfig) (*SMSNotifier, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" || strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, errors.New("twilio account sid and auth token are required")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return NewSMSNotifier(client.Api, cfg)
}

// NewSMSNotifier wires an arbitrary Twilio-compatible message API.
func NewSMSNotifier(client messageCreator, cfg config.TwilioConfig) (*SMSNotifier, error) {
	if client == nil {
		return nil, errors.New("twilio client is required")
	}
	if strings.TrimSpace(cfg.FromNumber) == "" || strings.TrimSpace(cfg.NotifyNumber) == "" {
		return nil, errors.New("twilio from and notify numbers are required")
	}
	return &SMSNotifier{client: client, from: cfg.FromNumber, to: cfg.NotifyNumber}, nil
}

// Send creates the message. The Twilio client takes no context; callers bound
// the call with WithTimeout.
func (n *SMSNotifier) Send(_ context.Context, rec *orders.Record) Result {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.to)
	params.SetFrom(n.from)
	params.SetBody(SMSBody(rec))

	msg, err := n.client.CreateMessage(params)
	if err != nil {
		return Failed(fmt.Errorf("twilio: %w", err))
	}
	res := Result{Success: true}
	if msg != nil && msg.Sid != nil {
		res.ProviderID = *msg.Sid
	}
	return res
}
