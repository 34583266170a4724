package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/mkitchen/catering-backend/internal/orders"
	"github.com/mkitchen/catering-backend/pkg/config"
)

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// EmailNotifier emails the kitchen admin through SendGrid. Replies go to the
// customer.
type EmailNotifier struct {
	client mailSender
	from   *mail.Email
	to     *mail.Email
}

// NewSendgridEmail builds an EmailNotifier from configuration.
func NewSendgridEmail(cfg config.SendgridConfig) (*EmailNotifier, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	return NewEmailNotifier(sendgrid.NewSendClient(cfg.APIKey), cfg)
}

// NewEmailNotifier wires an arbitrary SendGrid-compatible client.
func NewEmailNotifier(client mailSender, cfg config.SendgridConfig) (*EmailNotifier, error) {
	if client == nil {
		return nil, errors.New("mail client is required")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" || strings.TrimSpace(cfg.AdminEmail) == "" {
		return nil, errors.New("sender and admin email are required")
	}
	return &EmailNotifier{
		client: client,
		from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
		to:     mail.NewEmail(cfg.AdminName, cfg.AdminEmail),
	}, nil
}

func (n *EmailNotifier) Send(ctx context.Context, rec *orders.Record) Result {
	html, err := EmailHTML(rec)
	if err != nil {
		return Failed(err)
	}
	msg := mail.NewSingleEmail(n.from, EmailSubject(rec), n.to, EmailText(rec), html)
	if rec.Customer.Email != "" {
		msg.SetReplyTo(mail.NewEmail(rec.Customer.FullName(), rec.Customer.Email))
	}

	resp, err := n.client.SendWithContext(ctx, msg)
	if err != nil {
		return Failed(fmt.Errorf("sendgrid: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Failed(fmt.Errorf("sendgrid rejected message: status %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body)))
	}
	return Result{Success: true, ProviderID: firstHeader(resp.Headers, "X-Message-Id")}
}

func firstHeader(headers map[string][]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}
