package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/fastfood-backend/pkg/config"
	"github.com/angelmondragon/fastfood-backend/pkg/logger"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendgridNotifier delivers through the SendGrid v3 mail API.
type SendgridNotifier struct {
	client  sendClient
	from    *mail.Email
	timeout time.Duration
	logg    *logger.Logger
}

// NewSendgridNotifier builds a notifier from config. The API key and sender
// address are required.
func NewSendgridNotifier(cfg config.SendgridConfig, logg *logger.Logger) (*SendgridNotifier, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("sendgrid api key and from email are required")
	}
	return newSendgridNotifier(sendgrid.NewSendClient(cfg.APIKey), cfg, logg), nil
}

func newSendgridNotifier(client sendClient, cfg config.SendgridConfig, logg *logger.Logger) *SendgridNotifier {
	return &SendgridNotifier{
		client:  client,
		from:    mail.NewEmail(cfg.FromName, cfg.DefaultFrom),
		timeout: cfg.Timeout,
		logg:    logg,
	}
}

func (n *SendgridNotifier) Send(ctx context.Context, to, subject, bodyHTML string) error {
	address, err := ValidateAddress(to)
	if err != nil {
		return err
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	message := mail.NewSingleEmail(n.from, subject, mail.NewEmail("", address), "", bodyHTML)
	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
	}
	if resp.StatusCode >= 300 {
		if n.logg != nil {
			logCtx := n.logg.WithFields(ctx, map[string]any{
				"status_code": resp.StatusCode,
				"body":        resp.Body,
			})
			n.logg.Warn(logCtx, "sendgrid.rejected")
		}
		return fmt.Errorf("%w: sendgrid status %d", ErrDeliveryFailure, resp.StatusCode)
	}
	return nil
}
