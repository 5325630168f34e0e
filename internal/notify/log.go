package notify

import (
	"context"

	"github.com/angelmondragon/fastfood-backend/pkg/logger"
)

// LogNotifier writes messages to the structured log instead of sending them.
// It backs local development when SendGrid is not configured.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, bodyHTML string) error {
	address, err := ValidateAddress(to)
	if err != nil {
		return err
	}
	if n.logg != nil {
		ctx = n.logg.WithFields(ctx, map[string]any{
			"to":      address,
			"subject": subject,
			"body":    bodyHTML,
		})
		n.logg.Info(ctx, "notify.email_logged")
	}
	return nil
}
