package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkitchen/catering-backend/internal/orders"
	"github.com/mkitchen/catering-backend/pkg/enums"
	"github.com/mkitchen/catering-backend/pkg/logger"
)

// LogNotifier writes the rendered message to the log instead of sending it.
// Used in development and when a provider is not configured.
type LogNotifier struct {
	channel enums.NotificationChannel
	logg    *logger.Logger
}

func NewLogNotifier(channel enums.NotificationChannel, logg *logger.Logger) *LogNotifier {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogNotifier{channel: channel, logg: logg}
}

func (n *LogNotifier) Send(ctx context.Context, rec *orders.Record) Result {
	body := SMSBody(rec)
	if n.channel == enums.NotificationChannelEmail {
		body = EmailText(rec)
	}
	ctx = n.logg.WithFields(ctx, map[string]any{
		"channel":  n.channel.String(),
		"order_id": rec.ID,
		"body":     body,
	})
	n.logg.Info(ctx, "order notification (log driver)")
	return Result{Success: true, ProviderID: "log-" + uuid.NewString()}
}
