package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/mkitchen/catering-backend/internal/orders"
	"github.com/mkitchen/catering-backend/pkg/enums"
	"github.com/mkitchen/catering-backend/pkg/logger"
)

type notificationRecorder interface {
	IncNotification(channel string, success bool)
}

// safeSend converts a panicking notifier into a failed Result.
func safeSend(ctx context.Context, n Notifier, rec *orders.Record) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Failed(fmt.Errorf("notifier panic: %v", r))
		}
	}()
	return n.Send(ctx, rec)
}

type timeoutNotifier struct {
	next    Notifier
	timeout time.Duration
}

// WithTimeout bounds each Send. A call that outlives the timeout is reported
// as failed; its goroutine is left to finish against a private copy of the
// record. A non-positive timeout disables the bound.
func WithTimeout(next Notifier, timeout time.Duration) Notifier {
	return &timeoutNotifier{next: next, timeout: timeout}
}

func (t *timeoutNotifier) Send(ctx context.Context, rec *orders.Record) Result {
	if t.timeout <= 0 {
		return safeSend(ctx, t.next, rec)
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	snapshot := *rec
	done := make(chan Result, 1)
	go func() {
		done <- safeSend(ctx, t.next, &snapshot)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return Failed(fmt.Errorf("notification timed out after %s: %w", t.timeout, ctx.Err()))
	}
}

type instrumented struct {
	channel enums.NotificationChannel
	next    Notifier
	metrics notificationRecorder
	logg    *logger.Logger
}

// Instrumented counts and logs every attempt on channel.
func Instrumented(channel enums.NotificationChannel, next Notifier, metrics notificationRecorder, logg *logger.Logger) Notifier {
	if logg == nil {
		logg = logger.Nop()
	}
	return &instrumented{channel: channel, next: next, metrics: metrics, logg: logg}
}

func (i *instrumented) Send(ctx context.Context, rec *orders.Record) Result {
	start := time.Now()
	res := safeSend(ctx, i.next, rec)

	if i.metrics != nil {
		i.metrics.IncNotification(i.channel.String(), res.Success)
	}
	ctx = i.logg.WithFields(ctx, map[string]any{
		"channel":     i.channel.String(),
		"order_id":    rec.ID,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if res.Success {
		i.logg.Info(i.logg.WithField(ctx, "provider_id", res.ProviderID), "order notification sent")
	} else {
		i.logg.Warn(i.logg.WithField(ctx, "error", res.Error), "order notification failed")
	}
	return res
}
