// Package notify delivers best-effort staff alerts for placed orders. A
// notifier reports failure in its Result; it never returns an error or panics
// into the caller.
package notify

import (
	"context"

	"github.com/mkitchen/catering-backend/internal/orders"
)

// Result is the outcome of one delivery attempt.
type Result struct {
	Success    bool
	Error      string
	ProviderID string
}

// Failed builds an unsuccessful Result.
func Failed(err error) Result {
	if err == nil {
		return Result{Success: false, Error: "unknown error"}
	}
	return Result{Success: false, Error: err.Error()}
}

// Notifier sends one alert for a placed order.
type Notifier interface {
	Send(ctx context.Context, rec *orders.Record) Result
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, rec *orders.Record) Result

func (f Func) Send(ctx context.Context, rec *orders.Record) Result {
	return f(ctx, rec)
}
