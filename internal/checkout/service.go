package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mkitchen/catering-backend/internal/cart"
	"github.com/mkitchen/catering-backend/internal/checkout/helpers"
	"github.com/mkitchen/catering-backend/internal/notify"
	"github.com/mkitchen/catering-backend/internal/orders"
	rules "github.com/mkitchen/catering-backend/pkg/checkout"
	"github.com/mkitchen/catering-backend/pkg/enums"
	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
	"github.com/mkitchen/catering-backend/pkg/lock"
	"github.com/mkitchen/catering-backend/pkg/logger"
	"github.com/mkitchen/catering-backend/pkg/metrics"
)

const (
	defaultLockTTL = 2 * time.Minute
	persistFailure = "We could not save your order. Nothing was charged and your cart is unchanged. Please try again."
)

type cartAccess interface {
	Get(ctx context.Context, sessionID string) (cart.Snapshot, error)
	ConsumePlaced(ctx context.Context, sessionID string, placed cart.Snapshot) error
}

type orderSaver interface {
	Save(ctx context.Context, rec *orders.Record) error
}

type placementRecorder interface {
	ObservePlacement(outcome string, duration time.Duration)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Flows   Repository
	Carts   cartAccess
	Orders  orderSaver
	Locks   lock.Factory
	Email   notify.Notifier
	SMS     notify.Notifier
	Metrics placementRecorder
	Logger  *logger.Logger
	LockTTL time.Duration
	Clock   func() time.Time
	NewID   func(time.Time) string
}

// View is the checkout flow plus a pricing preview of the live cart.
type View struct {
	Flow
	Pricing   rules.Pricing `json:"pricing"`
	ItemCount int           `json:"itemCount"`
}

// Confirmation is returned by a successful placement.
type Confirmation struct {
	OrderID string                    `json:"orderId"`
	Email   orders.NotificationResult `json:"emailNotification"`
	SMS     orders.NotificationResult `json:"smsNotification"`
	Pricing rules.Pricing             `json:"pricing"`
}

// Service exposes the session-scoped checkout flow and order placement.
type Service interface {
	Get(ctx context.Context, sessionID string) (*View, error)
	SubmitShipping(ctx context.Context, sessionID string, info rules.ShippingInfo) (*View, error)
	SubmitPayment(ctx context.Context, sessionID string, in rules.PaymentInput) (*View, error)
	Back(ctx context.Context, sessionID string) (*View, error)
	Reset(ctx context.Context, sessionID string) (*View, error)
	PlaceOrder(ctx context.Context, sessionID string) (*Confirmation, error)
}

type service struct {
	flows   Repository
	carts   cartAccess
	orders  orderSaver
	locks   lock.Factory
	email   notify.Notifier
	sms     notify.Notifier
	metrics placementRecorder
	logg    *logger.Logger
	lockTTL time.Duration
	now     func() time.Time
	newID   func(time.Time) string
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Flows == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Locks == nil {
		return nil, fmt.Errorf("lock factory required")
	}
	if params.Email == nil || params.SMS == nil {
		return nil, fmt.Errorf("email and sms notifiers required")
	}
	s := &service{
		flows:   params.Flows,
		carts:   params.Carts,
		orders:  params.Orders,
		locks:   params.Locks,
		email:   params.Email,
		sms:     params.SMS,
		metrics: params.Metrics,
		logg:    params.Logger,
		lockTTL: params.LockTTL,
		now:     params.Clock,
		newID:   params.NewID,
	}
	if s.metrics == nil {
		s.metrics = metrics.NewCheckoutMetrics(nil)
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	if s.lockTTL <= 0 {
		s.lockTTL = defaultLockTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = NewOrderID
	}
	return s, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*View, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	flow, err := s.flows.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, sessionID, flow)
}

// SubmitShipping persists the flow even when validation fails so the
// submitted fields and their errors survive a reload.
func (s *service) SubmitShipping(ctx context.Context, sessionID string, info rules.ShippingInfo) (*View, error) {
	return s.transition(ctx, sessionID, true, func(flow *Flow) error {
		return flow.SubmitShipping(info)
	})
}

func (s *service) SubmitPayment(ctx context.Context, sessionID string, in rules.PaymentInput) (*View, error) {
	return s.transition(ctx, sessionID, false, func(flow *Flow) error {
		return flow.SubmitPayment(in)
	})
}

func (s *service) Back(ctx context.Context, sessionID string) (*View, error) {
	return s.transition(ctx, sessionID, false, func(flow *Flow) error {
		return flow.Back()
	})
}

func (s *service) Reset(ctx context.Context, sessionID string) (*View, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if err := s.flows.Delete(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.view(ctx, sessionID, NewFlow())
}

// PlaceOrder prices the live cart, notifies staff by email then SMS, and
// persists the order. Notification failures are recorded on the order and
// never fail placement. A persistence failure keeps the cart and leaves the
// flow at review with an error message. On success only the ordered lines
// leave the cart.
func (s *service) PlaceOrder(ctx context.Context, sessionID string) (*Confirmation, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	started := s.now()
	ctx = s.logg.WithSessionID(ctx, sessionID)

	guard, err := s.locks.New("checkout:place:"+sessionID, s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build placement lock")
	}
	acquired, err := guard.Acquire(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire placement lock")
	}
	if !acquired {
		s.metrics.ObservePlacement(metrics.OutcomeConflict, s.now().Sub(started))
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "an order is already being placed for this session")
	}

	// Once started, placement runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	defer func() {
		if err := guard.Release(ctx); err != nil {
			s.logg.Error(ctx, "failed to release placement lock", err)
		}
	}()

	conf, outcome, err := s.place(ctx, sessionID)
	s.metrics.ObservePlacement(outcome, s.now().Sub(started))
	return conf, err
}

func (s *service) place(ctx context.Context, sessionID string) (*Confirmation, string, error) {
	flow, err := s.flows.Load(ctx, sessionID)
	if err != nil {
		return nil, metrics.OutcomeRejected, err
	}
	if err := flow.readyToPlace(); err != nil {
		return nil, metrics.OutcomeRejected, err
	}
	snapshot, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, metrics.OutcomeRejected, err
	}
	if snapshot.IsEmpty() {
		return nil, metrics.OutcomeRejected, pkgerrors.InvalidFields("cart is empty", map[string]string{
			"cart": "Add at least one item before placing an order",
		})
	}

	createdAt := s.now().UTC()
	rec := &orders.Record{
		ID:        s.newID(createdAt),
		Status:    enums.OrderStatusPending,
		Customer:  flow.Shipping,
		Payment:   flow.Payment,
		Items:     helpers.OrderItems(snapshot.Lines),
		Pricing:   rules.ComputePricing(snapshot.Total),
		CreatedAt: createdAt,
	}
	ctx = s.logg.WithOrderID(ctx, rec.ID)

	rec.EmailNotification = s.notify(ctx, s.email, rec)
	rec.SMSNotification = s.notify(ctx, s.sms, rec)

	if err := s.orders.Save(ctx, rec); err != nil {
		flow.placementFailed(persistFailure)
		if saveErr := s.flows.Save(ctx, sessionID, flow); saveErr != nil {
			s.logg.Error(ctx, "failed to record placement failure on checkout state", saveErr)
		}
		return nil, metrics.OutcomePersistFailed, err
	}

	if err := s.carts.ConsumePlaced(ctx, sessionID, snapshot); err != nil {
		s.logg.Error(ctx, "order placed but cart could not be cleared", err)
	}
	flow.confirm(rec.ID)
	if err := s.flows.Save(ctx, sessionID, flow); err != nil {
		s.logg.Error(ctx, "order placed but checkout state could not be saved", err)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"total":        rec.Pricing.Total.StringFixed(2),
		"email_sent":   rec.EmailNotification.Success,
		"sms_sent":     rec.SMSNotification.Success,
		"item_count":   snapshot.ItemCount,
		"payment_type": rec.Payment.Method.String(),
	}), "order placed")

	return &Confirmation{
		OrderID: rec.ID,
		Email:   rec.EmailNotification,
		SMS:     rec.SMSNotification,
		Pricing: rec.Pricing,
	}, metrics.OutcomePlaced, nil
}

func (s *service) notify(ctx context.Context, n notify.Notifier, rec *orders.Record) orders.NotificationResult {
	res := n.Send(ctx, rec)
	return orders.NotificationResult{
		Success:     res.Success,
		Error:       res.Error,
		ProviderID:  res.ProviderID,
		AttemptedAt: s.now().UTC(),
	}
}

func (s *service) transition(ctx context.Context, sessionID string, saveOnError bool, fn func(*Flow) error) (*View, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	flow, err := s.flows.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stepErr := fn(flow); stepErr != nil {
		if saveOnError && pkgerrors.IsCode(stepErr, pkgerrors.CodeValidation) {
			if err := s.flows.Save(ctx, sessionID, flow); err != nil {
				return nil, err
			}
		}
		return nil, stepErr
	}
	if err := s.flows.Save(ctx, sessionID, flow); err != nil {
		return nil, err
	}
	return s.view(ctx, sessionID, flow)
}

func (s *service) view(ctx context.Context, sessionID string, flow *Flow) (*View, error) {
	snapshot, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &View{
		Flow:      *flow,
		Pricing:   rules.ComputePricing(snapshot.Total),
		ItemCount: snapshot.ItemCount,
	}, nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session is required")
	}
	return nil
}
