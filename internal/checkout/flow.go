// Package checkout drives the per-session checkout flow and places orders.
package checkout

import (
	"fmt"

	rules "github.com/mkitchen/catering-backend/pkg/checkout"
	"github.com/mkitchen/catering-backend/pkg/enums"
	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
)

// Flow is the checkout state machine for one session:
// shipping -> payment -> review, then confirmed once an order is placed.
type Flow struct {
	Step      enums.CheckoutStep     `json:"step"`
	Shipping  rules.ShippingInfo     `json:"shipping"`
	Payment   rules.PaymentSelection `json:"payment"`
	Errors    rules.FieldErrors      `json:"errors,omitempty"`
	LastError string                 `json:"lastError,omitempty"`
	OrderID   string                 `json:"orderId,omitempty"`
}

// NewFlow starts at the shipping step with credit card preselected.
func NewFlow() *Flow {
	return &Flow{
		Step:    enums.CheckoutStepShipping,
		Payment: rules.PaymentSelection{Method: enums.PaymentMethodCreditCard},
	}
}

// SubmitShipping stores info and advances to payment when it validates.
// On failure the submitted fields are kept and the field errors recorded.
// Submitting after a confirmed order starts a new checkout.
func (f *Flow) SubmitShipping(info rules.ShippingInfo) error {
	if f.Step == enums.CheckoutStepConfirmed {
		f.Reset()
	}
	if err := f.expect(enums.CheckoutStepShipping); err != nil {
		return err
	}
	f.Shipping = info
	errs := rules.ValidateShipping(info)
	if !errs.OK() {
		f.Errors = errs
		return errs.Err()
	}
	f.Shipping = info.Trimmed()
	f.Errors = nil
	f.Step = enums.CheckoutStepPayment
	return nil
}

// SubmitPayment records the method and advances to review.
func (f *Flow) SubmitPayment(in rules.PaymentInput) error {
	if err := f.expect(enums.CheckoutStepPayment); err != nil {
		return err
	}
	if err := rules.ValidatePayment(in); err != nil {
		return err
	}
	f.Payment = in.Selection()
	f.Step = enums.CheckoutStepReview
	return nil
}

// Back retreats one step.
func (f *Flow) Back() error {
	switch f.Step {
	case enums.CheckoutStepReview:
		f.Step = enums.CheckoutStepPayment
		f.LastError = ""
	case enums.CheckoutStepPayment:
		f.Step = enums.CheckoutStepShipping
	default:
		return stepConflict(f.Step, "cannot go back from this step")
	}
	return nil
}

// Reset discards all progress.
func (f *Flow) Reset() {
	*f = *NewFlow()
}

func (f *Flow) readyToPlace() error {
	return f.expect(enums.CheckoutStepReview)
}

func (f *Flow) placementFailed(msg string) {
	f.LastError = msg
}

func (f *Flow) confirm(orderID string) {
	f.Step = enums.CheckoutStepConfirmed
	f.OrderID = orderID
	f.LastError = ""
	f.Errors = nil
}

func (f *Flow) expect(step enums.CheckoutStep) error {
	if f.Step != step {
		return stepConflict(f.Step, fmt.Sprintf("checkout is not at the %s step", step))
	}
	return nil
}

func stepConflict(current enums.CheckoutStep, msg string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, msg).WithDetails(map[string]any{
		"step": current,
	})
}
