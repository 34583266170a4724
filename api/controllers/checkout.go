package controllers

import (
	"net/http"

	"github.com/mkitchen/catering-backend/api/middleware"
	"github.com/mkitchen/catering-backend/api/responses"
	"github.com/mkitchen/catering-backend/api/validators"
	"github.com/mkitchen/catering-backend/internal/checkout"
	rules "github.com/mkitchen/catering-backend/pkg/checkout"
	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
	"github.com/mkitchen/catering-backend/pkg/logger"
)

// CheckoutFetch returns the session's flow with a live pricing preview.
func CheckoutFetch(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		view, err := svc.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CheckoutSubmitShipping validates shipping details and advances to payment.
// Field rules live in the domain so the payload is decoded without tag checks.
func CheckoutSubmitShipping(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		var payload rules.ShippingInfo
		if err := validators.DecodeJSONBodyLenient(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.SubmitShipping(r.Context(), middleware.SessionIDFromContext(r.Context()), sanitizeShipping(payload))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CheckoutSubmitPayment(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		var payload rules.PaymentInput
		if err := validators.DecodeJSONBodyLenient(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.SubmitPayment(r.Context(), middleware.SessionIDFromContext(r.Context()), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CheckoutBack(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		view, err := svc.Back(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CheckoutReset(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		view, err := svc.Reset(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CheckoutPlaceOrder runs order placement and returns the confirmation.
// Notification outcomes are part of the payload, never an error status.
func CheckoutPlaceOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		confirmation, err := svc.PlaceOrder(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, confirmation)
	}
}

func sanitizeShipping(in rules.ShippingInfo) rules.ShippingInfo {
	in.FirstName = validators.SanitizeString(in.FirstName, 100)
	in.LastName = validators.SanitizeString(in.LastName, 100)
	in.Email = validators.SanitizeString(in.Email, 254)
	in.Phone = validators.SanitizeString(in.Phone, 40)
	in.Address = validators.SanitizeString(in.Address, 200)
	in.City = validators.SanitizeString(in.City, 100)
	in.State = validators.SanitizeString(in.State, 100)
	in.ZipCode = validators.SanitizeString(in.ZipCode, 20)
	in.DeliveryDate = validators.SanitizeString(in.DeliveryDate, 40)
	in.DeliveryTime = validators.SanitizeString(in.DeliveryTime, 40)
	in.SpecialInstructions = validators.SanitizeString(in.SpecialInstructions, 1000)
	return in
}
