package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mkitchen/catering-backend/api/responses"
	"github.com/mkitchen/catering-backend/api/validators"
	"github.com/mkitchen/catering-backend/internal/orders"
	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
	"github.com/mkitchen/catering-backend/pkg/logger"
	"github.com/mkitchen/catering-backend/pkg/pagination"
)

type orderReader interface {
	Find(ctx context.Context, id string) (*orders.Record, error)
	Page(ctx context.Context, params pagination.Params) ([]orders.Record, string, error)
}

// OrderFetch returns a placed order for the confirmation page.
func OrderFetch(repo orderReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order repository unavailable"))
			return
		}
		orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, orderID)
		}
		record, err := repo.Find(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// AdminOrdersList pages through every indexed order, newest first.
func AdminOrdersList(repo orderReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order repository unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, next, err := repo.Page(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if list == nil {
			list = []orders.Record{}
		}
		responses.WriteSuccess(w, adminOrdersPage{Orders: list, NextCursor: next})
	}
}

type adminOrdersPage struct {
	Orders     []orders.Record `json:"orders"`
	NextCursor string          `json:"nextCursor,omitempty"`
}
