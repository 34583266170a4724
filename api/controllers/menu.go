package controllers

import (
	"net/http"

	"github.com/mkitchen/catering-backend/api/responses"
	"github.com/mkitchen/catering-backend/api/validators"
	"github.com/mkitchen/catering-backend/internal/catalog"
	"github.com/mkitchen/catering-backend/pkg/enums"
	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
	"github.com/mkitchen/catering-backend/pkg/logger"
)

// MenuList returns the catalog filtered by category, cuisine, dietary and featured.
func MenuList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		filters, err := parseMenuFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if items == nil {
			items = []catalog.Item{}
		}
		responses.WriteSuccess(w, items)
	}
}

func parseMenuFilters(r *http.Request) (catalog.Filters, error) {
	var filters catalog.Filters

	category, err := validators.ParseQueryEnum(r, "category", enums.ParseMenuCategory)
	if err != nil {
		return filters, err
	}
	if category != "" {
		filters.Category = &category
	}

	cuisine, err := validators.ParseQueryEnum(r, "cuisine", enums.ParseCuisine)
	if err != nil {
		return filters, err
	}
	if cuisine != "" {
		filters.Cuisine = &cuisine
	}

	dietary, err := validators.ParseQueryEnum(r, "dietary", enums.ParseDietaryTag)
	if err != nil {
		return filters, err
	}
	if dietary != "" {
		filters.Dietary = &dietary
	}

	featured, err := validators.ParseQueryBool(r, "featured")
	if err != nil {
		return filters, err
	}
	filters.Featured = featured

	return filters, nil
}
