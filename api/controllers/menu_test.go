package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mkitchen/catering-backend/internal/catalog"
	"github.com/mkitchen/catering-backend/pkg/enums"
	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
)

type stubCatalog struct {
	items []catalog.Item
	seen  catalog.Filters
	err   error
}

func (s *stubCatalog) List(_ context.Context, filters catalog.Filters) ([]catalog.Item, error) {
	s.seen = filters
	return s.items, s.err
}

func (s *stubCatalog) Get(context.Context, string) (catalog.Item, error) {
	return catalog.Item{}, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
}

func TestMenuListParsesFilters(t *testing.T) {
	svc := &stubCatalog{items: []catalog.Item{{ID: "duck", Name: "Peking Duck Feast", Price: decimal.NewFromInt(299)}}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/menu?category=main&cuisine=Chinese&dietary=vegetarian&featured=true", nil)
	resp := httptest.NewRecorder()

	MenuList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.seen.Category == nil || *svc.seen.Category != enums.MenuCategoryMain {
		t.Fatalf("expected main category filter, got %v", svc.seen.Category)
	}
	if svc.seen.Cuisine == nil || *svc.seen.Cuisine != enums.CuisineChinese {
		t.Fatalf("expected chinese cuisine filter, got %v", svc.seen.Cuisine)
	}
	if svc.seen.Dietary == nil || *svc.seen.Dietary != enums.DietaryVegetarian {
		t.Fatalf("expected vegetarian filter, got %v", svc.seen.Dietary)
	}
	if svc.seen.Featured == nil || !*svc.seen.Featured {
		t.Fatalf("expected featured filter")
	}

	var items []catalog.Item
	decodeData(t, resp, &items)
	if len(items) != 1 || items[0].ID != "duck" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestMenuListRejectsUnknownFilter(t *testing.T) {
	svc := &stubCatalog{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/menu?cuisine=martian", nil)
	resp := httptest.NewRecorder()

	MenuList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMenuListEmptyIsArray(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil)
	resp := httptest.NewRecorder()

	MenuList(&stubCatalog{}, nil).ServeHTTP(resp, req)

	if got := resp.Body.String(); got != "{\"data\":[]}\n" {
		t.Fatalf("expected empty array payload, got %s", got)
	}
}
