package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkitchen/catering-backend/pkg/enums"
	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
)

type addItemBody struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

func TestDecodeJSONBodyValidatesTags(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"itemId":"","quantity":0}`))
	var body addItemBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := typed.Details().(map[string]any)["fields"].(map[string]string)
	if fields["itemId"] != "is required" || fields["quantity"] != "must be at least 1" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"itemId":"x","quantity":1,"price":"0.01"}`))
	var body addItemBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected unknown field rejection, got %v", err)
	}
}

func TestDecodeJSONBodyLenientSkipsTags(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"itemId":"","quantity":0}`))
	var body addItemBody
	if err := DecodeJSONBodyLenient(req, &body); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?featured=true&cuisine=THAI&category=nope", nil)

	featured, err := ParseQueryBool(req, "featured")
	if err != nil || featured == nil || !*featured {
		t.Fatalf("expected featured=true, got %v err=%v", featured, err)
	}
	if missing, err := ParseQueryBool(req, "absent"); err != nil || missing != nil {
		t.Fatalf("expected nil for absent flag, got %v err=%v", missing, err)
	}

	cuisine, err := ParseQueryEnum(req, "cuisine", enums.ParseCuisine)
	if err != nil || cuisine != enums.Cuisine("thai") {
		t.Fatalf("unexpected cuisine %q err=%v", cuisine, err)
	}
	if _, err := ParseQueryEnum(req, "category", enums.ParseMenuCategory); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseBearerToken(t *testing.T) {
	if tok, err := ParseBearerToken("Bearer abc"); err != nil || tok != "abc" {
		t.Fatalf("unexpected token %q err=%v", tok, err)
	}
	if tok, err := ParseBearerToken("  bearer\tabc "); err != nil || tok != "abc" {
		t.Fatalf("unexpected token %q err=%v", tok, err)
	}
	if tok, err := ParseBearerToken("raw-token"); err != nil || tok != "raw-token" {
		t.Fatalf("unexpected token %q err=%v", tok, err)
	}
	for _, raw := range []string{"", "Bearer", "Bearer  ", "BEARER", "Bearer abc def"} {
		if _, err := ParseBearerToken(raw); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", raw, err)
		}
	}
	if got := SanitizeString("  duck  ", 3); got != "duc" {
		t.Fatalf("unexpected sanitized value %q", got)
	}
	if got := SanitizeString("crème", 3); got != "cr" {
		t.Fatalf("expected truncation on a rune boundary, got %q", got)
	}
}
