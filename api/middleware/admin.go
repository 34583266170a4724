package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/mkitchen/catering-backend/api/responses"
	"github.com/mkitchen/catering-backend/api/validators"
	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
	"github.com/mkitchen/catering-backend/pkg/logger"
)

// RequireAdminToken guards operator routes with a static bearer token. An
// empty configured token locks the routes entirely.
func RequireAdminToken(expected string, logg *logger.Logger) func(http.Handler) http.Handler {
	expected = strings.TrimSpace(expected)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := validators.ParseBearerToken(r.Header.Get("Authorization"))
			if err != nil || expected == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin token required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
