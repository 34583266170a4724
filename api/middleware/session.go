package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/mkitchen/catering-backend/api/responses"
	"github.com/mkitchen/catering-backend/pkg/auth"
	"github.com/mkitchen/catering-backend/pkg/config"
	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
	"github.com/mkitchen/catering-backend/pkg/logger"
)

const sessionHeader = "X-Session-Token"

// Session binds every request to a storefront session. The token is read
// from the X-Session-Token header or the session cookie; a missing, expired
// or forged token starts a new session. The current token is echoed in the
// header and refreshed in the cookie on every response.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw := presentedToken(r, cfg.CookieName)

			var sessionID string
			if raw != "" {
				claims, err := auth.ParseSessionToken(cfg, raw)
				if err == nil {
					sessionID = claims.SessionID()
				} else if logg != nil {
					logg.Warn(logg.WithField(ctx, "reason", err.Error()), "session.token_rejected")
				}
			}

			token := raw
			if sessionID == "" {
				sessionID = auth.NewSessionID()
				minted, err := auth.MintSessionToken(cfg, time.Now(), sessionID)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token"))
					return
				}
				token = minted
			}

			w.Header().Set(sessionHeader, token)
			if cfg.CookieName != "" {
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(cfg.TTL.Seconds()),
				})
			}

			ctx = WithSessionID(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func presentedToken(r *http.Request, cookieName string) string {
	if v := strings.TrimSpace(r.Header.Get(sessionHeader)); v != "" {
		return v
	}
	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}
