package validators

import (
	"errors"
	"strings"
)

var ErrInvalidToken = errors.New("invalid auth token")

// ParseBearerToken strips an optional "Bearer" scheme from an
// Authorization header value. A scheme with no credential is rejected.
func ParseBearerToken(raw string) (string, error) {
	parts := strings.Fields(raw)
	if len(parts) > 0 && strings.EqualFold(parts[0], "bearer") {
		parts = parts[1:]
	}
	if len(parts) != 1 {
		return "", ErrInvalidToken
	}
	return parts[0], nil
}
