package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
)

// ParseQueryBool returns nil when key is absent, else the parsed flag.
func ParseQueryBool(r *http.Request, key string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a boolean").WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

// ParseQueryEnum returns "" when key is absent, else the raw value after
// checking it with parse.
func ParseQueryEnum[T ~string](r *http.Request, key string, parse func(string) (T, error)) (T, error) {
	raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key)))
	if raw == "" {
		return "", nil
	}
	value, err := parse(raw)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter has an unknown value").WithDetails(map[string]any{"field": key, "value": raw})
	}
	return value, nil
}

// ParseQueryInt returns fallback when key is absent, else the parsed integer.
func ParseQueryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be an integer").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}
