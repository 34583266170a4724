package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any page can request.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from controllers.
type Params struct {
	Limit  int
	Cursor string
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor wraps the last key of a page into an opaque cursor.
func EncodeCursor(key string) string {
	if key == "" {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// ParseCursor decodes a cursor produced by EncodeCursor. An empty value
// means the first page.
func ParseCursor(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("decode cursor: %w", err)
	}
	if len(decoded) == 0 {
		return "", fmt.Errorf("invalid cursor")
	}
	return string(decoded), nil
}

// Page walks keys newest first (from the end of the slice) and returns the
// keys after the cursor plus the cursor for the following page. A cursor
// naming a key that is no longer present is an error.
func Page(keys []string, params Params) ([]string, string, error) {
	after, err := ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	limit := NormalizeLimit(params.Limit)

	start := len(keys) - 1
	if after != "" {
		found := false
		for i := len(keys) - 1; i >= 0; i-- {
			if keys[i] == after {
				start, found = i-1, true
				break
			}
		}
		if !found {
			return nil, "", fmt.Errorf("cursor no longer valid")
		}
	}

	page := make([]string, 0, limit)
	i := start
	for ; i >= 0 && len(page) < limit; i-- {
		page = append(page, keys[i])
	}

	next := ""
	if i >= 0 && len(page) > 0 {
		next = EncodeCursor(page[len(page)-1])
	}
	return page, next, nil
}
