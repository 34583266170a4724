package cart

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeLines parses a persisted cart. Any structurally invalid line rejects
// the whole payload so a partially corrupt cart never resurfaces.
func decodeLines(raw string) ([]Line, error) {
	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	seen := make(map[string]struct{}, len(lines))
	for i, l := range lines {
		id := strings.TrimSpace(l.Item.ID)
		switch {
		case id == "":
			return nil, fmt.Errorf("line %d: missing item id", i)
		case l.Quantity < 1:
			return nil, fmt.Errorf("line %d: quantity %d below 1", i, l.Quantity)
		case l.Item.Price.IsNegative():
			return nil, fmt.Errorf("line %d: negative price", i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("line %d: duplicate item %s", i, id)
		}
		seen[id] = struct{}{}
	}
	return lines, nil
}
