// Package cart holds the per-session shopping cart: an ordered set of menu
// item snapshots with quantities, persisted to key-value storage on every
// mutation.
package cart

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mkitchen/catering-backend/internal/catalog"
	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
	"github.com/mkitchen/catering-backend/pkg/kvstore"
	"github.com/mkitchen/catering-backend/pkg/logger"
)

const storageKeyPrefix = "cart:"

// StorageKey is the key-value slot holding a session's cart.
func StorageKey(sessionID string) string {
	return storageKeyPrefix + sessionID
}

// Line is one menu item snapshot plus a quantity of at least one.
type Line struct {
	Item     catalog.Item `json:"item"`
	Quantity int          `json:"quantity"`
}

// Subtotal is price × quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is an immutable view of the cart with derived totals.
type Snapshot struct {
	Lines     []Line          `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// IsEmpty reports whether the cart has no lines.
func (s Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Store is one session's cart. Totals are always derived from the current
// lines. A mutation is applied only after its persistence write succeeds.
type Store struct {
	mu      sync.Mutex
	storage kvstore.Store
	key     string
	lines   []Line
	logg    *logger.Logger
}

// Load hydrates a store from storage. Missing or malformed data yields an
// empty cart; only a failing storage read is returned as an error.
func Load(ctx context.Context, storage kvstore.Store, key string, logg *logger.Logger) (*Store, error) {
	if storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart storage is required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart storage key is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}

	s := &Store{storage: storage, key: key, logg: logg}

	raw, ok, err := storage.Get(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart")
	}
	if !ok {
		return s, nil
	}

	lines, err := decodeLines(raw)
	if err != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{"cart_key": key, "reason": err.Error()}), "discarding malformed cart data")
		return s, nil
	}
	s.lines = lines
	return s, nil
}

// AddItem merges quantity into the existing line for item.ID or appends a new line.
func (s *Store) AddItem(ctx context.Context, item catalog.Item, quantity int) error {
	if quantity < 1 {
		return pkgerrors.InvalidFields("invalid quantity", map[string]string{"quantity": "Quantity must be at least 1"})
	}
	if strings.TrimSpace(item.ID) == "" {
		return pkgerrors.InvalidFields("invalid item", map[string]string{"itemId": "Item id is required"})
	}
	if item.Price.IsNegative() {
		return pkgerrors.InvalidFields("invalid item", map[string]string{"price": "Price must not be negative"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyLines()
	if i := indexOf(next, item.ID); i >= 0 {
		next[i].Quantity += quantity
	} else {
		next = append(next, Line{Item: item, Quantity: quantity})
	}
	return s.commit(ctx, next)
}

// RemoveItem deletes the line for itemID. Absent items are a no-op.
func (s *Store) RemoveItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.lines, itemID)
	if i < 0 {
		return nil
	}
	next := s.copyLines()
	next = append(next[:i], next[i+1:]...)
	return s.commit(ctx, next)
}

// SetQuantity overwrites the line quantity; below one removes the line.
// Absent items are a no-op.
func (s *Store) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 1 {
		return s.RemoveItem(ctx, itemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.lines, itemID)
	if i < 0 {
		return nil
	}
	if s.lines[i].Quantity == quantity {
		return nil
	}
	next := s.copyLines()
	next[i].Quantity = quantity
	return s.commit(ctx, next)
}

// Clear empties the cart and removes its storage entry.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Remove(ctx, s.key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	s.lines = nil
	return nil
}

// Consume subtracts the placed quantities from the cart. Lines added or
// raised after the placed snapshot was taken keep the difference. An empty
// result removes the storage entry.
func (s *Store) Consume(ctx context.Context, placed []Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := make(map[string]int, len(placed))
	for _, l := range placed {
		taken[l.Item.ID] += l.Quantity
	}
	next := make([]Line, 0, len(s.lines))
	for _, l := range s.lines {
		l.Quantity -= taken[l.Item.ID]
		if l.Quantity > 0 {
			next = append(next, l)
		}
	}
	if len(next) == 0 {
		if err := s.storage.Remove(ctx, s.key); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		s.lines = nil
		return nil
	}
	return s.commit(ctx, next)
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLines()
}

// Total is Σ price × quantity over the current lines.
func (s *Store) Total() decimal.Decimal {
	return s.Snapshot().Total
}

// ItemCount is Σ quantity over the current lines.
func (s *Store) ItemCount() int {
	return s.Snapshot().ItemCount
}

// Snapshot returns lines and derived totals computed under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotOf(s.copyLines())
}

func (s *Store) commit(ctx context.Context, next []Line) error {
	payload, err := json.Marshal(next)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.storage.Set(ctx, s.key, string(payload)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	s.lines = next
	return nil
}

func (s *Store) copyLines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func snapshotOf(lines []Line) Snapshot {
	total := decimal.Zero
	count := 0
	for _, l := range lines {
		total = total.Add(l.Subtotal())
		count += l.Quantity
	}
	return Snapshot{Lines: lines, Total: total, ItemCount: count}
}

func indexOf(lines []Line, itemID string) int {
	for i, l := range lines {
		if l.Item.ID == itemID {
			return i
		}
	}
	return -1
}
