package cart

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mkitchen/catering-backend/internal/catalog"
	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
	"github.com/mkitchen/catering-backend/pkg/kvstore"
	"github.com/mkitchen/catering-backend/pkg/logger"
)

const testKey = "cart:session-1"

func menuItem(id string, price string) catalog.Item {
	return catalog.Item{ID: id, Name: "Item " + id, Price: decimal.RequireFromString(price), Available: true}
}

func mustLoad(t *testing.T, storage kvstore.Store) *Store {
	t.Helper()
	store, err := Load(context.Background(), storage, testKey, logger.Nop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return store
}

func assertConsistent(t *testing.T, store *Store) {
	t.Helper()
	snap := store.Snapshot()
	want := decimal.Zero
	count := 0
	seen := map[string]bool{}
	for _, l := range snap.Lines {
		if l.Quantity < 1 {
			t.Fatalf("line %s has quantity %d", l.Item.ID, l.Quantity)
		}
		if seen[l.Item.ID] {
			t.Fatalf("duplicate line for %s", l.Item.ID)
		}
		seen[l.Item.ID] = true
		want = want.Add(l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		count += l.Quantity
	}
	if !snap.Total.Equal(want) {
		t.Fatalf("total %s does not match lines %s", snap.Total, want)
	}
	if snap.ItemCount != count {
		t.Fatalf("itemCount %d does not match lines %d", snap.ItemCount, count)
	}
	if !store.Total().Equal(want) || store.ItemCount() != count {
		t.Fatal("accessors disagree with snapshot")
	}
}

func TestTotalsStayConsistentAcrossRandomMutations(t *testing.T) {
	ctx := context.Background()
	storage := kvstore.NewMemory()
	store := mustLoad(t, storage)
	items := []catalog.Item{
		menuItem("duck", "299"),
		menuItem("rolls", "89.50"),
		menuItem("rice", "119.99"),
		menuItem("tea", "0"),
	}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		item := items[rng.Intn(len(items))]
		var err error
		switch rng.Intn(3) {
		case 0:
			err = store.AddItem(ctx, item, 1+rng.Intn(5))
		case 1:
			err = store.RemoveItem(ctx, item.ID)
		default:
			err = store.SetQuantity(ctx, item.ID, rng.Intn(6)-1)
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		assertConsistent(t, store)

		reloaded := mustLoad(t, storage)
		if !reloaded.Total().Equal(store.Total()) || reloaded.ItemCount() != store.ItemCount() {
			t.Fatalf("step %d: persisted cart diverged from memory", i)
		}
	}
}

func TestAddSameItemMergesQuantities(t *testing.T) {
	ctx := context.Background()
	store := mustLoad(t, kvstore.NewMemory())
	duck := menuItem("duck", "50")

	if err := store.AddItem(ctx, duck, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.AddItem(ctx, duck, 3); err != nil {
		t.Fatalf("add: %v", err)
	}

	lines := store.Lines()
	if len(lines) != 1 || lines[0].Quantity != 5 {
		t.Fatalf("expected one line with quantity 5, got %+v", lines)
	}
	if !store.Total().Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected total 250, got %s", store.Total())
	}
}

func TestAddPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := mustLoad(t, kvstore.NewMemory())
	for _, id := range []string{"c", "a", "b"} {
		if err := store.AddItem(ctx, menuItem(id, "1"), 1); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	_ = store.AddItem(ctx, menuItem("a", "1"), 1)

	lines := store.Lines()
	got := []string{lines[0].Item.ID, lines[1].Item.ID, lines[2].Item.ID}
	if got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestAddRejectsQuantityBelowOne(t *testing.T) {
	store := mustLoad(t, kvstore.NewMemory())
	err := store.AddItem(context.Background(), menuItem("duck", "1"), 0)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.ItemCount() != 0 {
		t.Fatal("rejected add must not change the cart")
	}
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()
	viaSet := mustLoad(t, kvstore.NewMemory())
	viaRemove := mustLoad(t, kvstore.NewMemory())
	for _, s := range []*Store{viaSet, viaRemove} {
		_ = s.AddItem(ctx, menuItem("duck", "10"), 2)
		_ = s.AddItem(ctx, menuItem("rolls", "3"), 1)
	}

	if err := viaSet.SetQuantity(ctx, "duck", 0); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if err := viaRemove.RemoveItem(ctx, "duck"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	a, b := viaSet.Snapshot(), viaRemove.Snapshot()
	if len(a.Lines) != len(b.Lines) || !a.Total.Equal(b.Total) || a.ItemCount != b.ItemCount {
		t.Fatalf("setQuantity(0) %+v differs from remove %+v", a, b)
	}
}

func TestAbsentItemOperationsAreNoops(t *testing.T) {
	ctx := context.Background()
	storage := &recordingStorage{Memory: kvstore.NewMemory()}
	store := mustLoad(t, storage)

	if err := store.RemoveItem(ctx, "ghost"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
	if err := store.SetQuantity(ctx, "ghost", 4); err != nil {
		t.Fatalf("set absent: %v", err)
	}
	if storage.sets != 0 {
		t.Fatalf("no-ops must not write, got %d writes", storage.sets)
	}
}

func TestClearRemovesPersistedEntry(t *testing.T) {
	ctx := context.Background()
	storage := kvstore.NewMemory()
	store := mustLoad(t, storage)
	_ = store.AddItem(ctx, menuItem("duck", "10"), 3)

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !store.Total().IsZero() || store.ItemCount() != 0 {
		t.Fatal("expected empty totals after clear")
	}
	if _, ok, _ := storage.Get(ctx, testKey); ok {
		t.Fatal("expected storage entry to be removed")
	}
	if fresh := mustLoad(t, storage); fresh.ItemCount() != 0 {
		t.Fatal("fresh store must be empty after clear")
	}
}

func TestConsumeKeepsLinesChangedAfterSnapshot(t *testing.T) {
	ctx := context.Background()
	storage := kvstore.NewMemory()
	store := mustLoad(t, storage)
	_ = store.AddItem(ctx, menuItem("duck", "10"), 2)
	placed := store.Lines()

	_ = store.AddItem(ctx, menuItem("duck", "10"), 1)
	_ = store.AddItem(ctx, menuItem("rolls", "3"), 4)

	if err := store.Consume(ctx, placed); err != nil {
		t.Fatalf("consume: %v", err)
	}
	lines := store.Lines()
	if len(lines) != 2 || lines[0].Item.ID != "duck" || lines[0].Quantity != 1 || lines[1].Quantity != 4 {
		t.Fatalf("unexpected lines after consume: %+v", lines)
	}
	if fresh := mustLoad(t, storage); fresh.ItemCount() != 5 {
		t.Fatalf("expected persisted count 5, got %d", fresh.ItemCount())
	}
	assertConsistent(t, store)

	if err := store.Consume(ctx, lines); err != nil {
		t.Fatalf("consume rest: %v", err)
	}
	if _, ok, _ := storage.Get(ctx, testKey); ok {
		t.Fatal("expected storage entry to be removed once everything is consumed")
	}
}

func TestMalformedPersistedDataYieldsEmptyCart(t *testing.T) {
	cases := map[string]string{
		"not json":        "{{{",
		"wrong shape":     `{"lines": 3}`,
		"zero quantity":   `[{"item":{"id":"a","price":"1"},"quantity":0}]`,
		"missing id":      `[{"item":{"price":"1"},"quantity":1}]`,
		"duplicate lines": `[{"item":{"id":"a","price":"1"},"quantity":1},{"item":{"id":"a","price":"1"},"quantity":2}]`,
		"negative price":  `[{"item":{"id":"a","price":"-4"},"quantity":1}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			storage := kvstore.NewMemory()
			_ = storage.Set(context.Background(), testKey, raw)

			store := mustLoad(t, storage)
			if store.ItemCount() != 0 || len(store.Lines()) != 0 {
				t.Fatalf("expected empty cart, got %+v", store.Snapshot())
			}
		})
	}
}

func TestHydratesValidPersistedCart(t *testing.T) {
	storage := kvstore.NewMemory()
	_ = storage.Set(context.Background(), testKey, `[{"item":{"id":"a","name":"A","price":"12.5"},"quantity":2}]`)

	store := mustLoad(t, storage)
	if store.ItemCount() != 2 || !store.Total().Equal(decimal.RequireFromString("25")) {
		t.Fatalf("unexpected hydrated cart %+v", store.Snapshot())
	}
}

func TestFailedPersistLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	storage := &recordingStorage{Memory: kvstore.NewMemory()}
	store := mustLoad(t, storage)
	_ = store.AddItem(ctx, menuItem("duck", "10"), 1)

	storage.failSet = true
	err := store.AddItem(ctx, menuItem("duck", "10"), 4)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if store.ItemCount() != 1 {
		t.Fatalf("expected quantity to stay 1, got %d", store.ItemCount())
	}

	storage.failRemove = true
	if err := store.Clear(ctx); err == nil {
		t.Fatal("expected clear to fail")
	}
	if store.ItemCount() != 1 {
		t.Fatal("failed clear must keep lines")
	}
}

func TestLoadSurfacesStorageReadFailure(t *testing.T) {
	storage := &recordingStorage{Memory: kvstore.NewMemory(), failGet: true}
	_, err := Load(context.Background(), storage, testKey, nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestLinesReturnsCopy(t *testing.T) {
	store := mustLoad(t, kvstore.NewMemory())
	_ = store.AddItem(context.Background(), menuItem("duck", "10"), 1)

	lines := store.Lines()
	lines[0].Quantity = 99
	if store.ItemCount() != 1 {
		t.Fatal("mutating returned lines must not affect the store")
	}
}

type recordingStorage struct {
	*kvstore.Memory
	sets       int
	failGet    bool
	failSet    bool
	failRemove bool
}

func (r *recordingStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if r.failGet {
		return "", false, errors.New("storage unavailable")
	}
	return r.Memory.Get(ctx, key)
}

func (r *recordingStorage) Set(ctx context.Context, key, value string) error {
	if r.failSet {
		return errors.New("disk full")
	}
	r.sets++
	return r.Memory.Set(ctx, key, value)
}

func (r *recordingStorage) Remove(ctx context.Context, key string) error {
	if r.failRemove {
		return errors.New("storage unavailable")
	}
	return r.Memory.Remove(ctx, key)
}
