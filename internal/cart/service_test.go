package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkitchen/catering-backend/internal/catalog"
	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
	"github.com/mkitchen/catering-backend/pkg/kvstore"
)

type fakeCatalog map[string]catalog.Item

func (f fakeCatalog) Get(_ context.Context, id string) (catalog.Item, error) {
	item, ok := f[id]
	if !ok {
		return catalog.Item{}, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return item, nil
}

func newTestService(t *testing.T) (Service, *kvstore.Memory) {
	t.Helper()
	storage := kvstore.NewMemory()
	cat := fakeCatalog{
		"duck":  menuItem("duck", "299"),
		"rolls": menuItem("rolls", "89"),
		"gone":  {ID: "gone", Name: "Gone", Price: decimal.NewFromInt(5), Available: false},
	}
	svc, err := NewService(ServiceParams{Storage: storage, Catalog: cat})
	require.NoError(t, err)
	return svc, storage
}

func TestServiceAddByIDSnapshotsCatalogItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	snap, err := svc.AddByID(ctx, "s1", "duck", 2)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	require.Equal(t, "Item duck", snap.Lines[0].Item.Name)
	require.True(t, snap.Total.Equal(decimal.NewFromInt(598)))

	snap, err = svc.AddByID(ctx, "s1", "rolls", 1)
	require.NoError(t, err)
	require.Equal(t, 3, snap.ItemCount)
}

func TestServiceRejectsUnknownAndUnavailableItems(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddByID(ctx, "s1", "missing", 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.AddByID(ctx, "s1", "gone", 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServiceScopesCartsBySession(t *testing.T) {
	svc, storage := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddByID(ctx, "s1", "duck", 1)
	require.NoError(t, err)

	other, err := svc.Get(ctx, "s2")
	require.NoError(t, err)
	require.True(t, other.IsEmpty())

	_, ok, _ := storage.Get(ctx, StorageKey("s1"))
	require.True(t, ok)
}

func TestServiceSetQuantityRemoveAndClear(t *testing.T) {
	svc, storage := newTestService(t)
	ctx := context.Background()

	_, _ = svc.AddByID(ctx, "s1", "duck", 1)
	_, _ = svc.AddByID(ctx, "s1", "rolls", 1)

	snap, err := svc.SetQuantity(ctx, "s1", "duck", 4)
	require.NoError(t, err)
	require.Equal(t, 5, snap.ItemCount)

	snap, err = svc.Remove(ctx, "s1", "rolls")
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)

	require.NoError(t, svc.Clear(ctx, "s1"))
	_, ok, _ := storage.Get(ctx, StorageKey("s1"))
	require.False(t, ok)
}

func TestServiceRequiresSession(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), " ")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestServiceSerialisesConcurrentAddsPerSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddByID(ctx, "s1", "rolls", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 40, snap.ItemCount)
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{Catalog: fakeCatalog{}})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Storage: kvstore.NewMemory()})
	require.Error(t, err)
}
