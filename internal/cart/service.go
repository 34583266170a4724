package cart

import (
	"context"
	"strings"
	"sync"

	"github.com/mkitchen/catering-backend/internal/catalog"
	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
	"github.com/mkitchen/catering-backend/pkg/kvstore"
	"github.com/mkitchen/catering-backend/pkg/logger"
)

type itemLoader interface {
	Get(ctx context.Context, id string) (catalog.Item, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Storage kvstore.Store
	Catalog itemLoader
	Logger  *logger.Logger
}

// Service exposes session-scoped cart operations. Mutations for one session
// are serialised within the process.
type Service interface {
	Open(ctx context.Context, sessionID string) (*Store, error)
	Get(ctx context.Context, sessionID string) (Snapshot, error)
	AddByID(ctx context.Context, sessionID, itemID string, quantity int) (Snapshot, error)
	SetQuantity(ctx context.Context, sessionID, itemID string, quantity int) (Snapshot, error)
	Remove(ctx context.Context, sessionID, itemID string) (Snapshot, error)
	Clear(ctx context.Context, sessionID string) error
	ConsumePlaced(ctx context.Context, sessionID string, placed Snapshot) error
}

type service struct {
	storage kvstore.Store
	catalog itemLoader
	logg    *logger.Logger
	locks   *sessionLocks
}

// NewService builds a cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.Storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart storage is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		storage: params.Storage,
		catalog: params.Catalog,
		logg:    logg,
		locks:   newSessionLocks(),
	}, nil
}

func (s *service) Open(ctx context.Context, sessionID string) (*Store, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session is required")
	}
	return Load(s.logg.WithSessionID(ctx, sessionID), s.storage, StorageKey(sessionID), s.logg)
}

func (s *service) Get(ctx context.Context, sessionID string) (Snapshot, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return store.Snapshot(), nil
}

// AddByID resolves the live catalog entry and adds its snapshot.
func (s *service) AddByID(ctx context.Context, sessionID, itemID string, quantity int) (Snapshot, error) {
	item, err := s.catalog.Get(ctx, itemID)
	if err != nil {
		return Snapshot{}, err
	}
	if !item.Available {
		return Snapshot{}, pkgerrors.InvalidFields("item unavailable", map[string]string{"itemId": "This item is currently unavailable"})
	}
	return s.mutate(ctx, sessionID, func(store *Store) error {
		return store.AddItem(ctx, item, quantity)
	})
}

func (s *service) SetQuantity(ctx context.Context, sessionID, itemID string, quantity int) (Snapshot, error) {
	return s.mutate(ctx, sessionID, func(store *Store) error {
		return store.SetQuantity(ctx, itemID, quantity)
	})
}

func (s *service) Remove(ctx context.Context, sessionID, itemID string) (Snapshot, error) {
	return s.mutate(ctx, sessionID, func(store *Store) error {
		return store.RemoveItem(ctx, itemID)
	})
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	_, err := s.mutate(ctx, sessionID, func(store *Store) error {
		return store.Clear(ctx)
	})
	return err
}

// ConsumePlaced removes an ordered snapshot from the cart under the session
// lock, so items added while the order was being placed stay in the cart.
func (s *service) ConsumePlaced(ctx context.Context, sessionID string, placed Snapshot) error {
	_, err := s.mutate(ctx, sessionID, func(store *Store) error {
		return store.Consume(ctx, placed.Lines)
	})
	return err
}

func (s *service) mutate(ctx context.Context, sessionID string, fn func(*Store) error) (Snapshot, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := fn(store); err != nil {
		return Snapshot{}, err
	}
	return store.Snapshot(), nil
}

// sessionLocks hands out one mutex per active session and drops it once no
// caller holds or waits on it.
type sessionLocks struct {
	mu    sync.Mutex
	byKey map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{byKey: make(map[string]*refMutex)}
}

func (l *sessionLocks) lock(key string) func() {
	l.mu.Lock()
	m, ok := l.byKey[key]
	if !ok {
		m = &refMutex{}
		l.byKey[key] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.byKey, key)
		}
		l.mu.Unlock()
	}
}
