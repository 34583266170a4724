package checkout

import (
	"context"
	"encoding/json"

	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
	"github.com/mkitchen/catering-backend/pkg/kvstore"
	"github.com/mkitchen/catering-backend/pkg/logger"
)

const flowKeyPrefix = "checkout:"

// FlowKey is the key-value slot holding a session's checkout flow.
func FlowKey(sessionID string) string {
	return flowKeyPrefix + sessionID
}

// Repository persists checkout flows in key-value storage.
type Repository interface {
	Load(ctx context.Context, sessionID string) (*Flow, error)
	Save(ctx context.Context, sessionID string, flow *Flow) error
	Delete(ctx context.Context, sessionID string) error
}

type repository struct {
	storage kvstore.Store
	logg    *logger.Logger
}

// NewRepository builds a flow repository over storage.
func NewRepository(storage kvstore.Store, logg *logger.Logger) Repository {
	if storage == nil {
		return nil
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &repository{storage: storage, logg: logg}
}

// Load returns the stored flow. A missing or unreadable entry starts a
// fresh flow; only a storage failure is an error.
func (r *repository) Load(ctx context.Context, sessionID string) (*Flow, error) {
	raw, ok, err := r.storage.Get(ctx, FlowKey(sessionID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read checkout state")
	}
	if !ok {
		return NewFlow(), nil
	}
	var flow Flow
	if err := json.Unmarshal([]byte(raw), &flow); err != nil || !flow.Step.IsValid() {
		r.logg.Warn(r.logg.WithField(ctx, "key", FlowKey(sessionID)), "discarding malformed checkout state")
		return NewFlow(), nil
	}
	return &flow, nil
}

func (r *repository) Save(ctx context.Context, sessionID string, flow *Flow) error {
	payload, err := json.Marshal(flow)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout state")
	}
	if err := r.storage.Set(ctx, FlowKey(sessionID), string(payload)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout state")
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, sessionID string) error {
	if err := r.storage.Remove(ctx, FlowKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove checkout state")
	}
	return nil
}
