package orders

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
	"github.com/mkitchen/catering-backend/pkg/kvstore"
	"github.com/mkitchen/catering-backend/pkg/logger"
	"github.com/mkitchen/catering-backend/pkg/pagination"
)

const (
	recordKeyPrefix = "order:"
	indexKey        = "orders:index"
)

// RecordKey is the storage key for one order record.
func RecordKey(id string) string {
	return recordKeyPrefix + id
}

// Repository persists order records in key-value storage with a secondary
// index listing every known order id in placement order.
//
// The index is read-modify-write; indexMu serialises writers in this process
// only. Two API instances saving at the same instant can drop an index entry,
// though the record itself stays retrievable by id.
type Repository struct {
	storage kvstore.Store
	logg    *logger.Logger
	indexMu sync.Mutex
}

// NewRepository constructs an order repository.
func NewRepository(storage kvstore.Store, logg *logger.Logger) *Repository {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Repository{storage: storage, logg: logg}
}

// Save writes the record and appends its id to the index. Only the record
// write decides success; an index failure is logged.
func (r *Repository) Save(ctx context.Context, rec *Record) error {
	if rec == nil || strings.TrimSpace(rec.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeInternal, "order record requires an id")
	}
	if !rec.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeInternal, "order record has an unknown status")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order record")
	}
	if err := r.storage.Set(ctx, RecordKey(rec.ID), string(payload)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order record")
	}

	if err := r.appendIndex(ctx, rec.ID); err != nil {
		r.logg.Error(r.logg.WithOrderID(ctx, rec.ID), "failed to update order index", err)
	}
	return nil
}

// Find loads one record by id.
func (r *Repository) Find(ctx context.Context, id string) (*Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	raw, ok, err := r.storage.Get(ctx, RecordKey(id))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read order record")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode order record")
	}
	return &rec, nil
}

// List returns every indexed record, newest first. Index entries whose record
// is missing or unreadable are skipped with a warning.
func (r *Repository) List(ctx context.Context) ([]Record, error) {
	ids, err := r.readIndex(ctx)
	if err != nil {
		return nil, err
	}
	newestFirst := make([]string, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		newestFirst = append(newestFirst, ids[i])
	}
	return r.load(ctx, newestFirst)
}

// Page returns one page of records, newest first, and the cursor of the next
// page ("" on the last page).
func (r *Repository) Page(ctx context.Context, params pagination.Params) ([]Record, string, error) {
	ids, err := r.readIndex(ctx)
	if err != nil {
		return nil, "", err
	}
	pageIDs, next, err := pagination.Page(ids, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	records, err := r.load(ctx, pageIDs)
	if err != nil {
		return nil, "", err
	}
	return records, next, nil
}

func (r *Repository) load(ctx context.Context, ids []string) ([]Record, error) {
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec, err := r.Find(ctx, id)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
				return nil, err
			}
			r.logg.Warn(r.logg.WithFields(ctx, map[string]any{"order_id": id, "reason": err.Error()}), "skipping unreadable indexed order")
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

// IDs returns the indexed order ids in placement order.
func (r *Repository) IDs(ctx context.Context) ([]string, error) {
	return r.readIndex(ctx)
}

func (r *Repository) appendIndex(ctx context.Context, id string) error {
	r.indexMu.Lock()
	defer r.indexMu.Unlock()

	ids, err := r.readIndex(ctx)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	payload, err := json.Marshal(append(ids, id))
	if err != nil {
		return err
	}
	return r.storage.Set(ctx, indexKey, string(payload))
}

func (r *Repository) readIndex(ctx context.Context) ([]string, error) {
	raw, ok, err := r.storage.Get(ctx, indexKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read order index")
	}
	if !ok {
		return []string{}, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode order index")
	}
	return ids, nil
}
