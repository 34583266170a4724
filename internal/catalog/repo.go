package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkitchen/catering-backend/pkg/db/models"
)

// Repository reads and seeds menu_items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns menu items newest first. Dietary filtering happens in the
// service because tag containment differs between postgres and sqlite.
func (r *Repository) List(ctx context.Context, filters Filters) ([]models.MenuItem, error) {
	q := r.db.WithContext(ctx).Model(&models.MenuItem{})
	if filters.Category != nil {
		q = q.Where("category = ?", *filters.Category)
	}
	if filters.Cuisine != nil {
		q = q.Where("cuisine = ?", *filters.Cuisine)
	}
	if filters.Featured != nil {
		q = q.Where("is_featured = ?", *filters.Featured)
	}

	var rows []models.MenuItem
	if err := q.Order("created_at DESC").Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a single menu item; gorm.ErrRecordNotFound when absent.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert inserts items or refreshes existing rows with the same id.
func (r *Repository) Upsert(ctx context.Context, items []models.MenuItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "price", "category", "cuisine", "serves",
			"dietary", "image_url", "is_featured", "is_available", "preparation_minutes", "updated_at",
		}),
	}).Create(&items).Error
}
