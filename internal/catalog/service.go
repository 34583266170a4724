package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkitchen/catering-backend/pkg/db/models"
	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
)

type menuRepository interface {
	List(ctx context.Context, filters Filters) ([]models.MenuItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
}

// Service exposes the read-only menu to the storefront and the cart.
type Service interface {
	List(ctx context.Context, filters Filters) ([]Item, error)
	Get(ctx context.Context, id string) (Item, error)
}

type service struct {
	repo menuRepository
}

// NewService builds a catalog service.
func NewService(repo menuRepository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filters Filters) ([]Item, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list menu items")
	}
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		item := FromModel(row)
		if filters.Dietary != nil && !item.HasDietary(*filters.Dietary) {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id string) (Item, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return Item{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "menu item not found")
	}
	row, err := s.repo.FindByID(ctx, parsed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Item{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "menu item not found")
		}
		return Item{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
	}
	return FromModel(*row), nil
}
