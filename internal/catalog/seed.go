package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mkitchen/catering-backend/pkg/db/models"
	"github.com/mkitchen/catering-backend/pkg/enums"
)

// seedNamespace derives stable ids from item names so re-seeding updates rows
// instead of duplicating them.
var seedNamespace = uuid.MustParse("6f1c2b8e-4a53-4b61-9d0e-3f7a8c2d1e90")

// SeedFile is the YAML layout consumed by cmd/seed.
type SeedFile struct {
	Items []SeedItem `yaml:"items"`
}

type SeedItem struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	Price           string   `yaml:"price"`
	Category        string   `yaml:"category"`
	Cuisine         string   `yaml:"cuisine"`
	Serves          int      `yaml:"serves"`
	Dietary         []string `yaml:"dietary"`
	ImageURL        string   `yaml:"imageUrl"`
	Featured        bool     `yaml:"featured"`
	Unavailable     bool     `yaml:"unavailable"`
	PreparationTime int      `yaml:"preparationTime"`
}

type seedWriter interface {
	Upsert(ctx context.Context, items []models.MenuItem) error
}

// ParseSeed decodes and validates a seed file into menu rows.
func ParseSeed(r io.Reader) ([]models.MenuItem, error) {
	var file SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode seed yaml: %w", err)
	}

	rows := make([]models.MenuItem, 0, len(file.Items))
	seen := map[string]bool{}
	for i, item := range file.Items {
		row, err := item.toModel()
		if err != nil {
			return nil, fmt.Errorf("item %d (%s): %w", i, item.Name, err)
		}
		if seen[row.Name] {
			return nil, fmt.Errorf("item %d: duplicate name %q", i, row.Name)
		}
		seen[row.Name] = true
		rows = append(rows, row)
	}
	return rows, nil
}

// Seed parses r and upserts every item.
func Seed(ctx context.Context, repo seedWriter, r io.Reader) (int, error) {
	rows, err := ParseSeed(r)
	if err != nil {
		return 0, err
	}
	if err := repo.Upsert(ctx, rows); err != nil {
		return 0, fmt.Errorf("upsert menu items: %w", err)
	}
	return len(rows), nil
}

func (s SeedItem) toModel() (models.MenuItem, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return models.MenuItem{}, fmt.Errorf("name is required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(s.Price))
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("invalid price %q: %w", s.Price, err)
	}
	if price.IsNegative() {
		return models.MenuItem{}, fmt.Errorf("price must not be negative")
	}
	category, err := enums.ParseMenuCategory(s.Category)
	if err != nil {
		return models.MenuItem{}, err
	}
	cuisine, err := enums.ParseCuisine(s.Cuisine)
	if err != nil {
		return models.MenuItem{}, err
	}
	dietary := make([]enums.DietaryTag, 0, len(s.Dietary))
	for _, raw := range s.Dietary {
		tag, err := enums.ParseDietaryTag(raw)
		if err != nil {
			return models.MenuItem{}, err
		}
		dietary = append(dietary, tag)
	}
	serves := s.Serves
	if serves < 1 {
		serves = 1
	}
	prep := s.PreparationTime
	if prep <= 0 {
		prep = 30
	}

	return models.MenuItem{
		ID:                 uuid.NewSHA1(seedNamespace, []byte(name)),
		Name:               name,
		Description:        strings.TrimSpace(s.Description),
		Price:              price,
		Category:           category,
		Cuisine:            cuisine,
		Serves:             serves,
		Dietary:            dietary,
		ImageURL:           strings.TrimSpace(s.ImageURL),
		IsFeatured:         s.Featured,
		IsAvailable:        !s.Unavailable,
		PreparationMinutes: prep,
	}, nil
}
