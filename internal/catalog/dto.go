package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/mkitchen/catering-backend/pkg/db/models"
	"github.com/mkitchen/catering-backend/pkg/enums"
)

// Item is the catalog snapshot handed to the cart. It is decoupled from the
// menu_items row so later menu edits never rewrite a cart or an order.
type Item struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Description        string             `json:"description,omitempty"`
	Price              decimal.Decimal    `json:"price"`
	Category           enums.MenuCategory `json:"category"`
	Cuisine            enums.Cuisine      `json:"cuisine"`
	Serves             int                `json:"serves"`
	Dietary            []enums.DietaryTag `json:"dietary"`
	ImageURL           string             `json:"imageUrl"`
	Featured           bool               `json:"isFeatured"`
	Available          bool               `json:"isAvailable"`
	PreparationMinutes int                `json:"preparationTime"`
}

// HasDietary reports whether the item carries tag.
func (i Item) HasDietary(tag enums.DietaryTag) bool {
	for _, d := range i.Dietary {
		if d == tag {
			return true
		}
	}
	return false
}

// FromModel maps a menu_items row to its catalog snapshot.
func FromModel(m models.MenuItem) Item {
	dietary := m.Dietary
	if dietary == nil {
		dietary = []enums.DietaryTag{}
	}
	return Item{
		ID:                 m.ID.String(),
		Name:               m.Name,
		Description:        m.Description,
		Price:              m.Price,
		Category:           m.Category,
		Cuisine:            m.Cuisine,
		Serves:             m.Serves,
		Dietary:            dietary,
		ImageURL:           m.ImageURL,
		Featured:           m.IsFeatured,
		Available:          m.IsAvailable,
		PreparationMinutes: m.PreparationMinutes,
	}
}

// Filters narrows a menu listing. Zero values mean "any".
type Filters struct {
	Category *enums.MenuCategory
	Cuisine  *enums.Cuisine
	Dietary  *enums.DietaryTag
	Featured *bool
}
