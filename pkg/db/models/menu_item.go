package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mkitchen/catering-backend/pkg/enums"
)

// MenuItem is a catering dish offered on the storefront menu.
type MenuItem struct {
	ID                 uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name               string             `gorm:"column:name;not null"`
	Description        string             `gorm:"column:description;not null"`
	Price              decimal.Decimal    `gorm:"column:price;type:numeric(10,2);not null"`
	Category           enums.MenuCategory `gorm:"column:category;not null"`
	Cuisine            enums.Cuisine      `gorm:"column:cuisine;not null"`
	Serves             int                `gorm:"column:serves;not null;default:1"`
	Dietary            []enums.DietaryTag `gorm:"column:dietary;type:jsonb;serializer:json"`
	ImageURL           string             `gorm:"column:image_url;not null"`
	IsFeatured         bool               `gorm:"column:is_featured;not null;default:false"`
	IsAvailable        bool               `gorm:"column:is_available;not null;default:true"`
	PreparationMinutes int                `gorm:"column:preparation_minutes;not null;default:30"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name.
func (MenuItem) TableName() string { return "menu_items" }

// BeforeCreate assigns an id when the caller did not.
func (m *MenuItem) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
