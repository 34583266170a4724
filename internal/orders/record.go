// Package orders defines the durable order record written once per
// successful checkout, and its key-value repository.
package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkitchen/catering-backend/pkg/checkout"
	"github.com/mkitchen/catering-backend/pkg/enums"
)

// Value types shared with the checkout rules.
type (
	ShippingInfo     = checkout.ShippingInfo
	PaymentSelection = checkout.PaymentSelection
	Pricing          = checkout.Pricing
)

// Item is a denormalised cart line frozen at placement.
type Item struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// NotificationResult is the outcome of one best-effort notification.
type NotificationResult struct {
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ProviderID  string    `json:"providerId,omitempty"`
	AttemptedAt time.Time `json:"attemptedAt"`
}

// Record is a placed order.
type Record struct {
	ID                string             `json:"orderId"`
	Status            enums.OrderStatus  `json:"status"`
	Customer          ShippingInfo       `json:"customer"`
	Payment           PaymentSelection   `json:"payment"`
	Items             []Item             `json:"items"`
	Pricing           Pricing            `json:"pricing"`
	CreatedAt         time.Time          `json:"createdAt"`
	EmailNotification NotificationResult `json:"emailNotification"`
	SMSNotification   NotificationResult `json:"smsNotification"`
}
