// Package checkout holds the pure checkout rules: the customer and payment
// value types, field validation and order pricing.
package checkout

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/mkitchen/catering-backend/pkg/enums"
)

// ShippingInfo is the customer and delivery slot captured at checkout.
// Every field except SpecialInstructions is mandatory.
type ShippingInfo struct {
	FirstName           string `json:"firstName" validate:"required"`
	LastName            string `json:"lastName" validate:"required"`
	Email               string `json:"email" validate:"required"`
	Phone               string `json:"phone" validate:"required"`
	Address             string `json:"address" validate:"required"`
	City                string `json:"city" validate:"required"`
	State               string `json:"state" validate:"required"`
	ZipCode             string `json:"zipCode" validate:"required"`
	DeliveryDate        string `json:"deliveryDate" validate:"required"`
	DeliveryTime        string `json:"deliveryTime" validate:"required"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (s ShippingInfo) Trimmed() ShippingInfo {
	return ShippingInfo{
		FirstName:           strings.TrimSpace(s.FirstName),
		LastName:            strings.TrimSpace(s.LastName),
		Email:               strings.TrimSpace(s.Email),
		Phone:               strings.TrimSpace(s.Phone),
		Address:             strings.TrimSpace(s.Address),
		City:                strings.TrimSpace(s.City),
		State:               strings.TrimSpace(s.State),
		ZipCode:             strings.TrimSpace(s.ZipCode),
		DeliveryDate:        strings.TrimSpace(s.DeliveryDate),
		DeliveryTime:        strings.TrimSpace(s.DeliveryTime),
		SpecialInstructions: strings.TrimSpace(s.SpecialInstructions),
	}
}

// FullName joins first and last name.
func (s ShippingInfo) FullName() string {
	return s.FirstName + " " + s.LastName
}

// DeliveryAddress renders "street, city, STATE zip".
func (s ShippingInfo) DeliveryAddress() string {
	return s.Address + ", " + s.City + ", " + s.State + " " + s.ZipCode
}

// PaymentInput is the payment step as submitted. Card fields are optional,
// never validated and never stored in full.
type PaymentInput struct {
	Method         enums.PaymentMethod `json:"method"`
	CardNumber     string              `json:"cardNumber,omitempty"`
	CardholderName string              `json:"cardName,omitempty"`
	CardExpiry     string              `json:"expiryDate,omitempty"`
	CVV            string              `json:"cvv,omitempty"`
}

// Selection drops the sensitive card fields, keeping only the last four
// digits of the card number.
func (in PaymentInput) Selection() PaymentSelection {
	sel := PaymentSelection{Method: in.Method}
	if in.Method != enums.PaymentMethodCreditCard {
		return sel
	}
	sel.CardholderName = strings.TrimSpace(in.CardholderName)
	sel.CardExpiry = strings.TrimSpace(in.CardExpiry)

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, in.CardNumber)
	if len(digits) >= 4 {
		sel.CardLast4 = digits[len(digits)-4:]
	}
	return sel
}

// PaymentSelection is the stored payment choice.
type PaymentSelection struct {
	Method         enums.PaymentMethod `json:"method"`
	CardholderName string              `json:"cardholderName,omitempty"`
	CardLast4      string              `json:"cardLast4,omitempty"`
	CardExpiry     string              `json:"cardExpiry,omitempty"`
}

// Pricing is the fee breakdown computed at placement time.
type Pricing struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee"`
	ServiceCharge decimal.Decimal `json:"serviceCharge"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
}
