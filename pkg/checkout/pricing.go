package checkout

import "github.com/shopspring/decimal"

var (
	// DeliveryFee is charged once per order regardless of size.
	DeliveryFee = decimal.RequireFromString("25.00")
	// ServiceChargeRate applies to the cart subtotal.
	ServiceChargeRate = decimal.RequireFromString("0.10")
	// TaxRate applies to the cart subtotal only, not to fees.
	TaxRate = decimal.RequireFromString("0.085")
)

// ComputePricing derives the order amounts from the cart subtotal. Amounts
// are exact; round only when rendering.
func ComputePricing(subtotal decimal.Decimal) Pricing {
	service := subtotal.Mul(ServiceChargeRate)
	tax := subtotal.Mul(TaxRate)
	return Pricing{
		Subtotal:      subtotal,
		DeliveryFee:   DeliveryFee,
		ServiceCharge: service,
		Tax:           tax,
		Total:         subtotal.Add(DeliveryFee).Add(service).Add(tax),
	}
}
