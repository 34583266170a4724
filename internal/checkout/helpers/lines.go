package helpers

import (
	"github.com/shopspring/decimal"

	"github.com/mkitchen/catering-backend/internal/cart"
	"github.com/mkitchen/catering-backend/internal/orders"
)

// OrderItems freezes cart lines into the denormalised items stored on an
// order record, preserving cart order.
func OrderItems(lines []cart.Line) []orders.Item {
	items := make([]orders.Item, 0, len(lines))
	for _, line := range lines {
		items = append(items, orders.Item{
			ID:        line.Item.ID,
			Name:      line.Item.Name,
			Price:     line.Item.Price,
			Quantity:  line.Quantity,
			LineTotal: line.Subtotal(),
		})
	}
	return items
}

// Subtotal sums the line totals of frozen order items.
func Subtotal(items []orders.Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	return total
}
