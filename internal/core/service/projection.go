package service

import (
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

const currencyPlaces = 2

func IndexInventory(items []domain.InventoryItem) map[int64]domain.InventoryItem {
	index := make(map[int64]domain.InventoryItem, len(items))
	for _, item := range items {
		index[item.ID] = item
	}
	return index
}

// Project decorates lines with their inventory and computes subtotals and the
// cart total, rounded half-up to cents. It returns the ids of lines whose
// inventory item is missing; those lines are not part of the view.
func Project(lines []domain.CartLine, inventory map[int64]domain.InventoryItem) (domain.CartView, []int64) {
	view := domain.CartView{
		Lines: make([]domain.CartViewLine, 0, len(lines)),
		Total: decimal.Zero,
	}
	var orphans []int64

	for _, line := range lines {
		item, ok := inventory[line.InventoryID]
		if !ok {
			orphans = append(orphans, line.ID)
			continue
		}

		subtotal := Subtotal(item.Price, line.Quantity)
		view.Lines = append(view.Lines, domain.CartViewLine{
			ID:             line.ID,
			InventoryID:    line.InventoryID,
			Quantity:       line.Quantity,
			Name:           item.Name,
			Image:          item.Image,
			Price:          item.Price,
			QuantityOnHand: item.Quantity,
			Headroom:       max(item.Quantity-line.Quantity, 0),
			Subtotal:       subtotal,
		})
		view.Total = view.Total.Add(subtotal)
		view.Count += line.Quantity
	}

	view.Total = view.Total.Round(currencyPlaces)
	return view, orphans
}

// Subtotal is quantity × price rounded to cents. Prices are non-negative so
// decimal's half-away-from-zero rounding is half-up.
func Subtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity))).Round(currencyPlaces)
}
