package domain

import "github.com/shopspring/decimal"

type InventoryItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"` // on hand, never decremented by the cart
}
