package domain

import "github.com/shopspring/decimal"

// CartLine is one entry of the shared cart. A line with Quantity 0 is never
// persisted.
type CartLine struct {
	ID          int64 `json:"id"`
	InventoryID int64 `json:"inventoryId"`
	Quantity    int   `json:"quantity"`
}

// CartViewLine is a cart line decorated with the inventory fields the pages
// need and its derived subtotal.
type CartViewLine struct {
	ID             int64           `json:"id"`
	InventoryID    int64           `json:"inventoryId"`
	Quantity       int             `json:"quantity"`
	Name           string          `json:"name"`
	Image          string          `json:"image"`
	Price          decimal.Decimal `json:"price"`
	QuantityOnHand int             `json:"inventoryQuantity"`
	Headroom       int             `json:"headroom"`
	Subtotal       decimal.Decimal `json:"calculatedPrice"`
}

type CartView struct {
	Lines []CartViewLine  `json:"cartItems"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}
