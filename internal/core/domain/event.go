package domain

import "time"

type CartEventType string

const (
	CartLineAdded   CartEventType = "cart.line.added"
	CartLineUpdated CartEventType = "cart.line.updated"
	CartLineRemoved CartEventType = "cart.line.removed"
	CartCleared     CartEventType = "cart.cleared"
)

type CartEvent struct {
	ID          string        `json:"id"`
	Type        CartEventType `json:"type"`
	LineID      int64         `json:"line_id,omitempty"`
	InventoryID int64         `json:"inventory_id,omitempty"`
	Quantity    int           `json:"quantity"`
	Removed     int64         `json:"removed,omitempty"`
	OccurredAt  time.Time     `json:"occurred_at"`
}
