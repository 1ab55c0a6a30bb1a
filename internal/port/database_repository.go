package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

// CartRepository is the set of reads and writes the cart engine performs.
// Finders return nil, nil when the row does not exist. Every other failure
// is a *domain.StoreError.
type CartRepository interface {
	// FindInventoryByID returns the inventory item, locking its row when
	// called inside a transaction
	FindInventoryByID(ctx context.Context, id int64) (*domain.InventoryItem, error)

	ListInventory(ctx context.Context) ([]domain.InventoryItem, error)

	FindCartLineByID(ctx context.Context, id int64) (*domain.CartLine, error)

	FindCartLineByInventoryID(ctx context.Context, inventoryID int64) (*domain.CartLine, error)

	// InsertCartLine persists a new line and returns it with its assigned ID
	InsertCartLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error)

	UpdateCartLine(ctx context.Context, line domain.CartLine) error

	// DeleteCartLine reports whether a line was removed
	DeleteCartLine(ctx context.Context, id int64) (bool, error)

	// DeleteAllCartLines returns the number of lines removed
	DeleteAllCartLines(ctx context.Context) (int64, error)

	ListCartLines(ctx context.Context) ([]domain.CartLine, error)
}

type DatabaseRepository interface {
	CartRepository

	// WithinTx runs fn against a transactional view of the store. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(repo CartRepository) error) error

	Ping(ctx context.Context) error
}
