package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type CacheRepository interface {
	// GetCatalog returns the cached inventory listing, ok is false on a miss
	GetCatalog(ctx context.Context) (items []domain.InventoryItem, ok bool, err error)

	SetCatalog(ctx context.Context, items []domain.InventoryItem) error

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency drops a key so a failed request can be retried
	ReleaseIdempotency(ctx context.Context, key string) error
}
