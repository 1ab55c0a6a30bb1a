package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// CatalogService serves the inventory listing for display, read through the
// cache when one is configured. Cart stock checks never go through here.
type CatalogService struct {
	db     port.CartRepository
	cache  port.CacheRepository
	logger *zap.Logger
}

func NewCatalogService(db port.CartRepository, cache port.CacheRepository, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{db: db, cache: cache, logger: logger}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.InventoryItem, error) {
	if s.cache != nil {
		items, ok, err := s.cache.GetCatalog(ctx)
		switch {
		case err != nil:
			s.logger.Warn("catalog cache read failed", zap.Error(err))
		case ok:
			return items, nil
		}
	}

	items, err := s.db.ListInventory(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCatalog(ctx, items); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (domain.InventoryItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return domain.InventoryItem{}, fmt.Errorf("%w: id %d", ErrInventoryNotFound, id)
}
