package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/im7mortal/kmutex"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInventoryNotFound = fmt.Errorf("inventory item %w", ErrNotFound)
	ErrCartLineNotFound  = fmt.Errorf("cart line %w", ErrNotFound)
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrDuplicateLine     = errors.New("inventory item already has a cart line")
	ErrDuplicateRequest  = errors.New("duplicate request")
)

const idempotencyKeyPrefix = "idempotency:cart:add:"

// AddToCartInput is the normalised add request. A zero Quantity means 1.
type AddToCartInput struct {
	InventoryID    int64
	Quantity       int
	IdempotencyKey string
}

// UpdateCartLineInput replaces the quantity of a line and, when InventoryID
// is set, re-points it at another inventory item.
type UpdateCartLineInput struct {
	LineID      int64
	Quantity    int
	InventoryID *int64
}

type CartService struct {
	db     port.DatabaseRepository
	cache  port.CacheRepository
	events port.EventPublisher
	locks  *kmutex.Kmutex
	logger *zap.Logger
	now    func() time.Time
}

type CartServiceOption func(*CartService)

// WithCache enables idempotency keys on add.
func WithCache(cache port.CacheRepository) CartServiceOption {
	return func(s *CartService) { s.cache = cache }
}

func WithEventPublisher(events port.EventPublisher) CartServiceOption {
	return func(s *CartService) { s.events = events }
}

func WithLogger(logger *zap.Logger) CartServiceOption {
	return func(s *CartService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewCartService(db port.DatabaseRepository, opts ...CartServiceOption) *CartService {
	s := &CartService{
		db:     db,
		locks:  kmutex.New(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add increments the line for in.InventoryID, creating it if needed. The
// resulting quantity must not exceed the item's stock.
func (s *CartService) Add(ctx context.Context, in AddToCartInput) (domain.CartLine, error) {
	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return domain.CartLine{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	claimed, err := s.claimIdempotency(ctx, in.IdempotencyKey)
	if err != nil {
		return domain.CartLine{}, err
	}

	s.locks.Lock(in.InventoryID)
	defer s.locks.Unlock(in.InventoryID)

	var (
		line    domain.CartLine
		created bool
	)
	err = s.db.WithinTx(ctx, func(repo port.CartRepository) error {
		item, err := repo.FindInventoryByID(ctx, in.InventoryID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: id %d", ErrInventoryNotFound, in.InventoryID)
		}

		existing, err := repo.FindCartLineByInventoryID(ctx, in.InventoryID)
		if err != nil {
			return err
		}

		inCart := 0
		if existing != nil {
			inCart = existing.Quantity
		}
		// inCart+quantity can overflow int; compare against what is left
		if quantity > item.Quantity-inCart {
			return fmt.Errorf("%w: inventory %d has %d on hand, %d in cart, %d requested",
				ErrInsufficientStock, item.ID, item.Quantity, inCart, quantity)
		}
		newQuantity := inCart + quantity

		if existing == nil {
			created = true
			line, err = repo.InsertCartLine(ctx, domain.CartLine{
				InventoryID: item.ID,
				Quantity:    newQuantity,
			})
			return err
		}

		line = *existing
		line.Quantity = newQuantity
		return repo.UpdateCartLine(ctx, line)
	})
	if err != nil {
		if claimed {
			s.releaseIdempotency(ctx, in.IdempotencyKey)
		}
		return domain.CartLine{}, err
	}

	eventType := domain.CartLineUpdated
	if created {
		eventType = domain.CartLineAdded
	}
	s.logger.Info("cart line added",
		zap.Int64("line_id", line.ID),
		zap.Int64("inventory_id", line.InventoryID),
		zap.Int("quantity", line.Quantity),
		zap.Bool("created", created),
	)
	s.publish(ctx, domain.CartEvent{
		Type:        eventType,
		LineID:      line.ID,
		InventoryID: line.InventoryID,
		Quantity:    line.Quantity,
	})

	return line, nil
}

// Update sets the quantity of a line absolutely. Quantity 0 removes the line
// and the returned line carries Quantity 0.
func (s *CartService) Update(ctx context.Context, in UpdateCartLineInput) (domain.CartLine, error) {
	if in.Quantity < 0 {
		return domain.CartLine{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, in.Quantity)
	}

	current, err := s.db.FindCartLineByID(ctx, in.LineID)
	if err != nil {
		return domain.CartLine{}, err
	}
	if current == nil {
		return domain.CartLine{}, fmt.Errorf("%w: id %d", ErrCartLineNotFound, in.LineID)
	}

	target := current.InventoryID
	if in.InventoryID != nil {
		target = *in.InventoryID
	}
	unlock := s.lockPair(current.InventoryID, target)
	defer unlock()

	var (
		line    domain.CartLine
		removed bool
	)
	err = s.db.WithinTx(ctx, func(repo port.CartRepository) error {
		existing, err := repo.FindCartLineByID(ctx, in.LineID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: id %d", ErrCartLineNotFound, in.LineID)
		}

		item, err := repo.FindInventoryByID(ctx, target)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: id %d", ErrInventoryNotFound, target)
		}

		if target != existing.InventoryID {
			other, err := repo.FindCartLineByInventoryID(ctx, target)
			if err != nil {
				return err
			}
			if other != nil && other.ID != existing.ID {
				return fmt.Errorf("%w: inventory %d is on line %d", ErrDuplicateLine, target, other.ID)
			}
		}

		line = *existing
		if in.Quantity == 0 {
			removed = true
			line.Quantity = 0
			_, err := repo.DeleteCartLine(ctx, existing.ID)
			return err
		}

		if in.Quantity > item.Quantity {
			return insufficientStock(item, in.Quantity)
		}

		line.InventoryID = target
		line.Quantity = in.Quantity
		return repo.UpdateCartLine(ctx, line)
	})
	if err != nil {
		return domain.CartLine{}, err
	}

	eventType := domain.CartLineUpdated
	if removed {
		eventType = domain.CartLineRemoved
	}
	s.logger.Info("cart line updated",
		zap.Int64("line_id", line.ID),
		zap.Int64("inventory_id", line.InventoryID),
		zap.Int("quantity", line.Quantity),
	)
	s.publish(ctx, domain.CartEvent{
		Type:        eventType,
		LineID:      line.ID,
		InventoryID: line.InventoryID,
		Quantity:    line.Quantity,
	})

	return line, nil
}

func (s *CartService) Remove(ctx context.Context, lineID int64) error {
	var line domain.CartLine
	err := s.db.WithinTx(ctx, func(repo port.CartRepository) error {
		existing, err := repo.FindCartLineByID(ctx, lineID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: id %d", ErrCartLineNotFound, lineID)
		}
		line = *existing

		ok, err := repo.DeleteCartLine(ctx, lineID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: id %d", ErrCartLineNotFound, lineID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("cart line removed", zap.Int64("line_id", lineID), zap.Int64("inventory_id", line.InventoryID))
	s.publish(ctx, domain.CartEvent{
		Type:        domain.CartLineRemoved,
		LineID:      line.ID,
		InventoryID: line.InventoryID,
	})
	return nil
}

// Clear empties the cart and returns how many lines were removed.
func (s *CartService) Clear(ctx context.Context) (int64, error) {
	removed, err := s.db.DeleteAllCartLines(ctx)
	if err != nil {
		return 0, err
	}

	s.logger.Info("cart cleared", zap.Int64("removed", removed))
	s.publish(ctx, domain.CartEvent{Type: domain.CartCleared, Removed: removed})
	return removed, nil
}

// View projects the cart for display. Lines pointing at missing inventory
// are left out.
func (s *CartService) View(ctx context.Context) (domain.CartView, error) {
	lines, err := s.db.ListCartLines(ctx)
	if err != nil {
		return domain.CartView{}, err
	}
	items, err := s.db.ListInventory(ctx)
	if err != nil {
		return domain.CartView{}, err
	}

	view, orphans := Project(lines, IndexInventory(items))
	for _, id := range orphans {
		s.logger.Debug("skipping cart line with unknown inventory", zap.Int64("line_id", id))
	}
	return view, nil
}

// Count is the total quantity across live cart lines.
func (s *CartService) Count(ctx context.Context) (int, error) {
	view, err := s.View(ctx)
	if err != nil {
		return 0, err
	}
	return view.Count, nil
}

// lockPair takes the keyed locks for a and b in ascending order.
func (s *CartService) lockPair(a, b int64) func() {
	if a == b {
		s.locks.Lock(a)
		return func() { s.locks.Unlock(a) }
	}
	if b < a {
		a, b = b, a
	}
	s.locks.Lock(a)
	s.locks.Lock(b)
	return func() {
		s.locks.Unlock(b)
		s.locks.Unlock(a)
	}
}

func (s *CartService) claimIdempotency(ctx context.Context, key string) (bool, error) {
	if key == "" || s.cache == nil {
		return false, nil
	}

	ok, err := s.cache.SetIdempotency(ctx, idempotencyKeyPrefix+key)
	if err != nil {
		return false, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return false, ErrDuplicateRequest
	}
	return true, nil
}

func (s *CartService) releaseIdempotency(ctx context.Context, key string) {
	if err := s.cache.ReleaseIdempotency(ctx, idempotencyKeyPrefix+key); err != nil {
		s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

// publish is best effort: the cart change has already committed.
func (s *CartService) publish(ctx context.Context, event domain.CartEvent) {
	if s.events == nil {
		return
	}

	event.ID = uuid.NewString()
	event.OccurredAt = s.now().UTC()
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish cart event",
			zap.String("type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
	}
}

func insufficientStock(item *domain.InventoryItem, requested int) error {
	return fmt.Errorf("%w: inventory %d has %d on hand, %d requested",
		ErrInsufficientStock, item.ID, item.Quantity, requested)
}
