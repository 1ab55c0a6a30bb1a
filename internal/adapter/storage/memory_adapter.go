package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// MemoryAdapter keeps inventory and cart in process memory. Transactions
// are serialised and run against a staged copy that replaces the state only
// on success.
type MemoryAdapter struct {
	mu    sync.Mutex
	state memoryState
}

type memoryState struct {
	inventory  map[int64]domain.InventoryItem
	lines      map[int64]domain.CartLine
	nextLineID int64
}

func NewMemoryAdapter(items []domain.InventoryItem) *MemoryAdapter {
	m := &MemoryAdapter{state: memoryState{
		inventory: make(map[int64]domain.InventoryItem, len(items)),
		lines:     make(map[int64]domain.CartLine),
	}}
	for _, item := range items {
		m.state.inventory[item.ID] = item
	}
	return m
}

func (s memoryState) clone() memoryState {
	c := memoryState{
		inventory:  make(map[int64]domain.InventoryItem, len(s.inventory)),
		lines:      make(map[int64]domain.CartLine, len(s.lines)),
		nextLineID: s.nextLineID,
	}
	for id, item := range s.inventory {
		c.inventory[id] = item
	}
	for id, line := range s.lines {
		c.lines[id] = line
	}
	return c
}

func (m *MemoryAdapter) WithinTx(ctx context.Context, fn func(repo port.CartRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.NewStoreError("begin tx", err)
	}

	staged := m.state.clone()
	if err := fn(&memoryRepo{state: &staged}); err != nil {
		return err
	}
	m.state = staged
	return nil
}

func (m *MemoryAdapter) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError("ping", err)
	}
	return nil
}

// PutInventory adds or replaces an inventory item.
func (m *MemoryAdapter) PutInventory(item domain.InventoryItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.inventory[item.ID] = item
}

// DeleteInventory removes an inventory item and leaves its cart lines in
// place.
func (m *MemoryAdapter) DeleteInventory(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state.inventory, id)
}

func (m *MemoryAdapter) do(ctx context.Context, op string, fn func(r *memoryRepo) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.NewStoreError(op, err)
	}
	return fn(&memoryRepo{state: &m.state})
}

func (m *MemoryAdapter) FindInventoryByID(ctx context.Context, id int64) (item *domain.InventoryItem, err error) {
	err = m.do(ctx, "query inventory", func(r *memoryRepo) error {
		item, err = r.FindInventoryByID(ctx, id)
		return err
	})
	return item, err
}

func (m *MemoryAdapter) ListInventory(ctx context.Context) (items []domain.InventoryItem, err error) {
	err = m.do(ctx, "list inventory", func(r *memoryRepo) error {
		items, err = r.ListInventory(ctx)
		return err
	})
	return items, err
}

func (m *MemoryAdapter) FindCartLineByID(ctx context.Context, id int64) (line *domain.CartLine, err error) {
	err = m.do(ctx, "query cart line", func(r *memoryRepo) error {
		line, err = r.FindCartLineByID(ctx, id)
		return err
	})
	return line, err
}

func (m *MemoryAdapter) FindCartLineByInventoryID(ctx context.Context, inventoryID int64) (line *domain.CartLine, err error) {
	err = m.do(ctx, "query cart line", func(r *memoryRepo) error {
		line, err = r.FindCartLineByInventoryID(ctx, inventoryID)
		return err
	})
	return line, err
}

func (m *MemoryAdapter) InsertCartLine(ctx context.Context, line domain.CartLine) (inserted domain.CartLine, err error) {
	err = m.do(ctx, "insert cart line", func(r *memoryRepo) error {
		inserted, err = r.InsertCartLine(ctx, line)
		return err
	})
	return inserted, err
}

func (m *MemoryAdapter) UpdateCartLine(ctx context.Context, line domain.CartLine) error {
	return m.do(ctx, "update cart line", func(r *memoryRepo) error {
		return r.UpdateCartLine(ctx, line)
	})
}

func (m *MemoryAdapter) DeleteCartLine(ctx context.Context, id int64) (ok bool, err error) {
	err = m.do(ctx, "delete cart line", func(r *memoryRepo) error {
		ok, err = r.DeleteCartLine(ctx, id)
		return err
	})
	return ok, err
}

func (m *MemoryAdapter) DeleteAllCartLines(ctx context.Context) (removed int64, err error) {
	err = m.do(ctx, "clear cart", func(r *memoryRepo) error {
		removed, err = r.DeleteAllCartLines(ctx)
		return err
	})
	return removed, err
}

func (m *MemoryAdapter) ListCartLines(ctx context.Context) (lines []domain.CartLine, err error) {
	err = m.do(ctx, "list cart lines", func(r *memoryRepo) error {
		lines, err = r.ListCartLines(ctx)
		return err
	})
	return lines, err
}

// memoryRepo operates on a state without locking; callers hold the
// adapter mutex.
type memoryRepo struct {
	state *memoryState
}

func (r *memoryRepo) FindInventoryByID(_ context.Context, id int64) (*domain.InventoryItem, error) {
	item, ok := r.state.inventory[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (r *memoryRepo) ListInventory(context.Context) ([]domain.InventoryItem, error) {
	items := make([]domain.InventoryItem, 0, len(r.state.inventory))
	for _, item := range r.state.inventory {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *memoryRepo) FindCartLineByID(_ context.Context, id int64) (*domain.CartLine, error) {
	line, ok := r.state.lines[id]
	if !ok {
		return nil, nil
	}
	return &line, nil
}

func (r *memoryRepo) FindCartLineByInventoryID(_ context.Context, inventoryID int64) (*domain.CartLine, error) {
	for _, line := range r.state.lines {
		if line.InventoryID == inventoryID {
			return &line, nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) InsertCartLine(_ context.Context, line domain.CartLine) (domain.CartLine, error) {
	r.state.nextLineID++
	line.ID = r.state.nextLineID
	r.state.lines[line.ID] = line
	return line, nil
}

// UpdateCartLine ignores unknown ids, matching the MySQL adapter.
func (r *memoryRepo) UpdateCartLine(_ context.Context, line domain.CartLine) error {
	if _, ok := r.state.lines[line.ID]; ok {
		r.state.lines[line.ID] = line
	}
	return nil
}

func (r *memoryRepo) DeleteCartLine(_ context.Context, id int64) (bool, error) {
	if _, ok := r.state.lines[id]; !ok {
		return false, nil
	}
	delete(r.state.lines, id)
	return true, nil
}

func (r *memoryRepo) DeleteAllCartLines(context.Context) (int64, error) {
	removed := int64(len(r.state.lines))
	r.state.lines = make(map[int64]domain.CartLine)
	return removed, nil
}

func (r *memoryRepo) ListCartLines(context.Context) ([]domain.CartLine, error) {
	lines := make([]domain.CartLine, 0, len(r.state.lines))
	for _, line := range r.state.lines {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}
