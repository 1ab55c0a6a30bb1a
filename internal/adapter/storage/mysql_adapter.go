package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"strings"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

//go:embed schema.sql
var schemaSQL string

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// mysqlRepo runs the cart queries against a *sql.DB or a *sql.Tx. Inside a
// transaction the finders lock the rows they read.
type mysqlRepo struct {
	q         querier
	forUpdate bool
}

type MySQLAdapter struct {
	mysqlRepo
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{mysqlRepo: mysqlRepo{q: db}, db: db}
}

func (m *MySQLAdapter) WithinTx(ctx context.Context, fn func(repo port.CartRepository) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStoreError("begin tx", err)
	}
	defer tx.Rollback()

	if err := fn(&mysqlRepo{q: tx, forUpdate: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStoreError("commit tx", err)
	}
	return nil
}

func (m *MySQLAdapter) Ping(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return domain.NewStoreError("ping", err)
	}
	return nil
}

// Migrate creates the inventory and cart tables if they do not exist.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return domain.NewStoreError("migrate", err)
		}
	}
	return nil
}

// SeedInventory upserts the given inventory items.
func (m *MySQLAdapter) SeedInventory(ctx context.Context, items []domain.InventoryItem) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStoreError("begin tx", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO inventory (id, name, description, image, price, quantity)
			VALUES (?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				name = VALUES(name), description = VALUES(description), image = VALUES(image),
				price = VALUES(price), quantity = VALUES(quantity)`,
			item.ID, item.Name, item.Description, item.Image, item.Price.StringFixed(2), item.Quantity,
		)
		if err != nil {
			return domain.NewStoreError("seed inventory", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStoreError("commit tx", err)
	}
	return nil
}

func (r *mysqlRepo) lockClause() string {
	if r.forUpdate {
		return " FOR UPDATE"
	}
	return ""
}

func (r *mysqlRepo) FindInventoryByID(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := r.q.QueryRowContext(ctx, `
		SELECT id, name, description, image, price, quantity
		FROM inventory WHERE id = ?`+r.lockClause(), id,
	).Scan(&item.ID, &item.Name, &item.Description, &item.Image, &item.Price, &item.Quantity)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStoreError("query inventory", err)
	}
	return &item, nil
}

func (r *mysqlRepo) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, name, description, image, price, quantity
		FROM inventory ORDER BY id`)
	if err != nil {
		return nil, domain.NewStoreError("list inventory", err)
	}
	defer rows.Close()

	items := []domain.InventoryItem{}
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Image, &item.Price, &item.Quantity); err != nil {
			return nil, domain.NewStoreError("scan inventory", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("list inventory", err)
	}
	return items, nil
}

func (r *mysqlRepo) FindCartLineByID(ctx context.Context, id int64) (*domain.CartLine, error) {
	return r.findCartLine(ctx, "id", id)
}

func (r *mysqlRepo) FindCartLineByInventoryID(ctx context.Context, inventoryID int64) (*domain.CartLine, error) {
	return r.findCartLine(ctx, "inventory_id", inventoryID)
}

func (r *mysqlRepo) findCartLine(ctx context.Context, column string, value int64) (*domain.CartLine, error) {
	var line domain.CartLine
	err := r.q.QueryRowContext(ctx, `
		SELECT id, inventory_id, quantity
		FROM cart WHERE `+column+` = ?`+r.lockClause(), value,
	).Scan(&line.ID, &line.InventoryID, &line.Quantity)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStoreError("query cart line", err)
	}
	return &line, nil
}

func (r *mysqlRepo) InsertCartLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error) {
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO cart (inventory_id, quantity) VALUES (?, ?)`,
		line.InventoryID, line.Quantity,
	)
	if err != nil {
		return domain.CartLine{}, domain.NewStoreError("insert cart line", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return domain.CartLine{}, domain.NewStoreError("insert cart line", err)
	}
	line.ID = id
	return line, nil
}

// UpdateCartLine does not check affected rows: MySQL reports 0 when the
// values are unchanged.
func (r *mysqlRepo) UpdateCartLine(ctx context.Context, line domain.CartLine) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE cart SET inventory_id = ?, quantity = ? WHERE id = ?`,
		line.InventoryID, line.Quantity, line.ID,
	)
	if err != nil {
		return domain.NewStoreError("update cart line", err)
	}
	return nil
}

func (r *mysqlRepo) DeleteCartLine(ctx context.Context, id int64) (bool, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM cart WHERE id = ?`, id)
	if err != nil {
		return false, domain.NewStoreError("delete cart line", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, domain.NewStoreError("delete cart line", err)
	}
	return rows > 0, nil
}

func (r *mysqlRepo) DeleteAllCartLines(ctx context.Context) (int64, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM cart`)
	if err != nil {
		return 0, domain.NewStoreError("clear cart", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, domain.NewStoreError("clear cart", err)
	}
	return rows, nil
}

func (r *mysqlRepo) ListCartLines(ctx context.Context) ([]domain.CartLine, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, inventory_id, quantity FROM cart ORDER BY id`)
	if err != nil {
		return nil, domain.NewStoreError("list cart lines", err)
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ID, &line.InventoryID, &line.Quantity); err != nil {
			return nil, domain.NewStoreError("scan cart line", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("list cart lines", err)
	}
	return lines, nil
}
