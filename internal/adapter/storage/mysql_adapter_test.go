package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

var (
	inventoryColumns = []string{"id", "name", "description", "image", "price", "quantity"}
	cartColumns      = []string{"id", "inventory_id", "quantity"}
)

func newMockAdapter(t *testing.T) (*MySQLAdapter, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMySQLAdapter(db), mock
}

func TestMySQLAdapter_FindInventoryByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		adapter, mock := newMockAdapter(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM inventory WHERE id = ?")).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(inventoryColumns).
				AddRow(int64(1), "Stratocaster", "Iconic.", "strat.jpg", "599.99", int64(3)))

		item, err := adapter.FindInventoryByID(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "Stratocaster", item.Name)
		assert.True(t, decimal.RequireFromString("599.99").Equal(item.Price))
		assert.Equal(t, 3, item.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not_found", func(t *testing.T) {
		adapter, mock := newMockAdapter(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM inventory WHERE id = ?")).
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows(inventoryColumns))

		item, err := adapter.FindInventoryByID(ctx, 99)
		assert.NoError(t, err)
		assert.Nil(t, item)
	})

	t.Run("driver_error_is_store_unavailable", func(t *testing.T) {
		adapter, mock := newMockAdapter(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM inventory WHERE id = ?")).
			WithArgs(1).
			WillReturnError(errors.New("connection refused"))

		_, err := adapter.FindInventoryByID(ctx, 1)
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}

func TestMySQLAdapter_WithinTx_LocksRowsAndCommits(t *testing.T) {
	ctx := context.Background()
	adapter, mock := newMockAdapter(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM inventory WHERE id = ? FOR UPDATE")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(inventoryColumns).
			AddRow(int64(5), "Ukulele", "Tenor.", "ukulele.jpg", "99.99", int64(15)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM cart WHERE inventory_id = ? FOR UPDATE")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(cartColumns))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cart (inventory_id, quantity) VALUES (?, ?)")).
		WithArgs(5, 1).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	var inserted domain.CartLine
	err := adapter.WithinTx(ctx, func(repo port.CartRepository) error {
		item, err := repo.FindInventoryByID(ctx, 5)
		if err != nil {
			return err
		}
		line, err := repo.FindCartLineByInventoryID(ctx, item.ID)
		if err != nil {
			return err
		}
		assert.Nil(t, line)

		inserted, err = repo.InsertCartLine(ctx, domain.CartLine{InventoryID: 5, Quantity: 1})
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, domain.CartLine{ID: 42, InventoryID: 5, Quantity: 1}, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAdapter_WithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	adapter, mock := newMockAdapter(t)
	errValidation := errors.New("validation failed")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := adapter.WithinTx(ctx, func(port.CartRepository) error {
		return errValidation
	})

	assert.ErrorIs(t, err, errValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAdapter_WithinTx_BeginFailure(t *testing.T) {
	adapter, mock := newMockAdapter(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	err := adapter.WithinTx(context.Background(), func(port.CartRepository) error {
		t.Fatal("fn must not run without a transaction")
		return nil
	})

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestMySQLAdapter_UpdateCartLine(t *testing.T) {
	adapter, mock := newMockAdapter(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cart SET inventory_id = ?, quantity = ? WHERE id = ?")).
		WithArgs(3, 2, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.UpdateCartLine(context.Background(), domain.CartLine{ID: 7, InventoryID: 3, Quantity: 2})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAdapter_DeleteCartLine(t *testing.T) {
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		adapter, mock := newMockAdapter(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart WHERE id = ?")).
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := adapter.DeleteCartLine(ctx, 7)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing", func(t *testing.T) {
		adapter, mock := newMockAdapter(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart WHERE id = ?")).
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := adapter.DeleteCartLine(ctx, 99)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMySQLAdapter_DeleteAllCartLines(t *testing.T) {
	adapter, mock := newMockAdapter(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart")).
		WillReturnResult(sqlmock.NewResult(0, 5))

	removed, err := adapter.DeleteAllCartLines(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(5), removed)
}

func TestMySQLAdapter_ListCartLines(t *testing.T) {
	adapter, mock := newMockAdapter(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, inventory_id, quantity FROM cart ORDER BY id")).
		WillReturnRows(sqlmock.NewRows(cartColumns).
			AddRow(int64(505), int64(1), int64(1)).
			AddRow(int64(508), int64(9), int64(3)))

	lines, err := adapter.ListCartLines(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.CartLine{
		{ID: 505, InventoryID: 1, Quantity: 1},
		{ID: 508, InventoryID: 9, Quantity: 3},
	}, lines)
}

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/storefront?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func TestMySQLAdapter_Live_CartRoundTrip(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	require.NoError(t, adapter.Migrate(ctx))
	require.NoError(t, adapter.SeedInventory(ctx, MusicShopCatalog()))

	_, err := adapter.DeleteAllCartLines(ctx)
	require.NoError(t, err)

	line, err := adapter.InsertCartLine(ctx, domain.CartLine{InventoryID: 3, Quantity: 3})
	require.NoError(t, err)
	assert.NotZero(t, line.ID)

	line.Quantity = 2
	require.NoError(t, adapter.UpdateCartLine(ctx, line))

	found, err := adapter.FindCartLineByInventoryID(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, line, *found)

	items, err := adapter.ListInventory(ctx)
	require.NoError(t, err)
	assert.Len(t, items, len(MusicShopCatalog()))

	removed, err := adapter.DeleteAllCartLines(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
