package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

const (
	inventoryID   = int64(1809)
	initialStock  = 20
	totalRequests = 50
)

func main() {
	driver := flag.String("driver", config.DriverMemory, "store driver: memory or mysql")
	flag.Parse()

	ctx := context.Background()
	item := domain.InventoryItem{
		ID:          inventoryID,
		Name:        "Stress Test Pedal",
		Description: "Overdrive pedal stocked for the stress run.",
		Image:       "pedal.jpg",
		Price:       storage.MusicShopCatalog()[6].Price,
		Quantity:    initialStock,
	}

	var db port.DatabaseRepository
	switch *driver {
	case config.DriverMemory:
		db = storage.NewMemoryAdapter([]domain.InventoryItem{item})
	case config.DriverMySQL:
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		sqlDB, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}
		defer sqlDB.Close()
		sqlDB.SetMaxOpenConns(cfg.MySQLMaxOpen)

		adapter := storage.NewMySQLAdapter(sqlDB)
		if err := adapter.Migrate(ctx); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
		if err := adapter.SeedInventory(ctx, []domain.InventoryItem{item}); err != nil {
			log.Fatalf("failed to seed stress item: %v", err)
		}
		// Clear previous test data
		if line, err := adapter.FindCartLineByInventoryID(ctx, inventoryID); err != nil {
			log.Fatalf("failed to read cart: %v", err)
		} else if line != nil {
			if _, err := adapter.DeleteCartLine(ctx, line.ID); err != nil {
				log.Fatalf("failed to reset cart line: %v", err)
			}
		}
		db = adapter
	default:
		log.Fatalf("unknown driver %q", *driver)
	}

	cartService := service.NewCartService(db)

	// Counters
	var successCount atomic.Int32
	var rejectedCount atomic.Int32
	var errorCount atomic.Int32

	// Spawn concurrent adds, one unit each
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := cartService.Add(ctx, service.AddToCartInput{InventoryID: inventoryID, Quantity: 1})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrInsufficientStock):
				rejectedCount.Add(1)
			default:
				errorCount.Add(1)
				log.Printf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	rejected := rejectedCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Store Driver:     %s\n", *driver)
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Rejected:         %d\n", rejected)
	fmt.Printf("Errors:           %d\n", errorCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if success == initialStock && rejected == totalRequests-initialStock {
		fmt.Printf("PASS: Exactly %d adds succeeded, %d rejected\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d rejected, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, rejected)
	}

	// Verify the line never exceeded stock
	line, err := db.FindCartLineByInventoryID(ctx, inventoryID)
	if err != nil {
		log.Fatalf("failed to read final cart line: %v", err)
	}
	final := 0
	if line != nil {
		final = line.Quantity
	}
	fmt.Printf("Final Line Quantity: %d\n", final)

	if final == initialStock {
		fmt.Println("PASS: Cart line filled to stock and no further")
	} else {
		fmt.Printf("FAIL: Expected quantity %d, got %d\n", initialStock, final)
	}
}
