//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.OrderItem{},
		&models.Order{},
		&models.Review{},
		&models.WatchlistItem{},
		&models.Coupon{},
		&models.Book{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresConcurrentStockDecrement(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	book := createTestBook(t, db, "pg-last-units", 500, 5)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Transaction(func(tx *gorm.DB) error {
				affected, err := NewBookRepository(db).WithTx(tx).DecrementStock(book.ID, 1)
				if err != nil {
					return err
				}
				if affected == 1 {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
				return nil
			})
			if err != nil {
				t.Errorf("decrement transaction failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 5 {
		t.Fatalf("exactly 5 decrements should succeed, got %d", succeeded)
	}
	var reloaded models.Book
	if err := db.First(&reloaded, book.ID).Error; err != nil {
		t.Fatalf("reload book failed: %v", err)
	}
	if reloaded.Stock != 0 {
		t.Fatalf("stock must end at zero, got %d", reloaded.Stock)
	}
}

func TestPostgresSearchAndAnalytics(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	createTestBook(t, db, "pg-clean-code", 850, 10)

	books, total, err := NewBookRepository(db).List(BookListFilter{Search: "clean", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("postgres ILIKE search failed: %v", err)
	}
	if total != 1 || len(books) != 1 {
		t.Fatalf("postgres search want 1 row got %d", total)
	}

	orders := NewOrderRepository(db)
	createTestOrder(t, orders, "RR-20260101-PG0001", "01700000000", "PG", &books[0], 2)
	now := time.Now()
	trends, err := NewAnalyticsRepository(db).GetDailyTrends(now.Add(-24*time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("postgres daily trends failed: %v", err)
	}
	if len(trends) == 0 || trends[0].Orders != 1 {
		t.Fatalf("unexpected postgres trends: %+v", trends)
	}
	_, err = NewAnalyticsRepository(db).CountOrders(constants.OrderStatusPending)
	if err != nil {
		t.Fatalf("postgres count orders failed: %v", err)
	}
}
