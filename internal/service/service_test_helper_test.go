package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedBook(t *testing.T, db *gorm.DB, slug string, price int64, salePrice *int64, stock int) *models.Book {
	t.Helper()
	book := &models.Book{
		Slug:      slug,
		Title:     "Title " + slug,
		Author:    "Author " + slug,
		Language:  constants.BookLanguageDefault,
		Category:  "Fiction",
		Price:     price,
		SalePrice: salePrice,
		Stock:     stock,
		Active:    true,
	}
	if err := db.Create(book).Error; err != nil {
		t.Fatalf("create book failed: %v", err)
	}
	return book
}

func seedCoupon(t *testing.T, db *gorm.DB, coupon models.Coupon) *models.Coupon {
	t.Helper()
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	return &coupon
}

func reloadBook(t *testing.T, db *gorm.DB, id uint) models.Book {
	t.Helper()
	var book models.Book
	if err := db.First(&book, id).Error; err != nil {
		t.Fatalf("reload book failed: %v", err)
	}
	return book
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count rows failed: %v", err)
	}
	return count
}
