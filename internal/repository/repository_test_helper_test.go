package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/readrover/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
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

func createTestBook(t *testing.T, db *gorm.DB, slug string, price int64, stock int) *models.Book {
	t.Helper()
	book := &models.Book{
		Slug:     slug,
		Title:    "Title " + slug,
		Author:   "Author " + slug,
		Language: "Bangla",
		Category: "Programming",
		Tags:     "test,book",
		Price:    price,
		Stock:    stock,
		Active:   true,
	}
	if err := db.Create(book).Error; err != nil {
		t.Fatalf("create book failed: %v", err)
	}
	return book
}
