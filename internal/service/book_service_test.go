package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"

	"gorm.io/gorm"
)

func newTestBookService(t *testing.T) (*BookService, context.Context) {
	t.Helper()
	db := setupServiceTestDB(t)
	return NewBookService(repository.NewBookRepository(db), time.Minute, 50), context.Background()
}

func TestBookServiceCreateNormalizesSalePrice(t *testing.T) {
	svc, ctx := newTestBookService(t)

	book, err := svc.Create(ctx, BookInput{
		Slug:        "Pather-Panchali",
		Title:       "Pather Panchali",
		Author:      "Bibhutibhushan Bandyopadhyay",
		Category:    "Classic",
		Tags:        " classic, novel ,classic,",
		Description: "A village childhood in Bengal.",
		Price:       500,
		SalePrice:   int64Ptr(600),
		Stock:       4,
	})
	if err != nil {
		t.Fatalf("create book failed: %v", err)
	}
	if book.SalePrice != nil {
		t.Fatalf("sale price above price should be cleared")
	}
	if book.Slug != "pather-panchali" || book.Language != "Bangla" || !book.Active {
		t.Fatalf("unexpected defaults: %+v", book)
	}
	if book.Tags != "classic,novel" {
		t.Fatalf("unexpected tags: %q", book.Tags)
	}

	_, err = svc.Create(ctx, BookInput{Slug: "pather-panchali", Title: "Dup", Author: "Someone", Category: "Classic", Price: 100})
	if !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected slug taken, got %v", err)
	}

	_, err = svc.Create(ctx, BookInput{Slug: "bad slug", Title: "x", Author: "Someone", Category: "Classic", Price: 0})
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected field error, got %v", err)
	}
	for _, field := range []string{"slug", "title", "price"} {
		if _, ok := fieldErr.Fields[field]; !ok {
			t.Fatalf("expected %s in field errors: %+v", field, fieldErr.Fields)
		}
	}
}

func TestBookServiceUpdate(t *testing.T) {
	svc, ctx := newTestBookService(t)
	book, err := svc.Create(ctx, BookInput{Slug: "aranyak", Title: "Aranyak", Author: "Bibhutibhushan", Category: "Classic", Price: 700, Stock: 2})
	if err != nil {
		t.Fatalf("create book failed: %v", err)
	}
	if _, err := svc.Create(ctx, BookInput{Slug: "chander-pahar", Title: "Chander Pahar", Author: "Bibhutibhushan", Category: "Adventure", Price: 400}); err != nil {
		t.Fatalf("create second book failed: %v", err)
	}

	inactive := false
	updated, err := svc.Update(ctx, book.ID, UpdateBookInput{SalePrice: int64Ptr(650), Stock: intPtr(9), Active: &inactive})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.SalePrice == nil || *updated.SalePrice != 650 || updated.Stock != 9 || updated.Active {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if updated.EffectivePrice() != 650 {
		t.Fatalf("unexpected effective price: %d", updated.EffectivePrice())
	}

	updated, err = svc.Update(ctx, book.ID, UpdateBookInput{Price: int64Ptr(600)})
	if err != nil {
		t.Fatalf("update price failed: %v", err)
	}
	if updated.SalePrice != nil {
		t.Fatalf("sale price should be cleared once price drops below it")
	}

	if _, err := svc.Update(ctx, book.ID, UpdateBookInput{Slug: strPtr("chander-pahar")}); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected slug conflict, got %v", err)
	}
	if _, err := svc.Update(ctx, 9999, UpdateBookInput{}); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBookServicePublicQueries(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewBookService(repository.NewBookRepository(db), time.Minute, 50)
	ctx := context.Background()
	first := seedBook(t, db, "first", 300, int64Ptr(250), 3)
	second := seedBook(t, db, "second", 400, nil, 3)
	hidden := seedBook(t, db, "hidden", 400, nil, 3)
	if err := db.Model(hidden).Update("active", false).Error; err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	page, err := svc.ListPublic(ctx, "", "", 1, 100)
	if err != nil {
		t.Fatalf("list public failed: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("expected 2 active books, got %+v", page)
	}

	view, err := svc.GetPublicBySlug(ctx, "first")
	if err != nil {
		t.Fatalf("get by slug failed: %v", err)
	}
	if view.ID != first.ID || view.EffectivePrice != 250 || view.Title != first.Title {
		t.Fatalf("unexpected view: %+v", view)
	}
	if _, err := svc.GetPublicBySlug(ctx, "hidden"); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("expected hidden book not found, got %v", err)
	}

	views, err := svc.ListBySlugs([]string{"second", "missing", "hidden", "first"})
	if err != nil {
		t.Fatalf("list by slugs failed: %v", err)
	}
	if len(views) != 2 || views[0].ID != second.ID || views[1].ID != first.ID {
		t.Fatalf("expected request order [second first], got %+v", views)
	}
	if _, err := svc.ListBySlugs(nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty slugs, got %v", err)
	}
}

func TestBookServiceDeleteRejectsReferencedBook(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewBookService(repository.NewBookRepository(db), time.Minute, 50)
	ctx := context.Background()
	used := seedBook(t, db, "used", 300, nil, 3)
	unused := seedBook(t, db, "unused", 300, nil, 3)

	order := models.Order{OrderNo: "RR-20250101-AAAAAA", Name: "A", Phone: "1", Address: "x", Status: "PENDING", Subtotal: 300, Total: 360}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if err := db.Create(&models.OrderItem{OrderID: order.ID, BookID: used.ID, Quantity: 1, UnitPrice: 300}).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}

	if err := svc.Delete(ctx, used.ID); !errors.Is(err, ErrBookInUse) || !errors.Is(err, ErrConflict) {
		t.Fatalf("expected book in use conflict, got %v", err)
	}
	if err := svc.Delete(ctx, unused.ID); err != nil {
		t.Fatalf("delete unused failed: %v", err)
	}
	if err := svc.Delete(ctx, unused.ID); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func strPtr(v string) *string {
	return &v
}

// orderAfterReadBookRepo 在后台读取图书后插入一笔订单，模拟编辑期间的并发下单
type orderAfterReadBookRepo struct {
	repository.BookRepository
	afterRead func()
}

func (r *orderAfterReadBookRepo) GetByID(id uint) (*models.Book, error) {
	book, err := r.BookRepository.GetByID(id)
	if hook := r.afterRead; hook != nil {
		r.afterRead = nil
		hook()
	}
	return book, err
}

func TestBookServiceUpdateKeepsConcurrentStockAndRating(t *testing.T) {
	db := setupServiceTestDB(t)
	ctx := context.Background()
	book := seedBook(t, db, "padma", 500, nil, 1)
	orders := newTestOrderService(db, nil)

	repo := &orderAfterReadBookRepo{BookRepository: repository.NewBookRepository(db)}
	repo.afterRead = func() {
		if _, err := orders.Place(testPlaceInput(CartLine{BookID: book.ID, Quantity: 1})); err != nil {
			t.Errorf("concurrent order failed: %v", err)
		}
		if err := db.Model(&models.Book{}).Where("id = ?", book.ID).
			Updates(map[string]interface{}{"rating_avg": 4.5, "rating_count": 2}).Error; err != nil {
			t.Errorf("concurrent rating update failed: %v", err)
		}
	}
	svc := NewBookService(repo, time.Minute, 50)

	updated, err := svc.Update(ctx, book.ID, UpdateBookInput{Title: strPtr("Padma Nodir Majhi")})
	if err != nil {
		t.Fatalf("update title failed: %v", err)
	}
	if updated.Title != "Padma Nodir Majhi" || updated.Stock != 0 {
		t.Fatalf("unexpected updated book: %+v", updated)
	}
	stored := reloadBook(t, db, book.ID)
	if stored.Stock != 0 || stored.RatingCount != 2 || stored.RatingAvg != 4.5 {
		t.Fatalf("title edit must not overwrite stock or rating: %+v", stored)
	}
	if stored.Title != "Padma Nodir Majhi" {
		t.Fatalf("title not persisted: %q", stored.Title)
	}
	if _, err := orders.Place(testPlaceInput(CartLine{BookID: book.ID, Quantity: 1})); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("sold out book must reject further orders, got %v", err)
	}
	if got := countRows(t, db, &models.Order{}); got != 1 {
		t.Fatalf("expected exactly one order, got %d", got)
	}
}

func TestBookServiceDeleteChecksReferencesInTransaction(t *testing.T) {
	db := setupServiceTestDB(t)
	ctx := context.Background()
	sold := seedBook(t, db, "sold", 300, nil, 5)
	spare := seedBook(t, db, "spare", 300, nil, 5)
	orders := newTestOrderService(db, nil)

	// 读取后、删除前下单
	repo := &orderAfterReadBookRepo{BookRepository: repository.NewBookRepository(db)}
	repo.afterRead = func() {
		if _, err := orders.Place(testPlaceInput(CartLine{BookID: sold.ID, Quantity: 1})); err != nil {
			t.Errorf("concurrent order failed: %v", err)
		}
	}
	svc := NewBookService(repo, time.Minute, 50)
	if err := svc.Delete(ctx, sold.ID); !errors.Is(err, ErrBookInUse) {
		t.Fatalf("expected book in use, got %v", err)
	}
	if got := countRows(t, db, &models.OrderItem{}); got != 1 {
		t.Fatalf("order item should survive, got %d", got)
	}

	if err := db.Create(&models.WatchlistItem{Email: "reader@example.com", BookID: spare.ID}).Error; err != nil {
		t.Fatalf("create watchlist item failed: %v", err)
	}
	if err := svc.Delete(ctx, spare.ID); err != nil {
		t.Fatalf("delete unreferenced book failed: %v", err)
	}
	if got := countRows(t, db, &models.WatchlistItem{}); got != 0 {
		t.Fatalf("watchlist rows should be removed with the book, got %d", got)
	}
}

type fkViolationBookRepo struct {
	repository.BookRepository
}

func (fkViolationBookRepo) Delete(uint) error {
	return fmt.Errorf("delete book: %w", gorm.ErrForeignKeyViolated)
}

func TestBookServiceDeleteMapsForeignKeyViolation(t *testing.T) {
	db := setupServiceTestDB(t)
	book := seedBook(t, db, "guarded", 300, nil, 1)
	svc := NewBookService(fkViolationBookRepo{BookRepository: repository.NewBookRepository(db)}, time.Minute, 50)

	if err := svc.Delete(context.Background(), book.ID); !errors.Is(err, ErrBookInUse) {
		t.Fatalf("expected foreign key violation to map to book in use, got %v", err)
	}
}
