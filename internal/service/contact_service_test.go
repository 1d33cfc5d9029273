package service

import (
	"errors"
	"testing"
	"time"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"
)

func TestContactServiceLifecycle(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewContactService(repository.NewContactRepository(db))
	fixed := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	message, err := svc.Submit(ContactInput{
		Name:    "Farhana",
		Email:   "Farhana@Example.com",
		Subject: "Missing book",
		Message: "My order arrived without the second book.",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if message.Status != constants.ContactStatusNew || message.Email != "farhana@example.com" {
		t.Fatalf("unexpected message: %+v", message)
	}

	if err := svc.UpdateStatus(message.ID, "resolved"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	var stored models.ContactMessage
	if err := db.First(&stored, message.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.Status != constants.ContactStatusResolved || stored.ResolvedAt == nil {
		t.Fatalf("expected resolved with timestamp: %+v", stored)
	}

	if err := svc.UpdateStatus(message.ID, constants.ContactStatusInProgress); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if err := db.First(&stored, message.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.ResolvedAt != nil {
		t.Fatalf("resolved_at should be cleared")
	}

	inbox, err := svc.ListInbox("in_progress", 0)
	if err != nil {
		t.Fatalf("list inbox failed: %v", err)
	}
	if len(inbox) != 1 {
		t.Fatalf("expected 1 message, got %d", len(inbox))
	}
	if _, err := svc.ListInbox("ARCHIVED", 10); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if err := svc.UpdateStatus(9999, constants.ContactStatusNew); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected message not found, got %v", err)
	}
}

func TestContactServiceValidation(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewContactService(repository.NewContactRepository(db))

	_, err := svc.Submit(ContactInput{Name: "A", Email: "bad", Subject: "x", Message: "short"})
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected field error, got %v", err)
	}
	for _, field := range []string{"name", "email", "subject", "message"} {
		if _, ok := fieldErr.Fields[field]; !ok {
			t.Fatalf("missing %s in %+v", field, fieldErr.Fields)
		}
	}
}

func TestNewsletterSubscribe(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewNewsletterService(repository.NewNewsletterRepository(db))

	already, err := svc.Subscribe("Reader@Example.com", "footer")
	if err != nil || already {
		t.Fatalf("first subscribe: already=%v err=%v", already, err)
	}
	already, err = svc.Subscribe("reader@example.com", "")
	if err != nil || !already {
		t.Fatalf("second subscribe: already=%v err=%v", already, err)
	}
	if _, err := svc.Subscribe("nope", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWatchlistService(t *testing.T) {
	db := setupServiceTestDB(t)
	book := seedBook(t, db, "watched", 300, nil, 0)
	svc := NewWatchlistService(repository.NewWatchlistRepository(db), repository.NewBookRepository(db))

	if _, err := svc.Add("guest@example.com", book.ID, nil); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.Add("GUEST@example.com", book.ID, nil); err != nil {
		t.Fatalf("duplicate add should be idempotent: %v", err)
	}
	items, err := svc.List("guest@example.com", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 || items[0].Book == nil || items[0].Book.Slug != "watched" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if _, err := svc.List("", 0); !errors.Is(err, ErrWatchlistIdentity) {
		t.Fatalf("expected identity error, got %v", err)
	}
	if _, err := svc.Add("guest@example.com", 9999, nil); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("expected book not found, got %v", err)
	}
	if err := svc.Remove("guest@example.com", book.ID, 0); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	items, err = svc.List("guest@example.com", 0)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty list, got %d err=%v", len(items), err)
	}
}
