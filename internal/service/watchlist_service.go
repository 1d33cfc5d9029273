package service

import (
	"strings"

	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"
)

const watchlistLimit = 50

// WatchlistService 到货提醒
type WatchlistService struct {
	repo     repository.WatchlistRepository
	bookRepo repository.BookRepository
}

// NewWatchlistService 创建关注列表服务
func NewWatchlistService(repo repository.WatchlistRepository, bookRepo repository.BookRepository) *WatchlistService {
	return &WatchlistService{repo: repo, bookRepo: bookRepo}
}

// Add 按 (email, book) 去重加入
func (s *WatchlistService) Add(email string, bookID uint, userID *uint) (*models.WatchlistItem, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	book, err := s.bookRepo.GetByID(bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	item := &models.WatchlistItem{
		Email:  normalized,
		BookID: book.ID,
		UserID: userID,
	}
	if err := s.repo.Upsert(item); err != nil {
		return nil, err
	}
	return item, nil
}

// List 登录用户返回本人及邮箱的关注项，游客必须提供邮箱
func (s *WatchlistService) List(email string, userID uint) ([]models.WatchlistItem, error) {
	normalized, err := s.resolveIdentity(email, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.List(normalized, userID, watchlistLimit)
}

// Remove 移除关注项
func (s *WatchlistService) Remove(email string, bookID uint, userID uint) error {
	normalized, err := s.resolveIdentity(email, userID)
	if err != nil {
		return err
	}
	if _, err := s.repo.Remove(bookID, normalized, userID); err != nil {
		return err
	}
	return nil
}

func (s *WatchlistService) resolveIdentity(email string, userID uint) (string, error) {
	if strings.TrimSpace(email) == "" {
		if userID == 0 {
			return "", ErrWatchlistIdentity
		}
		return "", nil
	}
	return NormalizeEmail(email)
}
