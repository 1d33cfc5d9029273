package service

import (
	"strings"

	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"
)

// NewsletterService 邮件订阅
type NewsletterService struct {
	repo repository.NewsletterRepository
}

// NewNewsletterService 创建订阅服务
func NewNewsletterService(repo repository.NewsletterRepository) *NewsletterService {
	return &NewsletterService{repo: repo}
}

// Subscribe 订阅，返回是否已订阅过
func (s *NewsletterService) Subscribe(email, source string) (bool, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return false, err
	}
	source = strings.TrimSpace(source)
	if len(source) > 64 {
		return false, NewFieldError("source", "max 64 characters")
	}
	created, err := s.repo.Subscribe(&models.NewsletterSubscriber{Email: normalized, Source: source})
	if err != nil {
		return false, err
	}
	return !created, nil
}
