package service

import (
	"strings"

	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"

	"gorm.io/gorm"
)

const bookReviewsLimit = 50

// ReviewService 图书评价
type ReviewService struct {
	repo     repository.ReviewRepository
	bookRepo repository.BookRepository
}

// NewReviewService 创建评价服务
func NewReviewService(repo repository.ReviewRepository, bookRepo repository.BookRepository) *ReviewService {
	return &ReviewService{repo: repo, bookRepo: bookRepo}
}

// ReviewInput 评价输入
type ReviewInput struct {
	BookID  uint
	Name    string
	Rating  int
	Comment string
	UserID  *uint
}

// Create 写入评价并在同一事务内重算图书评分
func (s *ReviewService) Create(input ReviewInput) (*models.Review, error) {
	review := &models.Review{
		BookID:  input.BookID,
		UserID:  input.UserID,
		Name:    strings.TrimSpace(input.Name),
		Rating:  input.Rating,
		Comment: strings.TrimSpace(input.Comment),
	}
	fields := map[string]string{}
	if n := len([]rune(review.Name)); n < 2 || n > 80 {
		fields["name"] = "length must be between 2 and 80"
	}
	if review.Rating < 1 || review.Rating > 5 {
		fields["rating"] = "must be between 1 and 5"
	}
	if n := len([]rune(review.Comment)); n < 2 || n > 300 {
		fields["comment"] = "length must be between 2 and 300"
	}
	if len(fields) > 0 {
		return nil, &FieldError{Fields: fields}
	}

	err := s.bookRepo.Transaction(func(tx *gorm.DB) error {
		bookRepo := s.bookRepo.WithTx(tx)
		reviewRepo := s.repo.WithTx(tx)

		book, err := bookRepo.GetByID(review.BookID)
		if err != nil {
			return err
		}
		if book == nil {
			return ErrBookNotFound
		}
		if err := reviewRepo.Create(review); err != nil {
			return err
		}
		sum, count, err := reviewRepo.Aggregate(review.BookID)
		if err != nil {
			return err
		}
		return bookRepo.UpdateRating(review.BookID, models.RoundRating(sum, count), int(count))
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("review_created", "book_id", review.BookID, "rating", review.Rating)
	return review, nil
}

// ListForBook 上架图书的最近评价
func (s *ReviewService) ListForBook(slug string) ([]models.Review, error) {
	book, err := s.bookRepo.GetBySlug(strings.TrimSpace(slug), true)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return s.repo.ListByBook(book.ID, bookReviewsLimit)
}
