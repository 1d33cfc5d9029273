package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/readrover/internal/cache"
	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

const (
	defaultCatalogPageSize = 20
	maxSlugLookup          = 20
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// BookService 图书目录与后台维护
type BookService struct {
	repo        repository.BookRepository
	cacheTTL    time.Duration
	maxPageSize int
}

// NewBookService 创建图书服务
func NewBookService(repo repository.BookRepository, cacheTTL time.Duration, maxPageSize int) *BookService {
	if maxPageSize <= 0 {
		maxPageSize = 50
	}
	return &BookService{repo: repo, cacheTTL: cacheTTL, maxPageSize: maxPageSize}
}

// BookView 前台图书视图
type BookView struct {
	ID             uint      `json:"id"`
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	Publisher      string    `json:"publisher,omitempty"`
	Language       string    `json:"language"`
	Category       string    `json:"category"`
	Tags           string    `json:"tags"`
	Description    string    `json:"description,omitempty"`
	Price          int64     `json:"price"`
	SalePrice      *int64    `json:"sale_price"`
	EffectivePrice int64     `json:"effective_price"`
	Stock          int       `json:"stock"`
	CoverURL       string    `json:"cover_url,omitempty"`
	RatingAvg      float64   `json:"rating_avg"`
	RatingCount    int       `json:"rating_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// BookPage 图书分页结果（缓存单元）
type BookPage struct {
	Items []BookView `json:"items"`
	Total int64      `json:"total"`
}

// BookInput 创建图书输入
type BookInput struct {
	Slug        string
	Title       string
	Author      string
	Publisher   string
	Language    string
	Category    string
	Tags        string
	Description string
	Price       int64
	SalePrice   *int64
	Stock       int
	CoverURL    string
	Active      *bool
}

// UpdateBookInput 更新图书输入（nil 表示不修改）
type UpdateBookInput struct {
	Slug           *string
	Title          *string
	Author         *string
	Publisher      *string
	Language       *string
	Category       *string
	Tags           *string
	Description    *string
	Price          *int64
	SalePrice      *int64
	ClearSalePrice bool
	Stock          *int
	CoverURL       *string
	Active         *bool
}

func toBookView(book *models.Book) BookView {
	var view BookView
	if err := copier.Copy(&view, book); err != nil {
		logger.Warnw("book_view_copy_failed", "book_id", book.ID, "error", err)
	}
	view.EffectivePrice = book.EffectivePrice()
	return view
}

func toBookViews(books []models.Book) []BookView {
	views := make([]BookView, 0, len(books))
	for i := range books {
		views = append(views, toBookView(&books[i]))
	}
	return views
}

// PageSize 前台列表实际每页条数
func (s *BookService) PageSize(pageSize int) int {
	if pageSize <= 0 {
		return defaultCatalogPageSize
	}
	if pageSize > s.maxPageSize {
		return s.maxPageSize
	}
	return pageSize
}

// ListPublic 前台图书列表（仅上架，最新在前）
func (s *BookService) ListPublic(ctx context.Context, search, category string, page, pageSize int) (*BookPage, error) {
	if page <= 0 {
		page = 1
	}
	pageSize = s.PageSize(pageSize)
	search = strings.TrimSpace(search)
	category = strings.TrimSpace(category)

	cacheKey := cache.CatalogListKey(cache.CatalogVersion(ctx), search, category, page, pageSize)
	var cached BookPage
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	books, total, err := s.repo.List(repository.BookListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   search,
		Category: category,
		Status:   constants.BookFilterActive,
		OrderBy:  "created",
	})
	if err != nil {
		return nil, err
	}
	result := &BookPage{Items: toBookViews(books), Total: total}
	_ = cache.SetJSON(ctx, cacheKey, result, s.cacheTTL)
	return result, nil
}

// GetPublicBySlug 前台图书详情
func (s *BookService) GetPublicBySlug(ctx context.Context, slug string) (*BookView, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrBookNotFound
	}
	cacheKey := cache.CatalogBookKey(cache.CatalogVersion(ctx), slug)
	var cached BookView
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	book, err := s.repo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	view := toBookView(book)
	_ = cache.SetJSON(ctx, cacheKey, view, s.cacheTTL)
	return &view, nil
}

// ListBySlugs 按请求顺序返回上架图书，未命中的 slug 忽略
func (s *BookService) ListBySlugs(slugs []string) ([]BookView, error) {
	if len(slugs) == 0 || len(slugs) > maxSlugLookup {
		return nil, NewFieldError("slugs", "must contain 1 to 20 items")
	}
	cleaned := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		slug = strings.TrimSpace(slug)
		if slug == "" {
			return nil, NewFieldError("slugs", "must not contain blank values")
		}
		cleaned = append(cleaned, slug)
	}
	books, err := s.repo.ListActiveBySlugs(cleaned)
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]*models.Book, len(books))
	for i := range books {
		bySlug[books[i].Slug] = &books[i]
	}
	views := make([]BookView, 0, len(cleaned))
	for _, slug := range cleaned {
		if book, ok := bySlug[slug]; ok {
			views = append(views, toBookView(book))
		}
	}
	return views, nil
}

// ListAdmin 后台图书列表
func (s *BookService) ListAdmin(search, status string, page, pageSize int) ([]models.Book, int64, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case constants.BookFilterActive, constants.BookFilterInactive, constants.BookFilterAll:
	case "":
		status = constants.BookFilterActive
	default:
		return nil, 0, NewFieldError("status", "must be active, inactive or all")
	}
	return s.repo.List(repository.BookListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(search),
		Status:   status,
		OrderBy:  "updated",
	})
}

// Create 创建图书
func (s *BookService) Create(ctx context.Context, input BookInput) (*models.Book, error) {
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	language := strings.TrimSpace(input.Language)
	if language == "" {
		language = constants.BookLanguageDefault
	}
	book := &models.Book{
		Slug:        strings.ToLower(strings.TrimSpace(input.Slug)),
		Title:       strings.TrimSpace(input.Title),
		Author:      strings.TrimSpace(input.Author),
		Publisher:   strings.TrimSpace(input.Publisher),
		Language:    language,
		Category:    strings.TrimSpace(input.Category),
		Tags:        normalizeTags(input.Tags),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		SalePrice:   models.NormalizeSalePrice(input.Price, input.SalePrice),
		Stock:       input.Stock,
		CoverURL:    strings.TrimSpace(input.CoverURL),
		Active:      active,
	}
	if err := validateBook(book); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(book.Slug, 0); err != nil {
		return nil, err
	}
	if err := s.repo.Create(book); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	s.invalidateCatalog(ctx)
	return book, nil
}

// Update 部分更新图书，只写入本次修改的列
func (s *BookService) Update(ctx context.Context, id uint, input UpdateBookInput) (*models.Book, error) {
	book, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}

	fields := make(map[string]interface{})
	patchText(fields, "title", &book.Title, input.Title)
	patchText(fields, "author", &book.Author, input.Author)
	patchText(fields, "publisher", &book.Publisher, input.Publisher)
	patchText(fields, "language", &book.Language, input.Language)
	patchText(fields, "category", &book.Category, input.Category)
	patchText(fields, "description", &book.Description, input.Description)
	patchText(fields, "cover_url", &book.CoverURL, input.CoverURL)
	if input.Slug != nil {
		book.Slug = strings.ToLower(strings.TrimSpace(*input.Slug))
		fields["slug"] = book.Slug
	}
	if input.Tags != nil {
		book.Tags = normalizeTags(*input.Tags)
		fields["tags"] = book.Tags
	}
	if input.Price != nil {
		book.Price = *input.Price
		fields["price"] = book.Price
	}
	if input.ClearSalePrice {
		book.SalePrice = nil
	} else if input.SalePrice != nil {
		book.SalePrice = input.SalePrice
	}
	if input.Price != nil || input.SalePrice != nil || input.ClearSalePrice {
		book.SalePrice = models.NormalizeSalePrice(book.Price, book.SalePrice)
		fields["sale_price"] = book.SalePrice
	}
	if input.Stock != nil {
		book.Stock = *input.Stock
		fields["stock"] = book.Stock
	}
	if input.Active != nil {
		book.Active = *input.Active
		fields["active"] = book.Active
	}
	if err := validateBook(book); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return book, nil
	}
	if _, ok := fields["slug"]; ok {
		if err := s.ensureSlugFree(book.Slug, book.ID); err != nil {
			return nil, err
		}
	}
	if _, err := s.repo.UpdateFields(book.ID, fields); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	s.invalidateCatalog(ctx)

	updated, err := s.repo.GetByID(book.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrBookNotFound
	}
	return updated, nil
}

// Delete 删除图书，存在订单或评论引用时拒绝
func (s *BookService) Delete(ctx context.Context, id uint) error {
	book, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, repository.ErrBookReferenced) || errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrBookInUse
		}
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *BookService) ensureSlugFree(slug string, excludeID uint) error {
	count, err := s.repo.CountBySlug(slug, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugTaken
	}
	return nil
}

func (s *BookService) invalidateCatalog(ctx context.Context) {
	if err := cache.BumpCatalogVersion(ctx); err != nil {
		logger.Warnw("catalog_cache_invalidate_failed", "error", err)
	}
}

func validateBook(book *models.Book) error {
	fields := map[string]string{}
	if !slugPattern.MatchString(book.Slug) || len(book.Slug) < 2 {
		fields["slug"] = "must be lowercase letters, digits and hyphens"
	}
	if len([]rune(book.Title)) < 2 {
		fields["title"] = "min 2 characters"
	}
	if len([]rune(book.Author)) < 2 {
		fields["author"] = "min 2 characters"
	}
	if len([]rune(book.Category)) < 2 {
		fields["category"] = "min 2 characters"
	}
	if book.Price < 1 {
		fields["price"] = "must be at least 1"
	}
	if book.SalePrice != nil && *book.SalePrice < 1 {
		fields["sale_price"] = "must be at least 1"
	}
	if book.Stock < 0 {
		fields["stock"] = "must not be negative"
	}
	if len(fields) > 0 {
		return &FieldError{Fields: fields}
	}
	return nil
}

func normalizeTags(raw string) string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	return strings.Join(tags, ",")
}

func patchText(fields map[string]interface{}, column string, dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
		fields[column] = *dst
	}
}

func assignTrimmed(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}
