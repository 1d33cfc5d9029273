package service

import (
	"strings"
	"time"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"
)

const (
	bannerPublicLimit = 10
	bannerMaxPills    = 6
)

// BannerService 首页轮播与促销条
type BannerService struct {
	repo       repository.BannerRepository
	couponRepo repository.CouponRepository
	now        func() time.Time
}

// NewBannerService 创建 Banner 服务
func NewBannerService(repo repository.BannerRepository, couponRepo repository.CouponRepository) *BannerService {
	return &BannerService{repo: repo, couponRepo: couponRepo, now: time.Now}
}

// BannerInput 创建/更新 Banner 输入
type BannerInput struct {
	Name       string
	Position   string
	Title      string
	Subtitle   string
	CouponCode string
	LinkURL    string
	LinkLabel  string
	Tone       string
	Pills      []string
	IsActive   *bool
	StartAt    *time.Time
	EndAt      *time.Time
	SortOrder  int
}

// ListAdmin 后台列表
func (s *BannerService) ListAdmin(filter repository.BannerListFilter) ([]models.Banner, int64, error) {
	filter.Position = strings.TrimSpace(filter.Position)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(filter)
}

// ListPublic 当前生效的 Banner，位置为空时默认首页轮播
func (s *BannerService) ListPublic(position string) ([]models.Banner, error) {
	normalized := strings.ToLower(strings.TrimSpace(position))
	if normalized == "" {
		normalized = constants.BannerPositionHomeHero
	}
	if !isBannerPosition(normalized) {
		return nil, NewFieldError("position", "oneof")
	}
	banners, err := s.repo.ListValidByPosition(normalized, bannerPublicLimit, s.now())
	if err != nil {
		return nil, err
	}
	if banners == nil {
		banners = []models.Banner{}
	}
	return banners, nil
}

// Create 创建 Banner
func (s *BannerService) Create(input BannerInput) (*models.Banner, error) {
	banner, err := s.buildBanner(input, nil)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(banner); err != nil {
		return nil, err
	}
	return banner, nil
}

// Update 整体更新 Banner
func (s *BannerService) Update(id uint, input BannerInput) (*models.Banner, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrBannerNotFound
	}
	banner, err := s.buildBanner(input, existing)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(banner); err != nil {
		return nil, err
	}
	return banner, nil
}

// Delete 删除 Banner
func (s *BannerService) Delete(id uint) error {
	banner, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if banner == nil {
		return ErrBannerNotFound
	}
	return s.repo.Delete(id)
}

func (s *BannerService) buildBanner(input BannerInput, existing *models.Banner) (*models.Banner, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, NewFieldError("name", "required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, NewFieldError("title", "required")
	}
	position := strings.ToLower(strings.TrimSpace(input.Position))
	if position == "" {
		position = constants.BannerPositionHomeHero
	}
	if !isBannerPosition(position) {
		return nil, NewFieldError("position", "oneof")
	}
	tone := strings.ToLower(strings.TrimSpace(input.Tone))
	switch tone {
	case "":
		tone = constants.BannerTonePrimary
	case constants.BannerTonePrimary, constants.BannerToneSecondary:
	default:
		return nil, NewFieldError("tone", "oneof")
	}
	if input.StartAt != nil && input.EndAt != nil && input.EndAt.Before(*input.StartAt) {
		return nil, NewFieldError("ends_at", "gtefield")
	}

	linkURL := strings.TrimSpace(input.LinkURL)
	linkLabel := strings.TrimSpace(input.LinkLabel)
	if linkURL != "" && !isBannerLink(linkURL) {
		return nil, NewFieldError("link_url", "url")
	}
	if linkURL == "" {
		linkLabel = ""
	} else if linkLabel == "" {
		return nil, NewFieldError("link_label", "required_with")
	}

	code := NormalizeCouponCode(input.CouponCode)
	if code != "" {
		coupon, err := s.couponRepo.GetByCode(code)
		if err != nil {
			return nil, err
		}
		if coupon == nil {
			return nil, ErrCouponNotFound
		}
	}

	banner := existing
	if banner == nil {
		banner = &models.Banner{IsActive: true}
	}
	banner.Name = name
	banner.Position = position
	banner.Title = title
	banner.Subtitle = strings.TrimSpace(input.Subtitle)
	banner.CouponCode = code
	banner.LinkURL = linkURL
	banner.LinkLabel = linkLabel
	banner.Tone = tone
	banner.Pills = joinBannerPills(input.Pills)
	banner.StartAt = input.StartAt
	banner.EndAt = input.EndAt
	banner.SortOrder = input.SortOrder
	if input.IsActive != nil {
		banner.IsActive = *input.IsActive
	}
	return banner, nil
}

func isBannerPosition(position string) bool {
	return position == constants.BannerPositionHomeHero || position == constants.BannerPositionPromoBar
}

// isBannerLink 站内路径或 http(s) 地址
func isBannerLink(link string) bool {
	if strings.HasPrefix(link, "/") {
		return !strings.HasPrefix(link, "//")
	}
	lower := strings.ToLower(link)
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://")
}

func joinBannerPills(pills []string) string {
	seen := make(map[string]struct{}, len(pills))
	result := make([]string, 0, len(pills))
	for _, pill := range pills {
		pill = strings.TrimSpace(strings.ReplaceAll(pill, ",", " "))
		if pill == "" {
			continue
		}
		if _, ok := seen[pill]; ok {
			continue
		}
		seen[pill] = struct{}{}
		result = append(result, pill)
		if len(result) == bannerMaxPills {
			break
		}
	}
	return strings.Join(result, ",")
}
