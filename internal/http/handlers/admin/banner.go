package admin

import (
	"strconv"
	"time"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"
	"github.com/readrover/internal/repository"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
)

// BannerRequest 创建/更新 Banner（更新为整体覆盖）
type BannerRequest struct {
	Name       string     `json:"name" binding:"required,max=120"`
	Position   string     `json:"position" binding:"omitempty,oneof=home_hero promo_bar"`
	Title      string     `json:"title" binding:"required,max=160"`
	Subtitle   string     `json:"subtitle" binding:"max=500"`
	CouponCode string     `json:"coupon_code" binding:"max=40"`
	LinkURL    string     `json:"link_url" binding:"max=500"`
	LinkLabel  string     `json:"link_label" binding:"max=60"`
	Tone       string     `json:"tone" binding:"omitempty,oneof=primary secondary"`
	Pills      []string   `json:"pills" binding:"max=6,dive,max=40"`
	IsActive   *bool      `json:"is_active"`
	StartAt    *time.Time `json:"start_at"`
	EndAt      *time.Time `json:"end_at"`
	SortOrder  int        `json:"sort_order"`
}

func (r BannerRequest) toInput() service.BannerInput {
	return service.BannerInput{
		Name:       r.Name,
		Position:   r.Position,
		Title:      r.Title,
		Subtitle:   r.Subtitle,
		CouponCode: r.CouponCode,
		LinkURL:    r.LinkURL,
		LinkLabel:  r.LinkLabel,
		Tone:       r.Tone,
		Pills:      r.Pills,
		IsActive:   r.IsActive,
		StartAt:    r.StartAt,
		EndAt:      r.EndAt,
		SortOrder:  r.SortOrder,
	}
}

// ListBanners Banner 列表
func (h *Handler) ListBanners(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	filter := repository.BannerListFilter{
		Page:     page,
		PageSize: pageSize,
		Position: c.Query("position"),
		Search:   c.Query("q"),
	}
	if raw := c.Query("is_active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.IsActive = &active
		}
	}
	banners, total, err := h.BannerService.ListAdmin(filter)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, banners, shared.BuildPagination(page, pageSize, total))
}

// CreateBanner 创建 Banner
func (h *Handler) CreateBanner(c *gin.Context) {
	var req BannerRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	banner, err := h.BannerService.Create(req.toInput())
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Created(c, banner)
}

// UpdateBanner 更新 Banner
func (h *Handler) UpdateBanner(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req BannerRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	banner, err := h.BannerService.Update(id, req.toInput())
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, banner)
}

// DeleteBanner 删除 Banner
func (h *Handler) DeleteBanner(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.BannerService.Delete(id); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	h.recordAudit(c, constants.AuditActionBannerDelete, "banner", strconv.FormatUint(uint64(id), 10), nil)
	response.Success(c, gin.H{"deleted": true})
}
