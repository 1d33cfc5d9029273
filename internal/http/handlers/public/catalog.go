package public

import (
	"strings"

	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"

	"github.com/gin-gonic/gin"
)

// BySlugsRequest 按 slug 批量查询
type BySlugsRequest struct {
	Slugs []string `json:"slugs" binding:"required,min=1,max=20,dive,required,max=120"`
}

// ListBooks 图书列表（仅上架）
func (h *Handler) ListBooks(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	pageSize = h.BookService.PageSize(pageSize)
	result, err := h.BookService.ListPublic(c.Request.Context(),
		strings.TrimSpace(c.Query("q")),
		strings.TrimSpace(c.Query("category")),
		page, pageSize,
	)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, result.Items, shared.BuildPagination(page, pageSize, result.Total))
}

// GetBook 图书详情
func (h *Handler) GetBook(c *gin.Context) {
	book, err := h.BookService.GetPublicBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, book)
}

// ListBooksBySlugs 按请求顺序返回上架图书
func (h *Handler) ListBooksBySlugs(c *gin.Context) {
	var req BySlugsRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	books, err := h.BookService.ListBySlugs(req.Slugs)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, books)
}

// ListBookReviews 图书评价列表
func (h *Handler) ListBookReviews(c *gin.Context) {
	reviews, err := h.ReviewService.ListForBook(c.Param("slug"))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, reviews)
}

// ListBanners 当前生效的首页轮播或促销条
func (h *Handler) ListBanners(c *gin.Context) {
	banners, err := h.BannerService.ListPublic(c.Query("position"))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, banners)
}
