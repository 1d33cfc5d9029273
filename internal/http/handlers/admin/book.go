package admin

import (
	"strconv"
	"strings"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateBookRequest 创建图书
type CreateBookRequest struct {
	Slug        string `json:"slug" binding:"required,min=2,max=120"`
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Author      string `json:"author" binding:"required,min=2,max=120"`
	Publisher   string `json:"publisher" binding:"max=120"`
	Language    string `json:"language" binding:"max=40"`
	Category    string `json:"category" binding:"max=80"`
	Tags        string `json:"tags" binding:"max=300"`
	Description string `json:"description" binding:"required,min=10"`
	Price       int64  `json:"price" binding:"min=0"`
	SalePrice   *int64 `json:"sale_price" binding:"omitempty,min=0"`
	Stock       int    `json:"stock" binding:"min=0"`
	CoverURL    string `json:"cover_url" binding:"omitempty,url"`
	Active      *bool  `json:"active"`
}

// UpdateBookRequest 更新图书（字段可选）
type UpdateBookRequest struct {
	Slug           *string `json:"slug" binding:"omitempty,min=2,max=120"`
	Title          *string `json:"title" binding:"omitempty,min=2,max=200"`
	Author         *string `json:"author" binding:"omitempty,min=2,max=120"`
	Publisher      *string `json:"publisher" binding:"omitempty,max=120"`
	Language       *string `json:"language" binding:"omitempty,max=40"`
	Category       *string `json:"category" binding:"omitempty,max=80"`
	Tags           *string `json:"tags" binding:"omitempty,max=300"`
	Description    *string `json:"description" binding:"omitempty,min=10"`
	Price          *int64  `json:"price" binding:"omitempty,min=0"`
	SalePrice      *int64  `json:"sale_price" binding:"omitempty,min=0"`
	ClearSalePrice bool    `json:"clear_sale_price"`
	Stock          *int    `json:"stock" binding:"omitempty,min=0"`
	CoverURL       *string `json:"cover_url" binding:"omitempty,url"`
	Active         *bool   `json:"active"`
}

// ListBooks 后台图书列表（q, status=active|inactive|all）
func (h *Handler) ListBooks(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	books, total, err := h.BookService.ListAdmin(c.Query("q"), strings.TrimSpace(c.Query("status")), page, pageSize)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, books, shared.BuildPagination(page, pageSize, total))
}

// CreateBook 创建图书（slug 冲突返回 409）
func (h *Handler) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	book, err := h.BookService.Create(c.Request.Context(), service.BookInput{
		Slug:        req.Slug,
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Language:    req.Language,
		Category:    req.Category,
		Tags:        req.Tags,
		Description: req.Description,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Stock:       req.Stock,
		CoverURL:    req.CoverURL,
		Active:      req.Active,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Created(c, book)
}

// UpdateBook 更新图书
func (h *Handler) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateBookRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	book, err := h.BookService.Update(c.Request.Context(), id, service.UpdateBookInput{
		Slug:           req.Slug,
		Title:          req.Title,
		Author:         req.Author,
		Publisher:      req.Publisher,
		Language:       req.Language,
		Category:       req.Category,
		Tags:           req.Tags,
		Description:    req.Description,
		Price:          req.Price,
		SalePrice:      req.SalePrice,
		ClearSalePrice: req.ClearSalePrice,
		Stock:          req.Stock,
		CoverURL:       req.CoverURL,
		Active:         req.Active,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, book)
}

// DeleteBook 删除图书（被订单或评价引用时返回 409）
func (h *Handler) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.BookService.Delete(c.Request.Context(), id); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	h.recordAudit(c, constants.AuditActionBookDelete, "book", strconv.FormatUint(uint64(id), 10), nil)
	response.Success(c, gin.H{"deleted": true})
}
