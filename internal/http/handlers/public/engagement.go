package public

import (
	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
)

// WatchlistRequest 关注/取消关注
type WatchlistRequest struct {
	Email  string `json:"email" binding:"omitempty,email,max=200"`
	BookID uint   `json:"book_id" binding:"required,min=1"`
}

// WatchlistQuery 关注列表查询
type WatchlistQuery struct {
	Email string `form:"email" json:"email" binding:"omitempty,email,max=200"`
}

// ReviewRequest 提交评价
type ReviewRequest struct {
	BookID  uint   `json:"book_id" binding:"required,min=1"`
	Name    string `json:"name" binding:"required,min=2,max=80"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required,min=2,max=300"`
}

// ContactRequest 联系我们
type ContactRequest struct {
	Name    string                        `json:"name" binding:"required,min=2,max=80"`
	Email   string                        `json:"email" binding:"required,email,max=200"`
	Subject string                        `json:"subject" binding:"required,min=2,max=120"`
	Message string                        `json:"message" binding:"required,min=10,max=4000"`
	Captcha *shared.CaptchaPayloadRequest `json:"captcha"`
}

// NewsletterRequest 订阅邮件
type NewsletterRequest struct {
	Email  string `json:"email" binding:"required,email,max=200"`
	Source string `json:"source" binding:"max=40"`
}

// AddWatchlist 关注图书（同邮箱同图书幂等）
func (h *Handler) AddWatchlist(c *gin.Context) {
	var req WatchlistRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	item, err := h.WatchlistService.Add(req.Email, req.BookID, shared.OptionalUserID(c))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, item)
}

// ListWatchlist 登录用户优先，否则按邮箱
func (h *Handler) ListWatchlist(c *gin.Context) {
	var query WatchlistQuery
	if !shared.BindQuery(c, &query) {
		return
	}
	userID, _ := shared.GetContextUint(c, shared.CtxUserID)
	items, err := h.WatchlistService.List(query.Email, userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, items)
}

// RemoveWatchlist 取消关注
func (h *Handler) RemoveWatchlist(c *gin.Context) {
	var req WatchlistRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	userID, _ := shared.GetContextUint(c, shared.CtxUserID)
	if err := h.WatchlistService.Remove(req.Email, req.BookID, userID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"removed": true})
}

// CreateReview 提交评价
func (h *Handler) CreateReview(c *gin.Context) {
	var req ReviewRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	review, err := h.ReviewService.Create(service.ReviewInput{
		BookID:  req.BookID,
		Name:    req.Name,
		Rating:  req.Rating,
		Comment: req.Comment,
		UserID:  shared.OptionalUserID(c),
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Created(c, review)
}

// SubmitContact 提交留言
func (h *Handler) SubmitContact(c *gin.Context) {
	var req ContactRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	if !h.verifyCaptcha(c, constants.CaptchaSceneContactSubmit, req.Captcha) {
		return
	}
	message, err := h.ContactService.Submit(service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
		UserID:  shared.OptionalUserID(c),
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Created(c, gin.H{"id": message.ID})
}

// SubscribeNewsletter 订阅（重复订阅返回 already=true）
func (h *Handler) SubscribeNewsletter(c *gin.Context) {
	var req NewsletterRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	source := req.Source
	if source == "" {
		source = "footer"
	}
	already, err := h.NewsletterService.Subscribe(req.Email, source)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"already": already})
}
