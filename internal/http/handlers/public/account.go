package public

import (
	"strconv"

	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateAddressRequest 新增地址
type CreateAddressRequest struct {
	Label     string `json:"label" binding:"max=40"`
	Phone     string `json:"phone" binding:"required,min=6,max=30"`
	Address   string `json:"address" binding:"required,min=8,max=800"`
	City      string `json:"city" binding:"max=80"`
	IsDefault bool   `json:"is_default"`
}

// UpdateAddressRequest 更新地址（字段可选）
type UpdateAddressRequest struct {
	Label     *string `json:"label" binding:"omitempty,max=40"`
	Phone     *string `json:"phone" binding:"omitempty,min=6,max=30"`
	Address   *string `json:"address" binding:"omitempty,min=8,max=800"`
	City      *string `json:"city" binding:"omitempty,max=80"`
	IsDefault *bool   `json:"is_default"`
}

// ListAddresses 我的地址
func (h *Handler) ListAddresses(c *gin.Context) {
	userID, ok := shared.RequireContextUint(c, shared.CtxUserID)
	if !ok {
		return
	}
	addresses, err := h.AddressService.List(userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, addresses)
}

// CreateAddress 新增地址
func (h *Handler) CreateAddress(c *gin.Context) {
	userID, ok := shared.RequireContextUint(c, shared.CtxUserID)
	if !ok {
		return
	}
	var req CreateAddressRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	address, err := h.AddressService.Create(userID, service.AddressInput{
		Label:     req.Label,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Created(c, address)
}

// UpdateAddress 更新地址（仅本人）
func (h *Handler) UpdateAddress(c *gin.Context) {
	userID, ok := shared.RequireContextUint(c, shared.CtxUserID)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateAddressRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	address, err := h.AddressService.Update(userID, id, service.AddressPatch{
		Label:     req.Label,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, address)
}

// DeleteAddress 删除地址（仅本人）
func (h *Handler) DeleteAddress(c *gin.Context) {
	userID, ok := shared.RequireContextUint(c, shared.CtxUserID)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.AddressService.Delete(userID, id); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid id")
		return 0, false
	}
	return uint(id), true
}
