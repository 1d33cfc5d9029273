package admin

import (
	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest 修改订单状态
type UpdateOrderStatusRequest struct {
	OrderID uint   `json:"order_id" binding:"required,min=1"`
	Status  string `json:"status" binding:"required,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
}

// ListOrders 后台订单列表（最新 50，按状态/手机号筛选）
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	pageSize = service.AdminOrderPageSize(pageSize)
	orders, total, err := h.OrderService.ListForAdmin(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		Phone:    c.Query("phone"),
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, shared.NewOrderViews(orders), shared.BuildPagination(page, pageSize, total))
}

// UpdateOrderStatus 修改订单状态（任意状态之间均可切换）
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	order, err := h.OrderService.UpdateStatus(req.OrderID, req.Status)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	h.recordAudit(c, constants.AuditActionOrderStatusUpdate, "order", order.OrderNo, models.JSON{
		"order_id": order.ID,
		"status":   order.Status,
	})
	response.Success(c, shared.NewOrderView(order))
}
