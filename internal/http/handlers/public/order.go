package public

import (
	"strings"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求（unit_price 仅兼容旧客户端，服务端忽略）
type OrderItemRequest struct {
	BookID    uint   `json:"book_id" binding:"required,min=1"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=99"`
	UnitPrice *int64 `json:"unit_price"`
}

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	Name       string                        `json:"name" binding:"required,min=2,max=80"`
	Phone      string                        `json:"phone" binding:"required,min=6,max=30"`
	Address    string                        `json:"address" binding:"required,min=8,max=800"`
	Note       string                        `json:"note" binding:"max=1000"`
	Email      string                        `json:"email" binding:"omitempty,email,max=200"`
	CouponCode string                        `json:"coupon_code" binding:"max=40"`
	Items      []OrderItemRequest            `json:"items" binding:"required,min=1,max=50,dive"`
	Captcha    *shared.CaptchaPayloadRequest `json:"captcha"`
}

// ValidateCouponRequest 优惠券校验请求
type ValidateCouponRequest struct {
	Code     string `json:"code" binding:"max=40"`
	Subtotal int64  `json:"subtotal" binding:"min=0"`
}

// TrackOrderQuery 订单追踪查询
type TrackOrderQuery struct {
	OrderNo string `form:"order_no" json:"order_no" binding:"required,min=6,max=40"`
	Phone   string `form:"phone" json:"phone" binding:"required,min=6,max=30"`
}

// OrdersByPhoneQuery 按手机号查询订单
type OrdersByPhoneQuery struct {
	Phone string `form:"phone" json:"phone" binding:"required,min=6,max=30"`
	Name  string `form:"name" json:"name" binding:"required,min=2,max=80"`
}

var placeOrderErrorRules = []shared.MappedError{
	{Target: service.ErrPlaceOrderRetry, Code: response.CodeConflict, Msg: "Order could not be placed, please retry"},
}

// PlaceOrder 下单（价格以服务端为准）
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if !shared.BindStrictJSON(c, &req) {
		return
	}
	if !h.verifyCaptcha(c, constants.CaptchaSceneOrderCreate, req.Captcha) {
		return
	}

	items := make([]service.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CartLine{BookID: item.BookID, Quantity: item.Quantity})
	}
	result, err := h.OrderService.Place(service.PlaceOrderInput{
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		Note:       req.Note,
		CouponCode: req.CouponCode,
		UserID:     shared.OptionalUserID(c),
		Items:      items,
	})
	if err != nil {
		shared.RespondServiceError(c, err, placeOrderErrorRules...)
		return
	}
	response.Created(c, result)
}

// ValidateCoupon 校验优惠码（不修改任何数据）
func (h *Handler) ValidateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	result, err := h.CouponService.Validate(req.Code, req.Subtotal)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// TrackOrder 订单号 + 手机号精确追踪
func (h *Handler) TrackOrder(c *gin.Context) {
	var query TrackOrderQuery
	if !shared.BindQuery(c, &query) {
		return
	}
	order, err := h.OrderService.Track(query.OrderNo, strings.TrimSpace(query.Phone))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, shared.NewOrderView(order))
}

// ListOrdersByPhone 手机号精确 + 姓名包含
func (h *Handler) ListOrdersByPhone(c *gin.Context) {
	var query OrdersByPhoneQuery
	if !shared.BindQuery(c, &query) {
		return
	}
	orders, err := h.OrderService.ListByPhone(query.Phone, query.Name)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, shared.NewOrderViews(orders))
}

// ListMyOrders 当前顾客最近订单
func (h *Handler) ListMyOrders(c *gin.Context) {
	userID, ok := shared.RequireContextUint(c, shared.CtxUserID)
	if !ok {
		return
	}
	orders, err := h.OrderService.ListByUser(userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, shared.NewOrderViews(orders))
}
