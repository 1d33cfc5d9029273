package shared

import (
	"time"

	"github.com/readrover/internal/models"
)

// OrderItemView 订单项视图（附书名）
type OrderItemView struct {
	BookID    uint   `json:"book_id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	CoverURL  string `json:"cover_url,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// OrderView 订单视图
type OrderView struct {
	ID             uint            `json:"id"`
	OrderNo        string          `json:"order_no"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email,omitempty"`
	Address        string          `json:"address"`
	Note           string          `json:"note,omitempty"`
	Status         string          `json:"status"`
	Subtotal       int64           `json:"subtotal"`
	CouponCode     *string         `json:"coupon_code"`
	CouponDiscount int64           `json:"coupon_discount"`
	DeliveryFee    int64           `json:"delivery_fee"`
	Total          int64           `json:"total"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Items          []OrderItemView `json:"items"`
}

// NewOrderView 转换订单视图
func NewOrderView(order *models.Order) OrderView {
	view := OrderView{
		ID:             order.ID,
		OrderNo:        order.OrderNo,
		Name:           order.Name,
		Phone:          order.Phone,
		Email:          order.Email,
		Address:        order.Address,
		Note:           order.Note,
		Status:         order.Status,
		Subtotal:       order.Subtotal,
		CouponCode:     order.CouponCode,
		CouponDiscount: order.CouponDiscount,
		DeliveryFee:    order.DeliveryFee,
		Total:          order.Total,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
		Items:          make([]OrderItemView, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		itemView := OrderItemView{
			BookID:    item.BookID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.UnitPrice * int64(item.Quantity),
		}
		if item.Book != nil {
			itemView.Title = item.Book.Title
			itemView.Slug = item.Book.Slug
			itemView.CoverURL = item.Book.CoverURL
		}
		view.Items = append(view.Items, itemView)
	}
	return view
}

// NewOrderViews 批量转换订单视图
func NewOrderViews(orders []models.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, NewOrderView(&orders[i]))
	}
	return views
}
