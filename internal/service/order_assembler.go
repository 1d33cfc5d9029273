package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/models"
)

const (
	orderNoSuffixLength = 6
	orderNoAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// PricingRule 运费规则
type PricingRule struct {
	FreeShippingThreshold int64
	DeliveryFee           int64
}

// ComputeDeliveryFee 计算运费：无商品或折后满额免运费
func (r PricingRule) ComputeDeliveryFee(subtotal, discount int64, itemCount int) int64 {
	if itemCount == 0 {
		return 0
	}
	if subtotal-discount >= r.FreeShippingThreshold {
		return 0
	}
	return r.DeliveryFee
}

// ComputeTotal 应付金额 = max(0, 小计-折扣) + 运费
func ComputeTotal(subtotal, discount, deliveryFee int64) int64 {
	return maxInt64(0, subtotal-discount) + deliveryFee
}

// OrderDraft 待提交的订单聚合
type OrderDraft struct {
	Order      *models.Order
	Items      []models.OrderItem
	Lines      []ResolvedLine
	Evaluation CouponEvaluation
}

// CustomerInfo 收货信息
type CustomerInfo struct {
	Name    string
	Phone   string
	Email   string
	Address string
	Note    string
	UserID  *uint
}

// AssembleOrder 根据解析后的下单项与优惠结果组装订单
func AssembleOrder(customer CustomerInfo, lines []ResolvedLine, evaluation CouponEvaluation, rule PricingRule, orderNo string, now time.Time) *OrderDraft {
	var subtotal int64
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		subtotal += line.LineTotal()
		items = append(items, models.OrderItem{
			BookID:    line.Book.ID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			CreatedAt: now,
		})
	}

	appliedCode := evaluation.AppliedCode()
	var discount int64
	if appliedCode != nil {
		discount = evaluation.Discount
	}
	fee := rule.ComputeDeliveryFee(subtotal, discount, len(items))

	order := &models.Order{
		OrderNo:        orderNo,
		Name:           strings.TrimSpace(customer.Name),
		Phone:          strings.TrimSpace(customer.Phone),
		Email:          strings.ToLower(strings.TrimSpace(customer.Email)),
		Address:        strings.TrimSpace(customer.Address),
		Note:           strings.TrimSpace(customer.Note),
		UserID:         customer.UserID,
		Status:         constants.OrderStatusPending,
		Subtotal:       subtotal,
		CouponCode:     appliedCode,
		CouponDiscount: discount,
		DeliveryFee:    fee,
		Total:          ComputeTotal(subtotal, discount, fee),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return &OrderDraft{
		Order:      order,
		Items:      items,
		Lines:      lines,
		Evaluation: evaluation,
	}
}

// GenerateOrderNo 生成订单号：前缀-YYYYMMDD-6位大写字母数字
func GenerateOrderNo(prefix string, now time.Time) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = constants.OrderNoPrefixDefault
	}
	suffix, err := randomAlnum(orderNoSuffixLength)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix), nil
}

func randomAlnum(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	limit := big.NewInt(int64(len(orderNoAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(orderNoAlphabet[n.Int64()])
	}
	return b.String(), nil
}
