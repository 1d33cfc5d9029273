package service

import (
	"bytes"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"text/template"

	"github.com/readrover/internal/config"
	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/models"
)

// EmailService 订单通知邮件
type EmailService struct {
	cfg       *config.EmailConfig
	transport mailTransport
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	svc := &EmailService{cfg: cfg}
	if cfg != nil {
		svc.transport = smtpTransport(cfg)
	}
	return svc
}

// Enabled 是否已启用并完成配置
func (s *EmailService) Enabled() bool {
	return s.checkReady() == nil
}

func (s *EmailService) checkReady() error {
	if s == nil || s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" || s.transport == nil {
		return ErrEmailServiceNotConfigured
	}
	return nil
}

// SendOrderPlacedEmail 下单确认
func (s *EmailService) SendOrderPlacedEmail(toEmail string, order *models.Order) error {
	if order == nil {
		return nil
	}
	subject, body := buildOrderPlacedContent(order)
	return s.deliver(toEmail, subject, body)
}

// SendOrderStatusEmail 订单状态变更
func (s *EmailService) SendOrderStatusEmail(toEmail string, order *models.Order, status string) error {
	if order == nil {
		return nil
	}
	subject, body := buildOrderStatusContent(order, status)
	return s.deliver(toEmail, subject, body)
}

func (s *EmailService) deliver(toEmail, subject, body string) error {
	if err := s.checkReady(); err != nil {
		return err
	}
	to, err := mail.ParseAddress(strings.TrimSpace(toEmail))
	if err != nil {
		return ErrInvalidEmail
	}
	from := &mail.Address{Name: s.cfg.FromName, Address: s.cfg.From}
	return s.transport(outgoingMail{
		From: s.cfg.From,
		To:   []string{to.Address},
		Data: encodePlainMessage(from, to, subject, body),
	})
}

// encodePlainMessage 生成 UTF-8 纯文本邮件
func encodePlainMessage(from, to *mail.Address, subject, body string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", to.String())
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	buf.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return buf.Bytes()
}

var orderStatusLabels = map[string]string{
	constants.OrderStatusPending:   "Pending",
	constants.OrderStatusConfirmed: "Confirmed",
	constants.OrderStatusShipped:   "Shipped",
	constants.OrderStatusDelivered: "Delivered",
	constants.OrderStatusCancelled: "Cancelled",
}

var orderStatusDetails = map[string]string{
	constants.OrderStatusConfirmed: "Your order is confirmed and being packed.",
	constants.OrderStatusShipped:   "Your books are on the way.",
	constants.OrderStatusDelivered: "Your order has been delivered. Happy reading!",
	constants.OrderStatusCancelled: "Your order has been cancelled. Contact us if this is unexpected.",
}

var orderPlacedTemplate = template.Must(template.New("order_placed").Parse(`Hi {{.Name}},

Thank you for your order. We will call {{.Phone}} to confirm delivery.

Order No: {{.OrderNo}}
{{range .Lines}}  {{.Title}} x{{.Quantity}}  Tk {{.Amount}}
{{end}}
Subtotal: Tk {{.Subtotal}}
{{if .Coupon}}Coupon {{.Coupon}}: -Tk {{.Discount}}
{{end}}Delivery: {{if gt .DeliveryFee 0}}Tk {{.DeliveryFee}}{{else}}Free{{end}}
Total (cash on delivery): Tk {{.Total}}

Track your order with the order number and your phone number.
Questions? Write to {{.Support}}.`))

var orderStatusTemplate = template.Must(template.New("order_status").Parse(`Hi {{.Name}},

{{.Detail}}

Order No: {{.OrderNo}}
Status: {{.Label}}
Total: Tk {{.Total}}

Questions? Write to {{.Support}}.`))

type emailLine struct {
	Title    string
	Quantity int
	Amount   int64
}

func buildOrderPlacedContent(order *models.Order) (string, string) {
	lines := make([]emailLine, 0, len(order.Items))
	for _, item := range order.Items {
		title := fmt.Sprintf("Book #%d", item.BookID)
		if item.Book != nil && item.Book.Title != "" {
			title = item.Book.Title
		}
		lines = append(lines, emailLine{Title: title, Quantity: item.Quantity, Amount: item.UnitPrice * int64(item.Quantity)})
	}
	coupon := ""
	if order.CouponCode != nil && order.CouponDiscount > 0 {
		coupon = *order.CouponCode
	}
	body := renderEmail(orderPlacedTemplate, map[string]interface{}{
		"Name":        strings.TrimSpace(order.Name),
		"Phone":       order.Phone,
		"OrderNo":     order.OrderNo,
		"Lines":       lines,
		"Subtotal":    order.Subtotal,
		"Coupon":      coupon,
		"Discount":    order.CouponDiscount,
		"DeliveryFee": order.DeliveryFee,
		"Total":       order.Total,
		"Support":     constants.SiteSupportEmail,
	})
	return fmt.Sprintf("%s order %s received", constants.SiteName, order.OrderNo), body
}

func buildOrderStatusContent(order *models.Order, status string) (string, string) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" {
		status = order.Status
	}
	label, ok := orderStatusLabels[status]
	if !ok {
		label = status
	}
	detail, ok := orderStatusDetails[status]
	if !ok {
		detail = "Your order status has changed."
	}
	body := renderEmail(orderStatusTemplate, map[string]interface{}{
		"Name":    strings.TrimSpace(order.Name),
		"Detail":  detail,
		"OrderNo": order.OrderNo,
		"Label":   label,
		"Total":   order.Total,
		"Support": constants.SiteSupportEmail,
	})
	return fmt.Sprintf("%s order %s: %s", constants.SiteName, order.OrderNo, label), body
}

func renderEmail(tmpl *template.Template, data map[string]interface{}) string {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("%v", data)
	}
	return buf.String()
}
