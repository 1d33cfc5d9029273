package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// 通用错误分类，handler 按分类映射 HTTP 状态码
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// 下单相关错误
var (
	ErrInvalidBook        = errors.New("invalid book")
	ErrOutOfStock         = errors.New("out of stock")
	ErrEmptyCart          = fmt.Errorf("%w: cart is empty", ErrValidation)
	ErrInvalidQuantity    = fmt.Errorf("%w: quantity must be between 1 and 99", ErrValidation)
	ErrInvalidOrderStatus = fmt.Errorf("%w: invalid order status", ErrValidation)
	ErrOrderNotFound      = fmt.Errorf("%w: order", ErrNotFound)
	ErrPlaceOrderRetry    = errors.New("order placement retries exhausted")

	errCouponExhausted = errors.New("coupon usage limit reached during commit")
	errOrderNoConflict = errors.New("order number collision")
)

// 图书相关错误
var (
	ErrBookNotFound = fmt.Errorf("%w: book", ErrNotFound)
	ErrBookInUse    = fmt.Errorf("%w: book has related orders or reviews", ErrConflict)
	ErrSlugTaken    = fmt.Errorf("%w: slug already exists", ErrConflict)
)

// 优惠券相关错误
var (
	ErrCouponNotFound    = fmt.Errorf("%w: coupon", ErrNotFound)
	ErrCouponCodeTaken   = fmt.Errorf("%w: coupon code already exists", ErrConflict)
	ErrCouponInvalidRule = fmt.Errorf("%w: invalid coupon rule", ErrValidation)
	ErrBannerNotFound    = fmt.Errorf("%w: banner", ErrNotFound)
)

// 账号相关错误
var (
	ErrEmailTaken         = fmt.Errorf("%w: email already in use", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrUserDisabled       = fmt.Errorf("%w: account disabled", ErrForbidden)
	ErrWeakPassword       = fmt.Errorf("%w: weak password", ErrValidation)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrAdminNotFound      = fmt.Errorf("%w: admin", ErrNotFound)
	ErrAdminUsernameTaken = fmt.Errorf("%w: username already exists", ErrConflict)
	ErrInvalidAdminRole   = fmt.Errorf("%w: unknown admin role", ErrValidation)
)

// 其他资源错误
var (
	ErrAddressNotFound      = fmt.Errorf("%w: address", ErrNotFound)
	ErrMessageNotFound      = fmt.Errorf("%w: message", ErrNotFound)
	ErrInvalidInboxStatus   = fmt.Errorf("%w: invalid message status", ErrValidation)
	ErrWatchlistIdentity    = fmt.Errorf("%w: email or sign in required", ErrUnauthorized)
	ErrCaptchaRequired      = fmt.Errorf("%w: captcha required", ErrValidation)
	ErrCaptchaInvalid       = fmt.Errorf("%w: captcha invalid", ErrValidation)
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
)

// 邮件相关错误
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = fmt.Errorf("%w: invalid email", ErrValidation)
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)

// OutOfStockError 库存不足（携带书名）
type OutOfStockError struct {
	BookID uint
	Title  string
}

func (e *OutOfStockError) Error() string {
	return "Out of stock: " + e.Title
}

// Unwrap 归类为 ErrOutOfStock
func (e *OutOfStockError) Unwrap() error {
	return ErrOutOfStock
}

// FieldError 字段级校验错误
type FieldError struct {
	Fields map[string]string
}

// NewFieldError 创建单字段校验错误
func NewFieldError(field, rule string) *FieldError {
	return &FieldError{Fields: map[string]string{field: rule}}
}

func (e *FieldError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Unwrap 归类为 ErrValidation
func (e *FieldError) Unwrap() error {
	return ErrValidation
}
