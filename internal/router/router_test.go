package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/readrover/internal/config"
	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/provider"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type routerFixture struct {
	engine    *gin.Engine
	db        *gorm.DB
	container *provider.Container
}

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Mode: "debug"},
		JWT:     config.JWTConfig{SecretKey: "router-test-admin-secret", ExpireHours: 1},
		UserJWT: config.JWTConfig{SecretKey: "router-test-user-secret", ExpireHours: 1},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8},
		},
		Order: config.OrderConfig{
			FreeShippingThreshold: 1500,
			DeliveryFee:           60,
			OrderNoPrefix:         constants.OrderNoPrefixDefault,
			MaxPlaceAttempts:      3,
		},
		Catalog: config.CatalogConfig{MaxPageSize: 50},
		Captcha: config.CaptchaConfig{Provider: constants.CaptchaProviderNone},
	}
}

func setupRouterTest(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.MigrateAll(db))
	models.DB = db
	require.NoError(t, models.InitDefaultAdmin("admin", "Admin12345"))

	cfg := testConfig()
	container, err := provider.NewContainer(cfg, db)
	require.NoError(t, err)
	return &routerFixture{engine: SetupRouter(cfg, container), db: db, container: container}
}

func (f *routerFixture) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (f *routerFixture) seedBook(t *testing.T, slug string, price int64, salePrice *int64, stock int) *models.Book {
	t.Helper()
	book := &models.Book{
		Slug:        slug,
		Title:       "Title " + slug,
		Author:      "Humayun Ahmed",
		Language:    constants.BookLanguageDefault,
		Category:    "Fiction",
		Description: "A novel about rivers and people.",
		Price:       price,
		SalePrice:   salePrice,
		Stock:       stock,
		Active:      true,
	}
	require.NoError(t, f.db.Create(book).Error)
	return book
}

func (f *routerFixture) adminToken(t *testing.T, username, password string) string {
	t.Helper()
	_, env := f.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"username": username, "password": password}, "")
	require.Equal(t, 0, env.StatusCode, env.Msg)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func orderBody(bookID uint, quantity int) map[string]interface{} {
	return map[string]interface{}{
		"name":    "Rahim Uddin",
		"phone":   "01711000000",
		"address": "House 12, Road 5, Dhanmondi, Dhaka",
		"items":   []map[string]interface{}{{"book_id": bookID, "quantity": quantity, "unit_price": 1}},
	}
}

func TestHealth(t *testing.T) {
	f := setupRouterTest(t)
	w, env := f.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.StatusCode)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestPlaceAndTrackOrder(t *testing.T) {
	f := setupRouterTest(t)
	sale := int64(799)
	book := f.seedBook(t, "deyal", 850, &sale, 5)

	w, env := f.do(t, http.MethodPost, "/api/v1/orders", orderBody(book.ID, 2), "")
	require.Equal(t, http.StatusCreated, w.Code, env.Msg)
	var placed service.PlaceOrderResult
	require.NoError(t, json.Unmarshal(env.Data, &placed))
	assert.Equal(t, int64(1598), placed.Subtotal)
	assert.Equal(t, int64(0), placed.DeliveryFee)
	assert.Equal(t, int64(1598), placed.Total)
	assert.Regexp(t, `^RR-\d{8}-[A-Z0-9]{6}$`, placed.OrderNo)

	w, env = f.do(t, http.MethodGet, "/api/v1/orders/track?order_no="+placed.OrderNo+"&phone=01711000000", nil, "")
	require.Equal(t, http.StatusOK, w.Code, env.Msg)
	var tracked struct {
		OrderNo string `json:"order_no"`
		Status  string `json:"status"`
		Items   []struct {
			Title    string `json:"title"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tracked))
	assert.Equal(t, constants.OrderStatusPending, tracked.Status)
	require.Len(t, tracked.Items, 1)
	assert.Equal(t, "Title deyal", tracked.Items[0].Title)
	assert.Equal(t, 2, tracked.Items[0].Quantity)

	w, env = f.do(t, http.MethodGet, "/api/v1/orders/track?order_no="+placed.OrderNo+"&phone=01900000000", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)

	w, env = f.do(t, http.MethodGet, "/api/v1/orders/by-phone?phone=01711000000&name=rahim", nil, "")
	require.Equal(t, http.StatusOK, w.Code, env.Msg)
	var byPhone []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &byPhone))
	assert.Len(t, byPhone, 1)
}

func TestPlaceOrderRejectsBadInput(t *testing.T) {
	f := setupRouterTest(t)
	book := f.seedBook(t, "himu", 400, nil, 3)

	body := orderBody(book.ID, 1)
	body["total"] = 1
	w, env := f.do(t, http.MethodPost, "/api/v1/orders", body, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	var data struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "unknown", data.Fields["total"])

	w, env = f.do(t, http.MethodPost, "/api/v1/orders", orderBody(book.ID, 0), "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Contains(t, data.Fields, "items[0].quantity")

	w, env = f.do(t, http.MethodPost, "/api/v1/orders", orderBody(book.ID, 5), "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Msg, "Title himu")

	var stock int
	require.NoError(t, f.db.Model(&models.Book{}).Where("id = ?", book.ID).Select("stock").Scan(&stock).Error)
	assert.Equal(t, 3, stock)
}

func TestCouponValidate(t *testing.T) {
	f := setupRouterTest(t)
	require.NoError(t, f.db.Create(&models.Coupon{
		Code:        "WELCOME50",
		Type:        constants.CouponTypeFixed,
		Value:       50,
		MinSubtotal: 500,
		Active:      true,
	}).Error)

	w, env := f.do(t, http.MethodPost, "/api/v1/coupons/validate", map[string]interface{}{"code": "welcome50", "subtotal": 300}, "")
	require.Equal(t, http.StatusOK, w.Code, env.Msg)
	var result struct {
		OK       bool   `json:"ok"`
		Reason   string `json:"reason"`
		Discount int64  `json:"discount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.False(t, result.OK)
	assert.Equal(t, constants.CouponReasonMinSubtotal, result.Reason)
	assert.Zero(t, result.Discount)
}

func TestCustomerAccountFlow(t *testing.T) {
	f := setupRouterTest(t)
	book := f.seedBook(t, "shonkhonil-karagar", 300, nil, 10)

	_, env := f.do(t, http.MethodGet, "/api/v1/auth/me", nil, "")
	assert.JSONEq(t, `{"user":null}`, string(env.Data))

	w, _ := f.do(t, http.MethodGet, "/api/v1/me/orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = f.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":     "Nusrat Jahan",
		"email":    "Nusrat@Example.com",
		"password": "bookworm42",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, env.Msg)
	var auth struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	assert.Equal(t, "nusrat@example.com", auth.User.Email)

	w, _ = f.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":     "Someone Else",
		"email":    "nusrat@example.com",
		"password": "bookworm42",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = f.do(t, http.MethodPost, "/api/v1/orders", orderBody(book.ID, 1), auth.Token)
	require.Equal(t, http.StatusCreated, w.Code, env.Msg)

	w, env = f.do(t, http.MethodGet, "/api/v1/me/orders", nil, auth.Token)
	require.Equal(t, http.StatusOK, w.Code, env.Msg)
	var mine []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Len(t, mine, 1)

	w, env = f.do(t, http.MethodPost, "/api/v1/me/addresses", map[string]interface{}{
		"label":      "Home",
		"phone":      "01711000000",
		"address":    "House 12, Road 5, Dhanmondi",
		"city":       "Dhaka",
		"is_default": true,
	}, auth.Token)
	require.Equal(t, http.StatusCreated, w.Code, env.Msg)

	w, _ = f.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "nusrat@example.com", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = f.do(t, http.MethodGet, "/api/v1/me/login-history", nil, auth.Token)
	require.Equal(t, http.StatusOK, w.Code, env.Msg)
	var history []struct {
		Status     string `json:"status"`
		FailReason string `json:"fail_reason"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, constants.LoginLogStatusFailed, history[0].Status)
	assert.Equal(t, constants.LoginFailReasonInvalidCredentials, history[0].FailReason)
}

func TestAdminOrderStatusAndRBAC(t *testing.T) {
	f := setupRouterTest(t)
	book := f.seedBook(t, "padma-nodir-majhi", 500, nil, 10)
	_, env := f.do(t, http.MethodPost, "/api/v1/orders", orderBody(book.ID, 1), "")
	var placed service.PlaceOrderResult
	require.NoError(t, json.Unmarshal(env.Data, &placed))

	w, _ := f.do(t, http.MethodGet, "/api/v1/admin/orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := f.adminToken(t, "admin", "Admin12345")
	w, env = f.do(t, http.MethodPatch, "/api/v1/admin/orders", map[string]interface{}{"order_id": placed.OrderID, "status": "SHIPPED"}, token)
	require.Equal(t, http.StatusOK, w.Code, env.Msg)
	var updated struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, constants.OrderStatusShipped, updated.Status)

	w, _ = f.do(t, http.MethodPatch, "/api/v1/admin/orders", map[string]interface{}{"order_id": placed.OrderID, "status": "LOST"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = f.do(t, http.MethodGet, "/api/v1/admin/audit-logs?action="+constants.AuditActionOrderStatusUpdate, nil, token)
	require.Equal(t, http.StatusOK, w.Code, env.Msg)
	var audits []struct {
		AdminUsername string `json:"admin_username"`
		TargetType    string `json:"target_type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &audits))
	require.Len(t, audits, 1)
	assert.Equal(t, "admin", audits[0].AdminUsername)
	assert.Equal(t, "order", audits[0].TargetType)

	_, err := f.container.AdminAccounts.Create(service.CreateAdminInput{
		Username: "desk.support",
		Password: "Support123",
		Role:     constants.AdminRoleSupport,
	})
	require.NoError(t, err)
	supportToken := f.adminToken(t, "desk.support", "Support123")

	w, env = f.do(t, http.MethodGet, "/api/v1/admin/orders?status=SHIPPED", nil, supportToken)
	require.Equal(t, http.StatusOK, w.Code, env.Msg)

	w, _ = f.do(t, http.MethodPost, "/api/v1/admin/books", map[string]interface{}{
		"slug":        "new-book",
		"title":       "New Book",
		"author":      "Author",
		"description": "A description long enough.",
		"price":       100,
		"stock":       1,
	}, supportToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = f.do(t, http.MethodDelete, "/api/v1/admin/books/"+fmt.Sprint(book.ID), nil, token)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBannersPublishedByAdmin(t *testing.T) {
	f := setupRouterTest(t)
	token := f.adminToken(t, "admin", "Admin12345")

	w, env := f.do(t, http.MethodPost, "/api/v1/admin/banners", map[string]interface{}{
		"name":       "deals",
		"title":      "Blue Deals Week",
		"link_url":   "/books?sort=top",
		"link_label": "Shop deals",
		"pills":      []string{"SAVE10", "FESTIVE100"},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, env.Msg)

	w, _ = f.do(t, http.MethodPost, "/api/v1/admin/banners", map[string]interface{}{
		"name":  "bad",
		"title": "Bad",
		"tone":  "neon",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = f.do(t, http.MethodGet, "/api/v1/banners", nil, "")
	require.Equal(t, http.StatusOK, w.Code, env.Msg)
	var banners []struct {
		Title string `json:"title"`
		Pills string `json:"pills"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &banners))
	require.Len(t, banners, 1)
	assert.Equal(t, "Blue Deals Week", banners[0].Title)
	assert.Equal(t, "SAVE10,FESTIVE100", banners[0].Pills)

	w, _ = f.do(t, http.MethodGet, "/api/v1/banners?position=sidebar", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPaginationReportsEffectivePageSize(t *testing.T) {
	f := setupRouterTest(t)
	book := f.seedBook(t, "kobi", 300, nil, 10)
	_, env := f.do(t, http.MethodPost, "/api/v1/orders", orderBody(book.ID, 1), "")
	require.Equal(t, 0, env.StatusCode, env.Msg)
	token := f.adminToken(t, "admin", "Admin12345")

	var page struct {
		Pagination struct {
			PageSize  int   `json:"page_size"`
			Total     int64 `json:"total"`
			TotalPage int64 `json:"total_page"`
		} `json:"pagination"`
	}

	w, _ := f.do(t, http.MethodGet, "/api/v1/admin/orders?page_size=100", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 50, page.Pagination.PageSize)
	assert.Equal(t, int64(1), page.Pagination.Total)
	assert.Equal(t, int64(1), page.Pagination.TotalPage)

	w, _ = f.do(t, http.MethodGet, "/api/v1/books?page_size=100", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 50, page.Pagination.PageSize)
	assert.Equal(t, int64(1), page.Pagination.Total)
}
