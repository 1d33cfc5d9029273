package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorEnvelope struct {
	StatusCode int                    `json:"status_code"`
	Msg        string                 `json:"msg"`
	Data       map[string]interface{} `json:"data"`
}

func runServiceError(t *testing.T, err error, rules ...MappedError) (*httptest.ResponseRecorder, errorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondServiceError(c, err, rules...)
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestRespondServiceErrorCategories(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", service.ErrInvalidQuantity, http.StatusBadRequest},
		{"invalid book", service.ErrInvalidBook, http.StatusBadRequest},
		{"unauthorized", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", service.ErrUserDisabled, http.StatusForbidden},
		{"not found", service.ErrOrderNotFound, http.StatusNotFound},
		{"conflict", service.ErrBookInUse, http.StatusConflict},
		{"internal", errors.New("database is locked"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := runServiceError(t, tc.err)
			assert.Equal(t, tc.code, w.Code)
			assert.Equal(t, tc.code, env.StatusCode)
		})
	}
}

func TestRespondServiceErrorHidesInternalDetail(t *testing.T) {
	_, env := runServiceError(t, fmt.Errorf("query failed: %w", errors.New("dial tcp 10.0.0.5:5432")))
	assert.Equal(t, "Internal server error", env.Msg)
	assert.False(t, strings.Contains(env.Msg, "10.0.0.5"))
}

func TestRespondServiceErrorRulesWin(t *testing.T) {
	rules := []MappedError{{Target: service.ErrPlaceOrderRetry, Code: 409, Msg: "retry"}}
	w, env := runServiceError(t, service.ErrPlaceOrderRetry, rules...)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "retry", env.Msg)
}

func TestRespondServiceErrorFieldAndStock(t *testing.T) {
	w, env := runServiceError(t, service.NewFieldError("status", "must be active, inactive or all"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields, ok := env.Data["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "must be active, inactive or all", fields["status"])

	_, env = runServiceError(t, &service.OutOfStockError{Title: "Deyal"})
	assert.Equal(t, "Out of stock: Deyal", env.Msg)
}
