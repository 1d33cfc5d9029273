package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrderRetryExhaustedIsConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)

	shared.RespondServiceError(c, fmt.Errorf("place order: %w", service.ErrPlaceOrderRetry), placeOrderErrorRules...)

	var env struct {
		StatusCode int    `json:"status_code"`
		Msg        string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusConflict, env.StatusCode)
	assert.Equal(t, "Order could not be placed, please retry", env.Msg)
}
