package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerTagNameOnce sync.Once

// useJSONFieldNames 校验错误字段名使用 json tag
func useJSONFieldNames() {
	registerTagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
}

// BindJSON 绑定并校验请求体，失败时写出 400 响应
func BindJSON(c *gin.Context, dst interface{}) bool {
	useJSONFieldNames()
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// BindStrictJSON 同 BindJSON，但拒绝未知字段
func BindStrictJSON(c *gin.Context, dst interface{}) bool {
	useJSONFieldNames()
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondError(c, 400, "Invalid request body", nil)
		return false
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		respondBindError(c, err)
		return false
	}
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// BindQuery 绑定并校验 query 参数
func BindQuery(c *gin.Context, dst interface{}) bool {
	useJSONFieldNames()
	if err := c.ShouldBindQuery(dst); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		RespondValidation(c, ValidationFields(validationErrs))
		return
	}
	if strings.Contains(err.Error(), "unknown field") {
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		RespondValidation(c, map[string]string{field: "unknown"})
		return
	}
	RespondError(c, 400, "Invalid request body", nil)
}

// ValidationFields 转换校验错误为 field -> rule
func ValidationFields(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		key := fieldPath(fe.Namespace())
		if _, exists := fields[key]; exists {
			continue
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[key] = rule
	}
	return fields
}

// fieldPath 去掉顶层结构体名（PlaceOrderRequest.items[0].quantity -> items[0].quantity）
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}
