package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// RequestID 取得請求 ID，缺少時生成一個並寫回響應頭
func RequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = c.Writer.Header().Get("X-Request-ID")
	}
	if requestID == "" {
		requestID = GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}
	return requestID
}

// WriteError 寫入錯誤響應並中止後續處理
func WriteError(c *gin.Context, err error) {
	ce := AsCustomError(err)
	c.AbortWithStatusJSON(ce.Status, ce.Response(gin.IsDebugging()))
}

// BindError 將請求綁定錯誤轉為 API 錯誤
func BindError(err error) *CustomError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrRequestTooLarge.Wrap(err)
	}
	return ErrInvalidRequest.Wrap(err)
}
