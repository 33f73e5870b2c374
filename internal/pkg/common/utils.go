package common

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DateLayout 邊界日期格式
const DateLayout = "2006-01-02"

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// ParseDate 解析 YYYY-MM-DD 日期
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// WriteError 寫入錯誤響應，非 CustomError 一律視為內部錯誤
func WriteError(c *gin.Context, err error) {
	var ce *CustomError
	if !errors.As(err, &ce) {
		ce = ErrInternalError.WithErr(err)
	}
	c.AbortWithStatusJSON(ce.Status, ce.Response())
}
