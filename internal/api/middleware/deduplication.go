package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"recipe-planner/internal/pkg/common"
)

// Deduplication 請求去重中間件：同一用戶端在 window 內送出相同的 POST 會被拒絕
func Deduplication(window time.Duration) gin.HandlerFunc {
	if window <= 0 {
		window = time.Second
	}
	// 請求指紋緩存
	seen := cache.New(window, 10*window)

	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					common.WriteError(c, common.ErrRequestTooLarge.WithErr(err))
				} else {
					common.WriteError(c, common.ErrInvalidRequest.WithErr(err))
				}
				return
			}

			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		// 生成請求指紋
		client := UserID(c)
		if client == "" {
			client = c.ClientIP()
		}
		fingerprint := client + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + bodyHash

		// Add 在指紋已存在時失敗，視為重複請求
		if err := seen.Add(fingerprint, struct{}{}, cache.DefaultExpiration); err != nil {
			common.LogInfo("Duplicate request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("client", client),
			)
			common.WriteError(c, common.NewError(common.ErrCodeTooManyRequests,
				"Request too frequent", http.StatusTooManyRequests, nil))
			return
		}

		c.Next()
	}
}
