package middleware

import (
	"errors"
	"fmt"
	"strings"

	"recipe-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	userIDKey    = "user_id"
	userIDHeader = "X-User-ID"
)

// AuthOptions 使用者識別設定
type AuthOptions struct {
	// JWTSecret 為 HS256 簽章密鑰，空字串時不接受 Bearer token
	JWTSecret string
	// AllowHeader 允許以 X-User-ID 標頭指定使用者（本地開發或由上游閘道驗證）
	AllowHeader bool
}

// Auth 解析使用者身分並寫入 context，失敗時回傳 401
func Auth(opts AuthOptions) gin.HandlerFunc {
	secret := []byte(opts.JWTSecret)

	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok && len(secret) > 0 {
			userID, err := subjectFromToken(token, secret)
			if err != nil {
				common.LogWarn("Invalid bearer token",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
				)
				common.WriteError(c, common.ErrUnauthorized)
				return
			}
			c.Set(userIDKey, userID)
			c.Next()
			return
		}

		if opts.AllowHeader {
			if userID := strings.TrimSpace(c.GetHeader(userIDHeader)); userID != "" {
				c.Set(userIDKey, userID)
				c.Next()
				return
			}
		}

		common.WriteError(c, common.ErrUnauthorized)
	}
}

// UserID 取得已驗證的使用者 id，未驗證時為空字串
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func subjectFromToken(tokenString string, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}
