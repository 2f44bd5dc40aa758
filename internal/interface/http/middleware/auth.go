package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/jwt"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Authorization头解析Bearer Token
// 2. 先查Redis黑名单（登出的Token立即失效），再做签名校验
// 3. 校验通过后把用户身份写入gin.Context，供后续Handler使用
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// RequireAuth 强制认证
// 未携带Token或Token无效时直接返回401，不进入Handler
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 提取Token
		token, err := extractToken(c)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		// 2. 检查黑名单（已登出的Token）
		inBlacklist, err := m.sessionStore.IsInBlacklist(c.Request.Context(), token)
		if err != nil {
			// Redis故障时降级：只做签名校验，不阻断请求
			logger.L().WithError(err).Warn("黑名单检查失败，降级为仅签名校验")
		} else if inBlacklist {
			response.Error(c, errors.New(errors.ErrCodeInvalidToken, "Token已失效"))
			c.Abort()
			return
		}

		// 3. 校验签名并解析Claims
		claims, err := m.jwtManager.ParseToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		// 4. 写入上下文
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)

		c.Next()
	}
}

// OptionalAuth 可选认证
// 携带了有效Token就注入用户身份，没携带也放行（游客可访问）
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c)
		if err != nil {
			c.Next()
			return
		}

		claims, err := m.jwtManager.ParseToken(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// extractToken 从Authorization头提取Bearer Token
func extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errors.New(errors.ErrCodeUnauthorized, "缺少认证信息")
	}

	// 格式: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New(errors.ErrCodeInvalidToken, "认证格式错误")
	}

	return parts[1], nil
}

// GetUserID 从上下文读取当前用户ID
func GetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	userID, ok := v.(uint)
	return userID, ok
}

// GetEmail 从上下文读取当前用户邮箱
func GetEmail(c *gin.Context) (string, bool) {
	v, exists := c.Get("email")
	if !exists {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

// MustGetUserID 读取当前用户ID，要求路由已挂载RequireAuth
func MustGetUserID(c *gin.Context) uint {
	userID, ok := GetUserID(c)
	if !ok {
		panic("middleware: user_id不存在，请确认路由已挂载RequireAuth")
	}
	return userID
}
