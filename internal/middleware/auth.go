package middleware

import (
	"strings"

	"ckan-go/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "user_id"
	userNameKey = "user_name"
	sysadminKey = "sysadmin"
)

// IdentityMiddleware 解析 Authorization 头中的 API Token；没有头时以匿名身份继续
func IdentityMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.Next()
			return
		}

		// 同时接受 "Bearer <token>" 与裸 token
		tokenString := authHeader
		if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			tokenString = strings.TrimSpace(parts[1])
		}

		claims, err := jwtManager.ValidateToken(tokenString)
		if err != nil {
			utils.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userNameKey, claims.Name)
		c.Set(sysadminKey, claims.Sysadmin)

		c.Next()
	}
}

// RequireAuth 要求已登录
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c); !ok {
			utils.Unauthorized(c, "未认证")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSysadmin 要求系统管理员
func RequireSysadmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsSysadmin(c) {
			utils.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return "", false
	}
	return userID.(string), true
}

// GetUserName 从上下文获取用户名
func GetUserName(c *gin.Context) (string, bool) {
	name, exists := c.Get(userNameKey)
	if !exists {
		return "", false
	}
	return name.(string), true
}

// IsSysadmin 从上下文判断是否为系统管理员
func IsSysadmin(c *gin.Context) bool {
	sysadmin, exists := c.Get(sysadminKey)
	if !exists {
		return false
	}
	return sysadmin.(bool)
}
