package user

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maumlog/maumlog-backend/pkg/clock"
	"github.com/maumlog/maumlog-backend/pkg/token"
)

const (
	// UserIDKey 是认证后的所有者ID在Gin上下文中的键。
	// 核心模块无条件信任它，不再二次推导身份。
	UserIDKey = "userID"
)

var clk clock.Clock = clock.System{}

// SetClock 允许测试注入时钟。
func SetClock(c clock.Clock) {
	clk = c
}

// RequireUserMiddleware 校验 Authorization: Bearer <token> 会话令牌，
// 并把其中的用户ID放入Gin上下文。令牌无效时拒绝请求。
func RequireUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == "" || tokenStr == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "缺少会话令牌"})
			return
		}

		userID, err := token.ParseSessionToken(tokenStr, clk.Now())
		if err != nil || !IsValidUUID(userID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "会话令牌无效"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
