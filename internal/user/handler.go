package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maumlog/maumlog-backend/internal/platform/config"
	"github.com/maumlog/maumlog-backend/pkg/token"
)

// CreateSession 处理 POST /user/session。
// 为匿名客户端生成一个新用户并签发会话令牌。
// 第三方联合登录在上游服务完成后同样会走到这里换取令牌。
func CreateSession(c *gin.Context) {
	userID, err := CreateProvisionalUser()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "无法创建用户"})
		return
	}

	if err := ActivateUser(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "无法激活用户"})
		return
	}

	sessionToken, err := token.IssueSessionToken(userID, config.Cfg.Auth.TokenTTL(), clk.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "无法签发会话令牌"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId": userID,
		"token":  sessionToken,
	})
}
