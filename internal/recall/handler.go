package recall

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maumlog/maumlog-backend/internal/platform/config"
	"github.com/maumlog/maumlog-backend/internal/user"
	"github.com/maumlog/maumlog-backend/pkg/apperror"
)

func respondError(c *gin.Context, err error) {
	c.JSON(apperror.HTTPStatus(err), gin.H{"message": apperror.Message(err)})
}

// PendingHandler 处理 GET /recall/pending
func PendingHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)

	items, err := ListPending(userID, clk.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": items})
}

// AgoHandler 处理 GET /recall/ago?months=6|12
func AgoHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)

	months, err := strconv.Atoi(c.DefaultQuery("months", "6"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "无效的months参数"})
		return
	}

	items, err := ListAgo(userID, months, clk.Now(), config.Cfg.Recall.Location())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": items})
}

// TodayHandler 处理 GET /recall/today
func TodayHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)

	bundle, err := GetTodayBundle(userID, clk.Now(), config.Cfg.Recall.Location())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle)
}

// AcknowledgeHandler 处理 POST /recall/:recordId/ack
func AcknowledgeHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)

	recordID, err := strconv.ParseUint(c.Param("recordId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "无效的记录ID"})
		return
	}

	if err := Acknowledge(userID, uint(recordID), clk.Now()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "回顾完成"})
}
