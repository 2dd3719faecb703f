package status

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maumlog/maumlog-backend/internal/emotion"
	"github.com/maumlog/maumlog-backend/internal/user"
	"github.com/maumlog/maumlog-backend/pkg/apperror"
	"github.com/maumlog/maumlog-backend/pkg/clock"
)

var clk clock.Clock = clock.System{}

// SetClock 允许测试注入时钟。
func SetClock(c clock.Clock) {
	clk = c
}

// pingRequestBody 是状态心跳的请求体。
// 情绪字段可以缺省，表示只更新定位、清空当前情绪。
type pingRequestBody struct {
	EmotionType    *emotion.Emotion    `json:"emotion_type"`
	ExpressionType *emotion.Expression `json:"expression_type"`
	Latitude       *float64            `json:"latitude"`
	Longitude      *float64            `json:"longitude"`
}

// PingHandler 处理 POST /emotion/today
func PingHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)

	var body pingRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "请求格式错误: " + err.Error()})
		return
	}

	snapshot, err := Ping(userID, body.EmotionType, body.ExpressionType,
		body.Latitude, body.Longitude, clk.Now())
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"message": apperror.Message(err)})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetLatestHandler 处理 GET /emotion/today
func GetLatestHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)

	snapshot, err := GetLatest(userID)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"message": apperror.Message(err)})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
