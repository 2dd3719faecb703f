package draft

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maumlog/maumlog-backend/internal/platform/config"
	"github.com/maumlog/maumlog-backend/internal/user"
	"github.com/maumlog/maumlog-backend/pkg/apperror"
	"github.com/maumlog/maumlog-backend/pkg/clock"
)

var clk clock.Clock = clock.System{}

// SetClock 允许测试注入时钟。
func SetClock(c clock.Clock) {
	clk = c
}

// respondError 统一把服务层错误翻译为HTTP响应。
func respondError(c *gin.Context, err error) {
	c.JSON(apperror.HTTPStatus(err), gin.H{"message": apperror.Message(err)})
}

// draftIDParam 解析路径中的草稿ID。
func draftIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "无效的草稿ID"})
		return 0, false
	}
	return uint(id), true
}

// CreateHandler 处理 POST /record-drafts
func CreateHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)

	var fields Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "请求格式错误: " + err.Error()})
		return
	}

	d, err := CreateDraft(userID, &fields, clk.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"draftId": d.ID, "created_at": d.CreatedAt})
}

// GetHandler 处理 GET /record-drafts/:id
func GetHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	draftID, ok := draftIDParam(c)
	if !ok {
		return
	}

	d, images, err := GetDraft(userID, draftID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": d, "images": images})
}

// UpdateHandler 处理 PUT /record-drafts/:id
func UpdateHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	draftID, ok := draftIDParam(c)
	if !ok {
		return
	}

	var fields Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "请求格式错误: " + err.Error()})
		return
	}

	if err := UpdateDraft(userID, draftID, &fields); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "草稿修改完成"})
}

// attachImageRequestBody 是追加图片的请求体，URL来自外部上传服务。
type attachImageRequestBody struct {
	URL string `json:"url" binding:"required"`
}

// AttachImageHandler 处理 POST /record-drafts/:id/images
func AttachImageHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	draftID, ok := draftIDParam(c)
	if !ok {
		return
	}

	var body attachImageRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "请求格式错误: " + err.Error()})
		return
	}

	position, err := AttachImage(userID, draftID, body.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"position": position})
}

// CancelHandler 处理 DELETE /record-drafts/:id
func CancelHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	draftID, ok := draftIDParam(c)
	if !ok {
		return
	}

	if err := CancelDraft(userID, draftID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ConfirmHandler 处理 POST /record-drafts/:id/confirm
func ConfirmHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	draftID, ok := draftIDParam(c)
	if !ok {
		return
	}

	recordID, err := ConfirmDraft(userID, draftID, config.Cfg.Recall.Location(), clk.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recordId": recordID})
}
