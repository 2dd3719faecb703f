package record

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maumlog/maumlog-backend/internal/emotion"
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

// recordIDParam 解析路径中的记录ID。
func recordIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "无效的记录ID"})
		return 0, false
	}
	return uint(id), true
}

// ListHandler 处理 GET /records
func ListHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))

	filter := ListFilter{
		From:       c.Query("from"),
		To:         c.Query("to"),
		Emotion:    emotion.Emotion(c.Query("emotion")),
		Visibility: emotion.Visibility(c.Query("visibility")),
		Query:      c.Query("q"),
		Page:       page,
		PageSize:   pageSize,
	}

	result, err := ListRecords(userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DetailHandler 处理 GET /records/:id
func DetailHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	recordID, ok := recordIDParam(c)
	if !ok {
		return
	}

	rec, isOwner, err := GetRecord(userID, recordID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec, "isOwner": isOwner})
}

// FullHandler 处理 GET /records/:id/full — 详情和附图一次返回
func FullHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	recordID, ok := recordIDParam(c)
	if !ok {
		return
	}

	rec, isOwner, err := GetRecord(userID, recordID)
	if err != nil {
		respondError(c, err)
		return
	}
	urls, err := GetRecordImages(userID, recordID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec, "isOwner": isOwner, "images": urls})
}

// ImagesHandler 处理 GET /records/:id/images
func ImagesHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	recordID, ok := recordIDParam(c)
	if !ok {
		return
	}

	urls, err := GetRecordImages(userID, recordID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, urls)
}

// representativeRequestBody 是更换代表图片的请求体。
type representativeRequestBody struct {
	URL string `json:"url" binding:"required"`
}

// RepresentativeHandler 处理 PUT /records/:id/representative
func RepresentativeHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	recordID, ok := recordIDParam(c)
	if !ok {
		return
	}

	var body representativeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "请求格式错误: " + err.Error()})
		return
	}

	if err := SetRepresentativeImage(userID, recordID, body.URL); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "代表图片更新完成"})
}

// EditHandler 处理 PUT /records/:id
func EditHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	recordID, ok := recordIDParam(c)
	if !ok {
		return
	}

	var patch UpdatePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "请求格式错误: " + err.Error()})
		return
	}

	if err := EditRecord(userID, recordID, &patch); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "感情记录修改完成"})
}

// DeleteHandler 处理 DELETE /records/:id
func DeleteHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	recordID, ok := recordIDParam(c)
	if !ok {
		return
	}

	if err := DeleteRecord(userID, recordID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TodayLatestHandler 处理 GET /records/today/latest
func TodayLatestHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)

	today := emotion.DateOf(clk.Now(), config.Cfg.Recall.Location())
	rec, err := TodayLatest(userID, today)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			c.Status(http.StatusNoContent)
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
