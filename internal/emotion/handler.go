package emotion

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maumlog/maumlog-backend/internal/platform/config"
	"github.com/maumlog/maumlog-backend/internal/user"
	"github.com/maumlog/maumlog-backend/pkg/apperror"
)

// respondError 统一把服务层错误翻译为HTTP响应。
func respondError(c *gin.Context, err error) {
	c.JSON(apperror.HTTPStatus(err), gin.H{"message": apperror.Message(err)})
}

// GetCalendar 处理 GET /emotion/calendar?year=2025&month=08
func GetCalendar(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)

	yearMonth, err := yearMonthParam(c.Query("year"), c.Query("month"))
	if err != nil {
		respondError(c, err)
		return
	}

	days, err := GetCalendarMonth(userID, yearMonth)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, days)
}

// GetStats 处理 GET /emotion/stats?year=2025&month=08
func GetStats(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)

	yearMonth, err := yearMonthParam(c.Query("year"), c.Query("month"))
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := GetMonthlyStats(userID, yearMonth)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetSummary 处理 GET /emotion/stats/summary?year=2025&month=08
func GetSummary(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)

	yearMonth, err := yearMonthParam(c.Query("year"), c.Query("month"))
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := GetStatsSummary(userID, yearMonth)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetHistoryHandler 处理 GET /emotion/history
func GetHistoryHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)

	items, err := GetHistory(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetReportHandler 处理 GET /emotion/report
func GetReportHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)

	cells, err := GetReport(userID, config.Cfg.Recall.Location())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cells)
}

// GetHotspotsHandler 处理 GET /emotion/hotspots
func GetHotspotsHandler(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)

	spots, err := GetHotspots(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spots)
}
