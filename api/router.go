package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maumlog/maumlog-backend/internal/draft"
	"github.com/maumlog/maumlog-backend/internal/emotion"
	"github.com/maumlog/maumlog-backend/internal/platform/database"
	"github.com/maumlog/maumlog-backend/internal/recall"
	"github.com/maumlog/maumlog-backend/internal/record"
	"github.com/maumlog/maumlog-backend/internal/status"
	"github.com/maumlog/maumlog-backend/internal/user"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 会话签发不需要认证
		api.POST("/user/session", user.CreateSession)

		// 健康检查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
				"redis":  database.IsRedisHealthy(),
			})
		})

		// 草稿相关的路由组 /api/record-drafts
		draftRoutes := api.Group("/record-drafts", user.RequireUserMiddleware())
		{
			draftRoutes.POST("", draft.CreateHandler)
			draftRoutes.GET("/:id", draft.GetHandler)
			draftRoutes.PUT("/:id", draft.UpdateHandler)
			draftRoutes.DELETE("/:id", draft.CancelHandler)
			draftRoutes.POST("/:id/images", draft.AttachImageHandler)
			draftRoutes.POST("/:id/confirm", draft.ConfirmHandler)
		}

		// 记录相关的路由组 /api/records
		recordRoutes := api.Group("/records", user.RequireUserMiddleware())
		{
			recordRoutes.GET("", record.ListHandler)
			// 固定路径要注册在 :id 之前
			recordRoutes.GET("/today/latest", record.TodayLatestHandler)
			recordRoutes.GET("/:id", record.DetailHandler)
			recordRoutes.GET("/:id/full", record.FullHandler)
			recordRoutes.GET("/:id/images", record.ImagesHandler)
			recordRoutes.PUT("/:id/representative", record.RepresentativeHandler)
			recordRoutes.PUT("/:id", record.EditHandler)
			recordRoutes.DELETE("/:id", record.DeleteHandler)
		}

		// 聚合读模型 /api/emotion
		emotionRoutes := api.Group("/emotion", user.RequireUserMiddleware())
		{
			emotionRoutes.GET("/calendar", emotion.GetCalendar)
			emotionRoutes.GET("/stats", emotion.GetStats)
			emotionRoutes.GET("/stats/summary", emotion.GetSummary)
			emotionRoutes.GET("/history", emotion.GetHistoryHandler)
			emotionRoutes.GET("/report", emotion.GetReportHandler)
			emotionRoutes.GET("/hotspots", emotion.GetHotspotsHandler)

			// 当天状态快照
			emotionRoutes.POST("/today", status.PingHandler)
			emotionRoutes.GET("/today", status.GetLatestHandler)
		}

		// 回顾 /api/recall
		recallRoutes := api.Group("/recall", user.RequireUserMiddleware())
		{
			recallRoutes.GET("/pending", recall.PendingHandler)
			recallRoutes.GET("/ago", recall.AgoHandler)
			recallRoutes.GET("/today", recall.TodayHandler)
			recallRoutes.POST("/:recordId/ack", recall.AcknowledgeHandler)
		}
	}
}
