package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"portfolioX/internal/config"
	"portfolioX/internal/export"
)

// Dependencies 汇总路由注册需要的外部组件。
type Dependencies struct {
	Exporter    *export.Exporter
	Jobs        jobStore
	Enqueuer    taskEnqueuer
	Storage     archiveLinker
	RedisClient *redis.Client
	Scanner     export.ImageScanner
	Logger      *slog.Logger
	Export      config.ExportConfig
	Origins     []string
}

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	exportHandler := NewExportHandler(deps.Exporter, deps.Jobs, deps.Enqueuer, deps.Storage, deps.RedisClient, deps.Export)
	imageHandler := NewImageHandler(deps.Scanner, deps.Export.MaxImageBytes)
	wsHandler := NewWsHandler(deps.RedisClient, deps.Jobs, deps.Logger, deps.Origins)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)
		v1.GET("/themes", exportHandler.ListThemes)
		v1.POST("/images", imageHandler.UploadImage)

		portfolioGroup := v1.Group("/portfolio")
		{
			portfolioGroup.GET("/default", exportHandler.GetDefaultPortfolio)
			portfolioGroup.POST("/export", exportHandler.ExportPortfolio)
			portfolioGroup.POST("/exports", exportHandler.CreateExportJob)
			portfolioGroup.GET("/exports/:id", exportHandler.GetExportJob)
			portfolioGroup.GET("/exports/:id/download-link", exportHandler.GetDownloadLink)
		}
	}
}
