package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Samsoniteyd/newtailor/internal/config"
	"github.com/Samsoniteyd/newtailor/internal/handler"
	"github.com/Samsoniteyd/newtailor/internal/middleware"
)

// Setup configures the Gin engine and wires all routes.
func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.Metrics())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ====== API ======
	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	secureCookie := cfg.Server.Mode == gin.ReleaseMode

	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost, secureCookie)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// everything below requires a valid session
	protected := api.Group("")
	protected.Use(
		middleware.Auth(jwtSecret, db),
		middleware.Audit(db),
	)

	protected.GET("/auth/profile", authHandler.GetProfile)
	protected.PUT("/auth/profile", authHandler.UpdateProfile)
	protected.PUT("/auth/password", authHandler.ChangePassword)
	protected.DELETE("/auth/profile", authHandler.DeleteAccount)

	requisitionHandler := handler.NewRequisitionHandler(db, cfg.App.PageSize)
	protected.POST("/requisitions", requisitionHandler.Create)
	protected.GET("/requisitions", requisitionHandler.List)
	protected.GET("/requisitions/:id", requisitionHandler.Get)
	protected.PUT("/requisitions/:id", requisitionHandler.Update)
	protected.DELETE("/requisitions/:id", requisitionHandler.Delete)
	protected.POST("/requisitions/:id/notes", requisitionHandler.AddNote)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	logHandler := handler.NewLogHandler(db)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}
