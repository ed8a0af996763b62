// Package api assembles the HTTP server for invoice uploads.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ginjaninja78/torg12/internal/api/handlers"
	"github.com/ginjaninja78/torg12/internal/api/middleware"
	"github.com/ginjaninja78/torg12/internal/api/responses"
	"github.com/ginjaninja78/torg12/internal/config"
)

// NewRouter builds the gin engine with all routes registered.
//
// Routes:
//   - POST /api/v1/torg12/parse
//   - GET  /health
func NewRouter(cfg *config.MainConfig, profiles []*config.SupplierProfile, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	responses.SetLogger(logger)

	torg12Handler := handlers.NewTorg12Handler(cfg, profiles, logger)

	router := gin.New()
	router.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/torg12/parse", torg12Handler.HandleParse)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "service": "torg12"})
	})

	return router
}
