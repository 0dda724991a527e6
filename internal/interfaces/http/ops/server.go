package ops

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/ordersync/internal/infrastructure/config"
	"github.com/erp/ordersync/internal/infrastructure/logger"
)

// NewServer builds the ops HTTP server with logging and panic recovery
// middleware. The caller owns startup and shutdown.
func NewServer(cfg config.HTTPConfig, env string, handler *Handler, log *zap.Logger) *http.Server {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	handler.RegisterRoutes(engine)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
