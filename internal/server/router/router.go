package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquaperf/internal/server/handlers"
	"github.com/mamadbah2/aquaperf/pkg/metrics"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Performance *handlers.PerformanceHandler
	Alerts      *handlers.AlertHandler
}

// New wires the Gin engine with required routes and middlewares. m may be nil.
func New(h Handlers, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	farms := r.Group("/farms/:farmID")
	farms.GET("/performance", h.Performance.GetReport)
	farms.GET("/alerts", h.Alerts.List)

	alerts := r.Group("/alerts/:alertID")
	alerts.POST("/acknowledge", h.Alerts.Acknowledge)
	alerts.POST("/resolve", h.Alerts.Resolve)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request failed", fields...)
			return
		}
		logger.Info("request completed", fields...)
	}
}
