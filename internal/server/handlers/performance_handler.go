package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

// ReportService produces farm performance reports.
type ReportService interface {
	Report(ctx context.Context, farmID string, refresh bool, now time.Time) (models.BatchReport, error)
}

// PerformanceHandler serves farm performance reports.
type PerformanceHandler struct {
	svc    ReportService
	now    func() time.Time
	logger *zap.Logger
}

// NewPerformanceHandler constructs the HTTP handler adapter.
func NewPerformanceHandler(svc ReportService, logger *zap.Logger) *PerformanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceHandler{svc: svc, now: time.Now, logger: logger}
}

// GetReport returns the latest report of a farm. ?refresh=true forces a new batch.
func (h *PerformanceHandler) GetReport(c *gin.Context) {
	farmID := c.Param("farmID")

	refresh := false
	if raw := c.Query("refresh"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refresh must be a boolean"})
			return
		}
		refresh = v
	}

	report, err := h.svc.Report(c.Request.Context(), farmID, refresh, h.now().UTC())
	if err != nil {
		if report.FarmID == "" {
			h.logger.Error("failed to build report", zap.String("farm_id", farmID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "unable to evaluate farm"})
			return
		}
		// The report was computed; only storing it failed.
		h.logger.Warn("report served without persistence", zap.String("farm_id", farmID), zap.Error(err))
	}

	c.JSON(http.StatusOK, report)
}
