package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
	alertsvc "github.com/mamadbah2/aquaperf/internal/service/alerts"
)

// AlertService exposes the alert lifecycle.
type AlertService interface {
	Acknowledge(ctx context.Context, alertID string) (models.PredictiveAlert, error)
	Resolve(ctx context.Context, alertID string) (models.PredictiveAlert, error)
	List(ctx context.Context, farmID, status string) ([]models.PredictiveAlert, error)
}

// AlertHandler serves alert listing and lifecycle changes.
type AlertHandler struct {
	svc    AlertService
	logger *zap.Logger
}

// NewAlertHandler constructs the HTTP handler adapter.
func NewAlertHandler(svc AlertService, logger *zap.Logger) *AlertHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertHandler{svc: svc, logger: logger}
}

// List returns the alerts of a farm. ?status= filters by lifecycle status.
func (h *AlertHandler) List(c *gin.Context) {
	alerts, err := h.svc.List(c.Request.Context(), c.Param("farmID"), c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if alerts == nil {
		alerts = []models.PredictiveAlert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// Acknowledge moves an active alert to acknowledged.
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	alert, err := h.svc.Acknowledge(c.Request.Context(), c.Param("alertID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// Resolve moves an acknowledged alert to resolved.
func (h *AlertHandler) Resolve(c *gin.Context) {
	alert, err := h.svc.Resolve(c.Request.Context(), c.Param("alertID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (h *AlertHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrAlertNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, alertsvc.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("alert request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
