package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
	"github.com/KasumiMercury/primind-trigger-engine/internal/trigger"
)

type SpatialTransitionRequest struct {
	Handle     string `json:"handle" binding:"required"`
	Transition string `json:"transition" binding:"required,oneof=enter exit dwell"`
}

// TriggerHandler ingests raw platform trigger deliveries. The spatial
// endpoint exists for platforms whose geofence callbacks arrive over HTTP
// rather than through an in-process service.
type TriggerHandler struct {
	spatial *trigger.SpatialTriggerController
}

func NewTriggerHandler(spatial *trigger.SpatialTriggerController) *TriggerHandler {
	return &TriggerHandler{
		spatial: spatial,
	}
}

func (h *TriggerHandler) IngestSpatialTransition(c *gin.Context) {
	var req SpatialTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("request validation failed",
			"error", err,
			"path", c.Request.URL.Path,
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Field:   "",
		})

		return
	}

	transition, err := domain.NewTransition(req.Transition)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Field:   "transition",
		})

		return
	}

	slog.Info("ingesting spatial transition",
		"handle", req.Handle,
		"transition", req.Transition,
	)

	h.spatial.OnTransition(c.Request.Context(), req.Handle, transition)

	c.Status(http.StatusAccepted)
}

func (h *TriggerHandler) RegisterRoutes(router *gin.RouterGroup) {
	triggers := router.Group("/triggers")
	{
		triggers.POST("/spatial", h.IngestSpatialTransition)
	}
}
