package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-trigger-engine/internal/app"
)

type AlarmHandler struct {
	useCase app.AlarmUseCase
}

func NewAlarmHandler(useCase app.AlarmUseCase) *AlarmHandler {
	return &AlarmHandler{
		useCase: useCase,
	}
}

func (h *AlarmHandler) CreateAlarm(c *gin.Context) {
	slog.Info("handling create alarm request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	var req CreateAlarmRequest
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

	input := app.CreateAlarmInput{
		Label:                 req.Label,
		Hour:                  req.Hour,
		Minute:                req.Minute,
		RepeatDays:            req.RepeatDays,
		SoundRef:              req.SoundRef,
		Vibrate:               req.Vibrate,
		SnoozeDurationMinutes: req.SnoozeDurationMinutes,
	}

	output, err := h.useCase.CreateAlarm(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)

		return
	}

	slog.Info("alarm created successfully",
		"alarm_id", output.ID,
	)
	c.JSON(http.StatusCreated, FromAlarmDTO(output))
}

func (h *AlarmHandler) ListAlarms(c *gin.Context) {
	output, err := h.useCase.ListAlarms(c.Request.Context())
	if err != nil {
		h.handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, FromAlarmDTOs(output))
}

func (h *AlarmHandler) SetAlarmEnabled(c *gin.Context) {
	id := c.Param("id")

	slog.Info("handling set alarm enabled request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"alarm_id", id,
	)

	var req SetAlarmEnabledRequest
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

	input := app.SetAlarmEnabledInput{
		ID:      id,
		Enabled: req.Enabled,
	}

	output, err := h.useCase.SetAlarmEnabled(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)

		return
	}

	slog.Info("alarm enabled state updated",
		"alarm_id", output.ID,
		"enabled", output.Enabled,
	)
	c.JSON(http.StatusOK, FromAlarmDTO(output))
}

func (h *AlarmHandler) SnoozeAlarm(c *gin.Context) {
	id := c.Param("id")

	slog.Info("handling snooze alarm request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"alarm_id", id,
	)

	input := app.SnoozeAlarmInput{
		ID: id,
	}

	if err := h.useCase.SnoozeAlarm(c.Request.Context(), input); err != nil {
		h.handleError(c, err)

		return
	}

	slog.Info("alarm snoozed successfully",
		"alarm_id", id,
	)
	c.Status(http.StatusNoContent)
}

func (h *AlarmHandler) DeleteAlarm(c *gin.Context) {
	id := c.Param("id")

	slog.Info("handling delete alarm request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"alarm_id", id,
	)

	input := app.DeleteAlarmInput{
		ID: id,
	}

	if err := h.useCase.DeleteAlarm(c.Request.Context(), input); err != nil {
		h.handleError(c, err)

		return
	}

	slog.Info("alarm deleted successfully",
		"alarm_id", id,
	)
	c.Status(http.StatusNoContent)
}

func (h *AlarmHandler) handleError(c *gin.Context, err error) {
	var validationErr *app.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Message,
			Field:   validationErr.Field,
		})

		return
	}

	if errors.Is(err, app.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "resource not found",
			Field:   "",
		})

		return
	}

	if errors.Is(err, app.ErrScheduling) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "scheduling_error",
			Message: "trigger could not be armed",
			Field:   "",
		})

		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
		Field:   "",
	})
}

func (h *AlarmHandler) RegisterRoutes(router *gin.RouterGroup) {
	alarms := router.Group("/alarms")
	{
		alarms.POST("", h.CreateAlarm)
		alarms.GET("", h.ListAlarms)
		alarms.POST("/:id/enabled", h.SetAlarmEnabled)
		alarms.POST("/:id/snooze", h.SnoozeAlarm)
		alarms.DELETE("/:id", h.DeleteAlarm)
	}
}
