package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-trigger-engine/internal/app"
)

type ReminderHandler struct {
	useCase app.ReminderUseCase
}

func NewReminderHandler(useCase app.ReminderUseCase) *ReminderHandler {
	return &ReminderHandler{
		useCase: useCase,
	}
}

func (h *ReminderHandler) CreateTimeReminder(c *gin.Context) {
	slog.Info("handling create time reminder request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	var req CreateTimeReminderRequest
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

	input := app.CreateTimeReminderInput{
		Message:       req.Message,
		ScheduledTime: req.ScheduledTime,
		Recurrence:    toRecurrenceInput(req.Recurrence),
		Priority:      req.Priority,
		Category:      req.Category,
	}

	output, err := h.useCase.CreateTimeReminder(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)

		return
	}

	slog.Info("time reminder created successfully",
		"reminder_id", output.ID,
	)
	c.JSON(http.StatusCreated, FromReminderDTO(output))
}

func (h *ReminderHandler) CreateLocationReminder(c *gin.Context) {
	slog.Info("handling create location reminder request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	var req CreateLocationReminderRequest
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

	var constraint *app.TimeConstraintInput

	if req.Location.TimeConstraint != nil {
		constraint = &app.TimeConstraintInput{
			Start:      req.Location.TimeConstraint.Start,
			End:        req.Location.TimeConstraint.End,
			DaysOfWeek: req.Location.TimeConstraint.DaysOfWeek,
		}
	}

	input := app.CreateLocationReminderInput{
		Message: req.Message,
		Location: app.LocationInput{
			Latitude:         req.Location.Latitude,
			Longitude:        req.Location.Longitude,
			RadiusMeters:     req.Location.RadiusMeters,
			PlaceName:        req.Location.PlaceName,
			PlaceCategory:    req.Location.PlaceCategory,
			TriggerDirection: req.Location.TriggerDirection,
			RecurrencePolicy: req.Location.RecurrencePolicy,
			TimeConstraint:   constraint,
		},
		Priority: req.Priority,
		Category: req.Category,
	}

	output, err := h.useCase.CreateLocationReminder(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)

		return
	}

	slog.Info("location reminder created successfully",
		"reminder_id", output.ID,
	)
	c.JSON(http.StatusCreated, FromReminderDTO(output))
}

func (h *ReminderHandler) ListReminders(c *gin.Context) {
	output, err := h.useCase.ListReminders(c.Request.Context())
	if err != nil {
		h.handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, FromReminderDTOs(output))
}

func (h *ReminderHandler) SnoozeReminder(c *gin.Context) {
	id := c.Param("id")

	slog.Info("handling snooze reminder request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"reminder_id", id,
	)

	var req SnoozeReminderRequest
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

	input := app.SnoozeReminderInput{
		ID:      id,
		Minutes: req.Minutes,
	}

	if err := h.useCase.SnoozeReminder(c.Request.Context(), input); err != nil {
		h.handleError(c, err)

		return
	}

	slog.Info("reminder snoozed successfully",
		"reminder_id", id,
	)
	c.Status(http.StatusNoContent)
}

func (h *ReminderHandler) SnoozeUntilLeave(c *gin.Context) {
	id := c.Param("id")

	slog.Info("handling snooze until leave request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"reminder_id", id,
	)

	input := app.SnoozeUntilLeaveInput{
		ID: id,
	}

	if err := h.useCase.SnoozeUntilLeave(c.Request.Context(), input); err != nil {
		h.handleError(c, err)

		return
	}

	slog.Info("reminder snoozed until leave",
		"reminder_id", id,
	)
	c.Status(http.StatusNoContent)
}

func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	id := c.Param("id")

	slog.Info("handling delete reminder request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"reminder_id", id,
	)

	input := app.DeleteReminderInput{
		ID: id,
	}

	if err := h.useCase.DeleteReminder(c.Request.Context(), input); err != nil {
		h.handleError(c, err)

		return
	}

	slog.Info("reminder deleted successfully",
		"reminder_id", id,
	)
	c.Status(http.StatusNoContent)
}

func (h *ReminderHandler) handleError(c *gin.Context, err error) {
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

func (h *ReminderHandler) RegisterRoutes(router *gin.RouterGroup) {
	reminders := router.Group("/reminders")
	{
		reminders.POST("/time", h.CreateTimeReminder)
		reminders.POST("/location", h.CreateLocationReminder)
		reminders.GET("", h.ListReminders)
		reminders.POST("/:id/snooze", h.SnoozeReminder)
		reminders.POST("/:id/snooze-until-leave", h.SnoozeUntilLeave)
		reminders.DELETE("/:id", h.DeleteReminder)
	}
}

func toRecurrenceInput(req *RecurrenceRequest) *app.RecurrenceInput {
	if req == nil {
		return nil
	}

	return &app.RecurrenceInput{
		Type:           req.Type,
		Interval:       req.Interval,
		DaysOfWeek:     req.DaysOfWeek,
		DayOfMonth:     req.DayOfMonth,
		EndDate:        req.EndDate,
		MaxOccurrences: req.MaxOccurrences,
	}
}
