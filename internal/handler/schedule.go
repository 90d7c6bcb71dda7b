package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schedule-app/backend/internal/model"
	"github.com/schedule-app/backend/internal/service"
	"github.com/sirupsen/logrus"
)

type ScheduleHandler struct {
	svc *service.ScheduleService
	log *logrus.Logger
}

func NewScheduleHandler(svc *service.ScheduleService, log *logrus.Logger) *ScheduleHandler {
	return &ScheduleHandler{svc: svc, log: log}
}

// ListEvents godoc
// @Summary List the current user's events
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.EventsResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/schedule/events [get]
func (h *ScheduleHandler) ListEvents(c *gin.Context) {
	claims := GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Message: "Invalid token"})
		return
	}

	events, err := h.svc.ListEvents(c.Request.Context(), claims.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.EventsResponse{
		Message: "Events retrieved successfully",
		Count:   len(events),
		Events:  events,
	})
}

// GetEvent godoc
// @Summary Get one event
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} model.EventResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/schedule/events/{id} [get]
func (h *ScheduleHandler) GetEvent(c *gin.Context) {
	claims := GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Message: "Invalid token"})
		return
	}

	event, err := h.svc.GetEvent(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.EventResponse{
		Message: "Event retrieved successfully",
		Event:   *event,
	})
}

// CreateEvent godoc
// @Summary Create an event
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.EventRequest true "Event payload"
// @Success 200 {object} model.EventResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /api/schedule/events [post]
func (h *ScheduleHandler) CreateEvent(c *gin.Context) {
	claims := GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Message: "Invalid token"})
		return
	}

	var req model.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid request body"})
		return
	}

	event, err := h.svc.CreateEvent(c.Request.Context(), claims.UserID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.EventResponse{
		Message: "Event created successfully",
		Event:   *event,
	})
}

// UpdateEvent godoc
// @Summary Update an event
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body model.EventRequest true "Event payload"
// @Success 200 {object} model.EventResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/schedule/events/{id} [put]
func (h *ScheduleHandler) UpdateEvent(c *gin.Context) {
	claims := GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Message: "Invalid token"})
		return
	}

	var req model.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid request body"})
		return
	}

	event, err := h.svc.UpdateEvent(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.EventResponse{
		Message: "Event updated successfully",
		Event:   *event,
	})
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} model.MessageResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/schedule/events/{id} [delete]
func (h *ScheduleHandler) DeleteEvent(c *gin.Context) {
	claims := GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Message: "Invalid token"})
		return
	}

	if err := h.svc.DeleteEvent(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{Message: "Event deleted successfully"})
}

func (h *ScheduleHandler) writeError(c *gin.Context, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Message: "Validation failed",
			Errors:  validationErr.Fields,
		})
	case errors.Is(err, service.ErrEventNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Message: "Event not found"})
	default:
		h.log.WithError(err).Error("schedule operation failed")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Message: "An unexpected error occurred"})
	}
}
