package handlers

import (
	"net/http"

	"reservo/services/schedule"
	"reservo/utils"

	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	Service *schedule.Service
}

func NewScheduleHandler(svc *schedule.Service) *ScheduleHandler {
	return &ScheduleHandler{Service: svc}
}

func (h *ScheduleHandler) CreateScheduleHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	var req schedule.CreateRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.Service.CreateSchedule(c.Request.Context(), t, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *ScheduleHandler) GetScheduleHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	w, err := h.Service.GetSchedule(c.Request.Context(), t, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, w)
}

func (h *ScheduleHandler) UpdateScheduleHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	var req schedule.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.Service.UpdateSchedule(c.Request.Context(), t, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, w)
}

func (h *ScheduleHandler) DeleteScheduleHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteSchedule(c.Request.Context(), t, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ScheduleHandler) GetActiveScheduleHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	w, err := h.Service.GetActiveSchedule(c.Request.Context(), t, c.Param("professionalId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, w)
}

func (h *ScheduleHandler) WorkingDaysHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	days, err := h.Service.WorkingDays(c.Request.Context(), t, c.Param("professionalId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, gin.H{"professionalId": c.Param("professionalId"), "workingDays": days})
}

// AvailableHoursHandler returns the working blocks of ?weekday=.
func (h *ScheduleHandler) AvailableHoursHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	blocks, err := h.Service.AvailableHours(c.Request.Context(), t, c.Param("professionalId"), c.Query("weekday"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, gin.H{"weekday": c.Query("weekday"), "blocks": blocks})
}
