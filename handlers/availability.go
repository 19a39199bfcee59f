package handlers

import (
	"strconv"
	"strings"
	"time"

	"reservo/services/availability"
	"reservo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AvailabilityHandler struct {
	Engine *availability.Engine
}

func NewAvailabilityHandler(engine *availability.Engine) *AvailabilityHandler {
	return &AvailabilityHandler{Engine: engine}
}

// GetAvailabilityHandler returns one professional's slots for ?date=.
func (h *AvailabilityHandler) GetAvailabilityHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	pa, err := h.Engine.GetAvailability(c.Request.Context(), t,
		c.Param("professionalId"), c.Query("date"), c.Query("serviceId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, pa)
}

// GetAvailabilityForManyHandler takes a comma separated ?professionalIds=.
func (h *AvailabilityHandler) GetAvailabilityForManyHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	var ids []string
	for _, id := range strings.Split(c.Query("professionalIds"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		utils.RespondError(c, utils.NewValidationError("professionalIds", "at least one professional id is required"))
		return
	}

	out, err := h.Engine.GetAvailabilityForMany(c.Request.Context(), t, ids, c.Query("date"), c.Query("serviceId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *AvailabilityHandler) GetAvailabilityRangeHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	out, err := h.Engine.GetAvailabilityRange(c.Request.Context(), t, c.Param("professionalId"),
		c.Query("startDate"), c.Query("endDate"), c.Query("serviceId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *AvailabilityHandler) GetNextAvailableSlotsHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondError(c, utils.NewValidationError("limit", "limit must be an integer"))
			return
		}
		limit = n
	}

	slots, err := h.Engine.GetNextAvailableSlots(c.Request.Context(), t, c.Param("professionalId"), c.Query("serviceId"), limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, gin.H{"professionalId": c.Param("professionalId"), "slots": slots})
}

// CheckAvailabilityHandler reports whether ?start=&end= (RFC 3339) is free.
func (h *AvailabilityHandler) CheckAvailabilityHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("start", "start must be an RFC 3339 timestamp"))
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("end", "end must be an RFC 3339 timestamp"))
		return
	}

	free, err := h.Engine.CheckAvailability(c.Request.Context(), t, c.Param("professionalId"), start, end)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Debug("Availability checked", zap.String("professionalId", c.Param("professionalId")), zap.Bool("available", free))
	respondOK(c, gin.H{"available": free})
}
