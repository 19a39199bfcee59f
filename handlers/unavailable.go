package handlers

import (
	"net/http"

	"reservo/services/unavailability"
	"reservo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UnavailableHandler struct {
	Service *unavailability.Service
}

func NewUnavailableHandler(svc *unavailability.Service) *UnavailableHandler {
	return &UnavailableHandler{Service: svc}
}

func (h *UnavailableHandler) CreateUnavailableBlockHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	var req unavailability.CreateRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Service.ValidateAndCreateUnavailableBlock(c.Request.Context(), t, req)
	if err != nil {
		getLogger(c).Info("Unavailable block rejected", zap.String("professionalId", req.ProfessionalID), zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListUnavailableBlocksHandler reads professionalId, from and to.
func (h *UnavailableHandler) ListUnavailableBlocksHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	out, err := h.Service.ListUnavailableBlocks(c.Request.Context(), t, c.Query("professionalId"), c.Query("from"), c.Query("to"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *UnavailableHandler) ExpandUnavailableBlocksHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	out, err := h.Service.ExpandUnavailableBlocks(c.Request.Context(), t, c.Query("professionalId"), c.Query("from"), c.Query("to"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *UnavailableHandler) GetUnavailableBlockHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	b, err := h.Service.GetUnavailableBlock(c.Request.Context(), t, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, b)
}

func (h *UnavailableHandler) UpdateUnavailableBlockHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	var req unavailability.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Service.UpdateUnavailableBlock(c.Request.Context(), t, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, b)
}

func (h *UnavailableHandler) DeleteUnavailableBlockHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteUnavailableBlock(c.Request.Context(), t, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
