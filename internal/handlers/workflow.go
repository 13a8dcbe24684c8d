package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clipworks/shortform-backend/internal/services"
	"github.com/clipworks/shortform-backend/internal/types"
)

type WorkflowHandler struct {
	svc services.WorkflowService
}

func NewWorkflowHandler(svc services.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{svc: svc}
}

// POST /api/shorts/:id/transition
func (h *WorkflowHandler) Transition(c *gin.Context) {
	shortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid short id"})
		return
	}
	var req struct {
		Target string `json:"target"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	short, err := h.svc.RequestTransition(c.Request.Context(), shortID, types.ShortStatus(req.Target))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"short": short})
}

// POST /api/shorts/:id/complete
func (h *WorkflowHandler) MarkRoleComplete(c *gin.Context) {
	shortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid short id"})
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	short, err := h.svc.MarkRoleComplete(c.Request.Context(), shortID, types.Role(req.Role))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"short": short})
}
