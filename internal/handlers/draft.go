package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clipworks/shortform-backend/internal/services"
	"github.com/clipworks/shortform-backend/internal/types"
)

type DraftHandler struct {
	svc services.ScriptDraftService
}

func NewDraftHandler(svc services.ScriptDraftService) *DraftHandler {
	return &DraftHandler{svc: svc}
}

// GET /api/drafts/checklist
func (h *DraftHandler) Checklist(c *gin.Context) {
	RespondOK(c, gin.H{"checklist": h.svc.Checklist()})
}

// POST /api/drafts
func (h *DraftHandler) Create(c *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Idea        string `json:"idea"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	short, err := h.svc.CreateDraftShort(c.Request.Context(), req.Title, req.Description, req.Idea)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"short": short})
}

// GET /api/drafts
func (h *DraftHandler) List(c *gin.Context) {
	drafts, err := h.svc.ListDrafts(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"drafts": drafts})
}

// PUT /api/drafts/:id
func (h *DraftHandler) Update(c *gin.Context) {
	shortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid short id"})
		return
	}
	var req struct {
		Stage string  `json:"stage"`
		Text  *string `json:"text"`
		Notes *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	short, err := h.svc.UpdateDraft(c.Request.Context(), shortID, types.DraftStage(req.Stage), req.Text, req.Notes)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"short": short})
}

// POST /api/drafts/:id/advance
func (h *DraftHandler) Advance(c *gin.Context) {
	shortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid short id"})
		return
	}
	var req struct {
		ValidatedRuleIDs []string `json:"validated_rule_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	short, err := h.svc.AdvanceStage(c.Request.Context(), shortID, req.ValidatedRuleIDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"short": short})
}
