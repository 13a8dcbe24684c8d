package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clipworks/shortform-backend/internal/requestdata"
	"github.com/clipworks/shortform-backend/internal/services"
	"github.com/clipworks/shortform-backend/internal/types"
)

type ReviewHandler struct {
	svc services.ReviewService
}

func NewReviewHandler(svc services.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// GET /api/review/next
func (h *ReviewHandler) Next(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	item, err := h.svc.PickRandomUnrated(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	// The reviewer gets the transcript and engagement counts, never the
	// answer.
	RespondOK(c, gin.H{"item": gin.H{
		"id":         item.ID,
		"title":      item.Title,
		"transcript": item.Transcript,
		"likes":      item.Likes,
		"comments":   item.Comments,
	}})
}

// POST /api/review/items/:id
func (h *ReviewHandler) Submit(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}
	var req struct {
		Guess float64 `json:"guess"`
		Notes string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := h.svc.SubmitReview(c.Request.Context(), itemID, rd.UserID, req.Guess, req.Notes)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"result": result})
}

// GET /api/review/stats
func (h *ReviewHandler) Stats(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	stats, err := h.svc.StatsFor(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"stats": stats})
}

// POST /api/review/corpus
func (h *ReviewHandler) SeedCorpus(c *gin.Context) {
	var req struct {
		Items []struct {
			Title      string `json:"title"`
			ExternalID string `json:"external_id"`
			Views      int64  `json:"views"`
			Likes      int64  `json:"likes"`
			Comments   int64  `json:"comments"`
			Transcript string `json:"transcript"`
		} `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	items := make([]*types.AnalyzedShort, len(req.Items))
	for i, in := range req.Items {
		items[i] = &types.AnalyzedShort{
			ID:         uuid.New(),
			Title:      in.Title,
			ExternalID: in.ExternalID,
			Views:      in.Views,
			Likes:      in.Likes,
			Comments:   in.Comments,
			Transcript: in.Transcript,
		}
	}
	created, err := h.svc.SeedCorpus(c.Request.Context(), items)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"items": created})
}
