package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clipworks/shortform-backend/internal/requestdata"
	"github.com/clipworks/shortform-backend/internal/services"
	"github.com/clipworks/shortform-backend/internal/types"
)

type PaymentHandler struct {
	svc services.PaymentService
}

func NewPaymentHandler(svc services.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// GET /api/payments
func (h *PaymentHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if status := c.Query("status"); status != "" && rd.IsAdmin {
		payments, err := h.svc.ListByStatus(c.Request.Context(), types.PaymentStatus(status))
		if err != nil {
			RespondError(c, err)
			return
		}
		RespondOK(c, gin.H{"payments": payments})
		return
	}
	payments, err := h.svc.ListForUser(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"payments": payments})
}

// POST /api/payments/:id/paid
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || !rd.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	var req struct {
		TransactionRef string `json:"transaction_ref"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	payment, err := h.svc.MarkPaid(c.Request.Context(), paymentID, req.TransactionRef)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"payment": payment})
}

// POST /api/payments/incentive
func (h *PaymentHandler) CreateIncentive(c *gin.Context) {
	var req struct {
		UserID  string  `json:"user_id"`
		ShortID *string `json:"short_id"`
		Amount  float64 `json:"amount"`
		Note    string  `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var shortID *uuid.UUID
	if req.ShortID != nil {
		parsed, err := uuid.Parse(*req.ShortID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid short id"})
			return
		}
		shortID = &parsed
	}
	payment, err := h.svc.CreateIncentive(c.Request.Context(), userID, shortID, req.Amount, req.Note)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"payment": payment})
}
