package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipworks/shortform-backend/internal/requestdata"
	"github.com/clipworks/shortform-backend/internal/services"
)

type UserHandler struct {
	svc services.UserService
}

func NewUserHandler(svc services.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// GET /api/user
func (h *UserHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	user, err := h.svc.GetByID(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user, "roles": rd.Roles})
}
