package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipworks/shortform-backend/internal/services"
	"github.com/clipworks/shortform-backend/internal/types"
)

type AuthHandler struct {
	svc services.AuthService
}

func NewAuthHandler(svc services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user := &types.User{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := h.svc.RegisterUser(c.Request.Context(), user); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	accessToken, refreshToken, err := h.svc.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"access_token": accessToken, "refresh_token": refreshToken})
}

// POST /api/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	accessToken, err := h.svc.RefreshUser(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"access_token": accessToken})
}

// POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.LogoutUser(c.Request.Context()); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"logged_out": true})
}
