package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/services"
	"github.com/clipworks/shortform-backend/internal/types"
)

type ShortHandler struct {
	log     *logger.Logger
	svc     services.ShortService
	fileSvc services.FileService
}

func NewShortHandler(log *logger.Logger, svc services.ShortService, fileSvc services.FileService) *ShortHandler {
	return &ShortHandler{log: log, svc: svc, fileSvc: fileSvc}
}

// POST /api/shorts
func (h *ShortHandler) Create(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
		Idea  string `json:"idea"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	short, err := h.svc.CreateShort(c.Request.Context(), req.Title, req.Idea)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"short": short})
}

// GET /api/shorts
func (h *ShortHandler) List(c *gin.Context) {
	if status := c.Query("status"); status != "" {
		shorts, err := h.svc.ListByStatus(c.Request.Context(), types.ShortStatus(status))
		if err != nil {
			RespondError(c, err)
			return
		}
		RespondOK(c, gin.H{"shorts": shorts})
		return
	}
	shorts, err := h.svc.ListBoard(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"shorts": shorts})
}

// GET /api/shorts/:id
func (h *ShortHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid short id"})
		return
	}
	detail, err := h.svc.GetShort(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, detail)
}

// DELETE /api/shorts/:id
func (h *ShortHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid short id"})
		return
	}
	if err := h.svc.DeleteShort(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// POST /api/shorts/:id/assignments
func (h *ShortHandler) AssignRole(c *gin.Context) {
	shortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid short id"})
		return
	}
	var req struct {
		UserID  string     `json:"user_id"`
		Role    string     `json:"role"`
		DueDate *time.Time `json:"due_date"`
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
	assignment, err := h.svc.AssignRole(c.Request.Context(), shortID, userID, types.Role(req.Role), req.DueDate)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"assignment": assignment})
}

// PUT /api/users/:id/rates
func (h *ShortHandler) SetRate(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var req struct {
		Role        string  `json:"role"`
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	rate, err := h.svc.SetRate(c.Request.Context(), userID, types.Role(req.Role), req.Amount, req.Description)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"rate": rate})
}

// GET /api/users/:id/rates
func (h *ShortHandler) ListRates(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	rates, err := h.svc.RatesForUser(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"rates": rates})
}

// POST /api/shorts/:id/files
func (h *ShortHandler) UploadFile(c *gin.Context) {
	shortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid short id"})
		return
	}
	fileType := types.FileType(c.PostForm("file_type"))
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a file is required"})
		return
	}
	opened, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}
	defer opened.Close()

	file, err := h.fileSvc.UploadShortFile(
		c.Request.Context(),
		shortID,
		fileType,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		opened,
	)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"file": file})
}

// GET /api/shorts/:id/files
func (h *ShortHandler) ListFiles(c *gin.Context) {
	shortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid short id"})
		return
	}
	files, err := h.fileSvc.ListShortFiles(c.Request.Context(), shortID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"files": files})
}

// GET /api/shorts/:id/files/:type/url
func (h *ShortHandler) DownloadURL(c *gin.Context) {
	shortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid short id"})
		return
	}
	url, err := h.fileSvc.DownloadURL(c.Request.Context(), shortID, types.FileType(c.Param("type")))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}
