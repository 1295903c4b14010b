package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"skillshare/internal/service"
)

// ProfileHandler expone las acciones de perfil y las lecturas del dashboard.
type ProfileHandler struct {
	logger      *zap.Logger
	profileServ *service.ProfileService
}

func NewProfileHandler(logger *zap.Logger, profileServ *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		logger:      logger,
		profileServ: profileServ,
	}
}

// Me maneja GET /users/me.
func (h *ProfileHandler) Me(c *gin.Context) {
	user, err := h.profileServ.CurrentUser(c.Request.Context())
	if err != nil {
		h.writeError(c, "get current user failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateBio maneja PUT /profile/bio.
func (h *ProfileHandler) UpdateBio(c *gin.Context) {
	var req struct {
		Bio string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid bio request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	user, err := h.profileServ.UpdateBio(c.Request.Context(), req.Bio)
	if err != nil {
		h.writeError(c, "update bio failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SetStatus maneja PUT /profile/status.
func (h *ProfileHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status *bool `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid status request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.profileServ.SetStatus(c.Request.Context(), *req.Status); err != nil {
		h.writeError(c, "set status failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": *req.Status})
}

// AddSkill maneja POST /skills.
func (h *ProfileHandler) AddSkill(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid add skill request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	link, err := h.profileServ.AddSkill(c.Request.Context(), req.Name)
	if err != nil {
		h.writeError(c, "add skill failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user_skill": link})
}

// ListSkills maneja GET /skills/me.
func (h *ProfileHandler) ListSkills(c *gin.Context) {
	names, err := h.profileServ.ListSkills(c.Request.Context())
	if err != nil {
		h.writeError(c, "list skills failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": names})
}

// FeaturedSkills maneja GET /skills/featured?q=&limit=.
func (h *ProfileHandler) FeaturedSkills(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	skills, err := h.profileServ.FeaturedSkills(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		h.writeError(c, "featured skills failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": skills})
}

func (h *ProfileHandler) writeError(c *gin.Context, logMsg string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": verr.Fields})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
}
