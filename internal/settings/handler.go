package settings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r gin.IRouter) {
	s := r.Group("/settings")
	{
		s.GET("", h.Get)
		s.PUT("", h.Save)
		s.POST("/reset", h.Reset)
	}
}

func (h *Handler) Get(c *gin.Context) {
	out, err := h.service.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Save(c *gin.Context) {
	var req Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	out, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// POST /settings/reset wipes menu, categories, settings and sales.
func (h *Handler) Reset(c *gin.Context) {
	if err := h.service.ResetAll(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all data reset"})
}
