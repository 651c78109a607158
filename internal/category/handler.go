package category

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
	cats := r.Group("/categories")
	{
		cats.GET("", h.List)
		cats.POST("", h.Add)
		cats.PUT("", h.Replace)
		cats.DELETE("/:name", h.Remove)
		cats.PUT("/:name/position", h.Move)
	}
}

type listResponse struct {
	Categories []string `json:"categories"`
}

func (h *Handler) List(c *gin.Context) {
	cats, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Categories: cats})
}

// POST /categories {name}
func (h *Handler) Add(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	cats, err := h.service.Add(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listResponse{Categories: cats})
}

// PUT /categories {categories: [...]}
func (h *Handler) Replace(c *gin.Context) {
	var req listResponse
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cats, err := h.service.Replace(c.Request.Context(), req.Categories)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Categories: cats})
}

func (h *Handler) Remove(c *gin.Context) {
	cats, err := h.service.Remove(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Categories: cats})
}

// PUT /categories/:name/position {index}
func (h *Handler) Move(c *gin.Context) {
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index is required"})
		return
	}

	cats, err := h.service.Move(c.Request.Context(), c.Param("name"), *req.Index)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Categories: cats})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
