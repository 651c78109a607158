package checkout

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/guuukimama/shop-manager/internal/catalog"
	"github.com/guuukimama/shop-manager/internal/sales"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r gin.IRouter) {
	s := r.Group("/checkout/sessions")
	{
		s.POST("", h.Open)
		s.GET("/:id", h.Get)
		s.DELETE("/:id", h.Close)

		s.POST("/:id/lines", h.AddLine)
		s.DELETE("/:id/lines/:index", h.RemoveLine)

		s.POST("/:id/service-type/toggle", h.ToggleServiceType)
		s.PUT("/:id/service-type", h.SetServiceType)

		s.POST("/:id/keypad/digits", h.AppendDigit)
		s.DELETE("/:id/keypad", h.ClearInput)

		s.POST("/:id/reset", h.Reset)
		s.POST("/:id/commit", h.Commit)
	}
}

func (h *Handler) Open(c *gin.Context) {
	v, err := h.service.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) Get(c *gin.Context) {
	v, err := h.service.Get(c.Param("id"))
	respond(c, v, err)
}

func (h *Handler) Close(c *gin.Context) {
	if err := h.service.Close(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /checkout/sessions/:id/lines {item_id}
func (h *Handler) AddLine(c *gin.Context) {
	var req struct {
		ItemID string `json:"item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id is required"})
		return
	}
	v, err := h.service.AddItem(c.Request.Context(), c.Param("id"), req.ItemID)
	respond(c, v, err)
}

func (h *Handler) RemoveLine(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be a number"})
		return
	}
	v, err := h.service.RemoveLine(c.Param("id"), index)
	respond(c, v, err)
}

func (h *Handler) ToggleServiceType(c *gin.Context) {
	v, err := h.service.ToggleServiceType(c.Param("id"))
	respond(c, v, err)
}

// PUT /checkout/sessions/:id/service-type {type}
func (h *Handler) SetServiceType(c *gin.Context) {
	var req struct {
		Type sales.ServiceType `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type is required"})
		return
	}
	v, err := h.service.SetServiceType(c.Param("id"), req.Type)
	respond(c, v, err)
}

// POST /checkout/sessions/:id/keypad/digits {digit}
func (h *Handler) AppendDigit(c *gin.Context) {
	var req struct {
		Digit string `json:"digit" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "digit is required"})
		return
	}
	v, err := h.service.AppendDigit(c.Param("id"), req.Digit)
	respond(c, v, err)
}

func (h *Handler) ClearInput(c *gin.Context) {
	v, err := h.service.ClearInput(c.Param("id"))
	respond(c, v, err)
}

func (h *Handler) Reset(c *gin.Context) {
	v, err := h.service.Reset(c.Param("id"))
	respond(c, v, err)
}

func (h *Handler) Commit(c *gin.Context) {
	rec, view, err := h.service.Commit(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"sale":    rec,
		"session": view,
	})
}

func respond(c *gin.Context, v View, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInsufficientPayment),
		errors.Is(err, ErrCartFull):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidIndex), errors.Is(err, ErrInvalidServiceType):
		status = http.StatusBadRequest
	case errors.Is(err, ErrTooManySessions):
		status = http.StatusTooManyRequests
	case errors.Is(err, ErrSinkTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, ErrSinkUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
