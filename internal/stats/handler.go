package stats

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/guuukimama/shop-manager/internal/sales"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WorkbookWriter renders sales as an xlsx document.
type WorkbookWriter func(w io.Writer, list []sales.SaleRecord, loc *time.Location) error

type Handler struct {
	service *Service
	export  WorkbookWriter
	live    gin.HandlerFunc
}

// NewHandler wires the dashboard routes. export and live may be nil, in
// which case their routes are not registered.
func NewHandler(service *Service, export WorkbookWriter, live gin.HandlerFunc) *Handler {
	return &Handler{service: service, export: export, live: live}
}

func (h *Handler) Register(r gin.IRouter) {
	st := r.Group("/stats")
	{
		st.GET("/today", h.Today)
		st.GET("/summary", h.Summary)
		st.GET("/top-items", h.TopItems)
		st.GET("/hourly", h.Hourly)
		st.GET("/daily", h.Daily)
		st.GET("/monthly", h.Monthly)
		st.GET("/recent", h.Recent)

		if h.export != nil {
			st.GET("/export", h.Export)
		}
		if h.live != nil {
			st.GET("/live", h.live)
		}
	}
}

func (h *Handler) Today(c *gin.Context) {
	out, err := h.service.Today(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sales"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Summary(c *gin.Context) {
	out, err := h.service.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sales"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /stats/top-items?from=YYYY-MM-DD&to=YYYY-MM-DD&limit=
func (h *Handler) TopItems(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", 10, 1, 500)
	if !ok {
		return
	}

	out, err := h.service.TopItems(c.Request.Context(), from, to, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sales"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /stats/hourly?date=YYYY-MM-DD
func (h *Handler) Hourly(c *gin.Context) {
	day := h.service.now()
	if raw := c.Query("date"); raw != "" {
		d, err := time.ParseInLocation(dayLayout, raw, h.service.Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = d
	}

	hours, err := h.service.Hourly(c.Request.Context(), day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sales"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":  day.In(h.service.Location()).Format(dayLayout),
		"hours": hours,
	})
}

func (h *Handler) Daily(c *gin.Context) {
	days, ok := intQuery(c, "days", 7, 1, 366)
	if !ok {
		return
	}
	out, err := h.service.Daily(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sales"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Monthly(c *gin.Context) {
	months, ok := intQuery(c, "months", 12, 1, 120)
	if !ok {
		return
	}
	out, err := h.service.Monthly(c.Request.Context(), months)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sales"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Recent(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 20, 1, 500)
	if !ok {
		return
	}
	out, err := h.service.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sales"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /stats/export?from&to downloads the ledger as xlsx.
func (h *Handler) Export(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}

	list, err := h.service.Sales(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sales"})
		return
	}

	var buf bytes.Buffer
	if err := h.export(&buf, list, h.service.Location()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write Excel file"})
		return
	}

	name := fmt.Sprintf("sales-%s.xlsx", h.service.now().In(h.service.Location()).Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// dateRange reads from/to as local dates; to is inclusive.
func (h *Handler) dateRange(c *gin.Context) (from, to time.Time, ok bool) {
	loc := h.service.Location()

	if raw := c.Query("from"); raw != "" {
		d, err := time.ParseInLocation(dayLayout, raw, loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return from, to, false
		}
		from = d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := time.ParseInLocation(dayLayout, raw, loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return from, to, false
		}
		to = d.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must not be after to"})
		return from, to, false
	}
	return from, to, true
}

func intQuery(c *gin.Context, key string, def, lo, hi int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s must be between %d and %d", key, lo, hi)})
		return 0, false
	}
	return n, true
}
