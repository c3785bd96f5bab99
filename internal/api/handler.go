package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crisislab/crisis-monitor/internal/service"
)

type Handler struct {
	svc *service.AggregationService
}

func NewHandler(svc *service.AggregationService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/initial-load", h.initialLoad)
	r.POST("/api/search", h.search)
	r.POST("/api/agent/query", h.agentQuery)
	r.GET("/api/disasters/:id/export", h.exportDisaster)
	r.GET("/api/disasters.geojson", h.geoJSON)
	r.GET("/api/stats", h.stats)
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (h *Handler) initialLoad(c *gin.Context) {
	days := 0
	if d := c.Query("days"); d != "" {
		if n, err := strconv.Atoi(d); err == nil && n > 0 {
			days = n
		}
	}

	disasters := h.svc.GetInitial(days)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"disasters": disasters,
		"total":     len(disasters),
		"loaded_at": time.Now().UTC().Format(time.RFC3339),
	})
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

func (h *Handler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "query is required",
		})
		return
	}

	results := h.svc.Search(req.Query, req.MaxResults)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"disasters":   results,
		"total":       len(results),
		"query":       req.Query,
		"searched_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// agentQuery serves conversational clients. It is the same scoring path as
// search with a smaller default result set.
func (h *Handler) agentQuery(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "query is required",
		})
		return
	}

	max := req.MaxResults
	if max <= 0 {
		max = 10
	}
	results := h.svc.Search(req.Query, max)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"disasters": results,
		"total":     len(results),
		"query":     req.Query,
	})
}

func (h *Handler) exportDisaster(c *gin.Context) {
	id := c.Param("id")

	rec, err := h.svc.Lookup(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "failed to fetch record",
		})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "record not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"record":  h.svc.ExportRecord(*rec),
	})
}

func (h *Handler) geoJSON(c *gin.Context) {
	days := 0
	if d := c.Query("days"); d != "" {
		if n, err := strconv.Atoi(d); err == nil && n > 0 {
			days = n
		}
	}

	fc := toGeoJSON(h.svc.GetInitial(days))
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   h.svc.Stats(),
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
