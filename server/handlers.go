package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/tagscope/fetcher"
	"github.com/seo-optimizer/tagscope/logging"
	"github.com/seo-optimizer/tagscope/middleware"
	"github.com/seo-optimizer/tagscope/service"
	"github.com/seo-optimizer/tagscope/stats"
	"github.com/seo-optimizer/tagscope/storage"
)

// maxRecentLimit caps the limit query parameter of /api/recent-analyses.
const maxRecentLimit = 100

type handlers struct {
	svc      *service.Service
	requests *logging.Statistics
	monthly  *stats.Storage
}

type analyzeRequest struct {
	URL string `json:"url" binding:"required,url"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (h *handlers) analyze(c *gin.Context) {
	log.Printf("Analyze request received from: %s", c.ClientIP())

	var request analyzeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid URL provided",
		})
		return
	}
	c.Set(middleware.AnalyzedURLKey, request.URL)

	result, err := h.svc.Analyze(c.Request.Context(), request.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *handlers) recentAnalyses(c *gin.Context) {
	limit := storage.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be a positive integer",
			})
			return
		}
		limit = min(n, maxRecentLimit)
	}

	records, err := h.svc.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *handlers) analysisByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "id must be a positive integer",
		})
		return
	}

	rec, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handlers) analysisByURL(c *gin.Context) {
	rec, err := h.svc.GetByURL(c.Request.Context(), c.Query("url"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handlers) statistics(c *gin.Context) {
	summary := gin.H{
		"cacheEntries": h.svc.CacheEntries(),
	}
	if h.requests != nil {
		for k, v := range h.requests.GetStatistics() {
			summary[k] = v
		}
	}
	if h.monthly != nil {
		summary["currentMonth"] = h.monthly.GetCurrentStats()
	}
	c.JSON(http.StatusOK, summary)
}

// respondError maps service errors to a status code and a user-facing message.
func respondError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "An unexpected error occurred"

	var statusErr *fetcher.StatusError
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		status, message = http.StatusBadRequest, "Invalid URL provided"
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, "Analysis not found"
	case errors.Is(err, service.ErrUpstreamStatus) && errors.As(err, &statusErr):
		status, message = http.StatusBadRequest, "Failed to fetch the URL: "+statusErr.Status
	case errors.Is(err, fetcher.ErrBodyTooLarge):
		status, message = http.StatusBadGateway, "The page is too large to analyze"
	case errors.Is(err, service.ErrFetch):
		status, message = http.StatusBadGateway, "Failed to reach the URL. Please check it and try again."
	case errors.Is(err, service.ErrParse):
		status, message = http.StatusUnprocessableEntity, "The page could not be parsed as HTML"
	case errors.Is(err, service.ErrStorage):
		status, message = http.StatusInternalServerError, "Failed to store the analysis. Please try again later."
	}

	if status >= http.StatusInternalServerError {
		c.Error(err)
	} else {
		log.Printf("Request %s failed: %v", c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"error": message,
	})
}
