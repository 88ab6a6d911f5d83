package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/crisiswatch/disaster-watch/internal/models"
	"github.com/crisiswatch/disaster-watch/internal/repository"
)

const (
	defaultListLimit = 100
	recentWindow     = 24 * time.Hour
)

// Handler serves full snapshots of the store. Consumers (map, feed) poll at
// a fixed 30-second cadence; the heavier aggregate endpoints are cached for
// a short TTL so indefinite polling stays cheap.
type Handler struct {
	repo      repository.DisasterRepository
	snapshots *gocache.Cache
}

func NewHandler(repo repository.DisasterRepository, cacheTTL time.Duration) *Handler {
	return &Handler{
		repo:      repo,
		snapshots: gocache.New(cacheTTL, 2*cacheTTL),
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/health", h.health)
	r.GET("/api/posts", h.getPosts)
	r.GET("/api/posts/recent", h.getRecentPosts)
	r.GET("/api/posts/urgent", h.getUrgentPosts)
	r.GET("/api/stats", h.getStats)
	r.GET("/api/map-data", h.getMapData)
}

func (h *Handler) health(c *gin.Context) {
	database := "connected"
	status := "healthy"
	code := http.StatusOK

	if err := h.repo.Ping(c.Request.Context()); err != nil {
		database = "unreachable"
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) getPosts(c *gin.Context) {
	limit := defaultListLimit
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			limit = lim
		}
	}

	records, err := h.repo.GetAll(c.Request.Context(), limit)
	if err != nil {
		h.listError(c, err)
		return
	}
	h.listResponse(c, records)
}

func (h *Handler) getRecentPosts(c *gin.Context) {
	records, err := h.repo.GetRecent(c.Request.Context(), recentWindow)
	if err != nil {
		h.listError(c, err)
		return
	}
	h.listResponse(c, records)
}

func (h *Handler) getUrgentPosts(c *gin.Context) {
	minLevel := models.UrgencyCritical
	if ml := c.Query("min_level"); ml != "" {
		if lvl, err := strconv.Atoi(ml); err == nil && lvl >= models.UrgencyLow && lvl <= models.UrgencyCritical {
			minLevel = lvl
		}
	}

	records, err := h.repo.GetUrgent(c.Request.Context(), minLevel)
	if err != nil {
		h.listError(c, err)
		return
	}
	h.listResponse(c, records)
}

func (h *Handler) getStats(c *gin.Context) {
	if cached, ok := h.snapshots.Get("stats"); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	stats, err := h.repo.Stats(c.Request.Context())
	if err != nil {
		slog.Error("failed to compute stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "failed to compute statistics",
			"stats":   gin.H{},
		})
		return
	}

	resp := gin.H{
		"success":   true,
		"stats":     stats,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	h.snapshots.SetDefault("stats", resp)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getMapData(c *gin.Context) {
	if cached, ok := h.snapshots.Get("map-data"); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	records, err := h.repo.GetRecent(c.Request.Context(), recentWindow)
	if err != nil {
		slog.Error("failed to fetch map data", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "failed to fetch map data",
			"points":  []MapPoint{},
			"total":   0,
		})
		return
	}

	points := toMapPoints(records)
	resp := gin.H{
		"success":   true,
		"points":    points,
		"total":     len(points),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	h.snapshots.SetDefault("map-data", resp)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listResponse(c *gin.Context, records []models.DisasterRecord) {
	if records == nil {
		records = []models.DisasterRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"posts":     records,
		"total":     len(records),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) listError(c *gin.Context, err error) {
	slog.Error("failed to fetch posts", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "failed to fetch posts",
		"posts":   []models.DisasterRecord{},
		"total":   0,
	})
}
