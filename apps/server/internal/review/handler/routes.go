package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tilsley/assay/apps/server/internal/review"
)

// Handler translates HTTP requests into calls on the review.Service.
type Handler struct {
	svc *review.Service
	log *slog.Logger
}

// RegisterRoutes mounts the review API onto the given Gin engine.
func RegisterRoutes(r *gin.Engine, svc *review.Service, log *slog.Logger) {
	h := &Handler{svc: svc, log: log}

	r.GET("/health", h.Health)
	r.POST("/review", h.Review)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
