package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tilsley/assay/apps/server/internal/repofetch"
	"github.com/tilsley/assay/apps/server/internal/review"
	"github.com/tilsley/assay/pkg/api"
)

// Review handles POST /review: it fetches the repository and returns the model's verdict.
func (h *Handler) Review(c *gin.Context) {
	var req api.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	log := requestLogger(c, h.log)
	res, err := h.svc.Review(c.Request.Context(), req)
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			log.Error("review failed", "repo", req.GithubRepoURL, "status", status, "error", err)
		} else {
			log.Info("review rejected", "repo", req.GithubRepoURL, "status", status, "error", err)
		}
		c.JSON(status, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// StatusFor maps a review failure to the HTTP status returned to the caller.
func StatusFor(err error) int {
	var (
		invalidURL   repofetch.InvalidRepoURLError
		invalidLevel review.InvalidCandidateLevelError
		notFound     repofetch.NotFoundError
		forbidden    repofetch.ForbiddenError
		rateLimited  repofetch.RateLimitedError
		timeout      repofetch.TimeoutError
		limit        repofetch.LimitExceededError
	)
	switch {
	case errors.As(err, &invalidURL), errors.As(err, &invalidLevel):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &rateLimited):
		return http.StatusTooManyRequests
	case errors.As(err, &timeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &limit):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
