package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tendermatch/backend/internal/domain"
	"github.com/tendermatch/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	orchestrator *usecase.MatchOrchestrator
}

// NewHandler creates a new HTTP handler
func NewHandler(orchestrator *usecase.MatchOrchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tendermatch-backend",
		"version": "2.0.0",
	})
}

// MatchTender handles tender matching requests. Query parameters
// use_semantic and semantic_threshold override the configured semantic
// settings for this request only.
func (h *Handler) MatchTender(c *gin.Context) {
	var request domain.TenderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	useSemantic, semanticThreshold, err := parseSemanticOverrides(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orchestrator := h.orchestrator.WithOverrides(useSemantic, semanticThreshold)
	result, err := orchestrator.ProcessTender(c.Request.Context(), request)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseSemanticOverrides(c *gin.Context) (*bool, *float64, error) {
	var useSemantic *bool
	var semanticThreshold *float64

	if raw, ok := c.GetQuery("use_semantic"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, nil, errors.New("use_semantic must be a boolean")
		}
		useSemantic = &v
	}
	if raw, ok := c.GetQuery("semantic_threshold"); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			return nil, nil, errors.New("semantic_threshold must be a number in [0,1]")
		}
		semanticThreshold = &v
	}
	return useSemantic, semanticThreshold, nil
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCatalogUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog temporarily unavailable"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled request error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
