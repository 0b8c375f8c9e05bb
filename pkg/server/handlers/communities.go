package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	medgraph "github.com/soundprediction/medgraph"
	"github.com/soundprediction/medgraph/pkg/types"
)

// CommunityHandler handles community detection and inspection requests
type CommunityHandler struct {
	detector medgraph.CommunityDetector
	reader   medgraph.CommunityReader
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(detector medgraph.CommunityDetector, reader medgraph.CommunityReader) *CommunityHandler {
	return &CommunityHandler{detector: detector, reader: reader}
}

// Detect handles POST /api/v1/detect
func (h *CommunityHandler) Detect(c *gin.Context) {
	result, err := h.detector.DetectCommunities(c.Request.Context())
	if err != nil {
		if errors.Is(err, types.ErrNoEntities) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"communities":           result.Partition.K,
		"silhouette_score":      result.Partition.Quality,
		"skipped_relationships": result.SkippedRelationships,
	})
}

// List handles GET /api/v1/communities
func (h *CommunityHandler) List(c *gin.Context) {
	summaries, err := h.reader.Communities(c.Request.Context())
	if err != nil {
		if errors.Is(err, types.ErrMissingArtifact) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"communities": summaries})
}

// Stats handles GET /api/v1/communities/stats
func (h *CommunityHandler) Stats(c *gin.Context) {
	stats, err := h.reader.Stats(c.Request.Context())
	if err != nil {
		if errors.Is(err, types.ErrMissingArtifact) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
