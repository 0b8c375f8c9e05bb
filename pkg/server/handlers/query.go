package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	medgraph "github.com/soundprediction/medgraph"
	"github.com/soundprediction/medgraph/pkg/types"
)

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	Question string `json:"question" binding:"required"`
}

// QueryResponse is the body returned for an answered question.
type QueryResponse struct {
	Answer  string `json:"answer"`
	Class   string `json:"query_type"`
	Success bool   `json:"llm_generated"`
}

// QueryHandler handles question answering requests
type QueryHandler struct {
	medgraph medgraph.QuestionAnswerer
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(g medgraph.QuestionAnswerer) *QueryHandler {
	return &QueryHandler{medgraph: g}
}

// Answer handles POST /api/v1/query
func (h *QueryHandler) Answer(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.medgraph.Answer(c.Request.Context(), req.Question)
	if err != nil {
		if errors.Is(err, types.ErrMissingArtifact) {
			// Detection has not run yet; the query phase cannot start.
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, QueryResponse{
		Answer:  answer.Text,
		Class:   string(answer.Class),
		Success: answer.Success,
	})
}
