package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/medgraph/pkg/types"
)

type fakeAnswerer struct {
	answer *types.Answer
	err    error
}

func (f *fakeAnswerer) Answer(_ context.Context, _ string) (*types.Answer, error) {
	return f.answer, f.err
}

func queryRouter(f *fakeAnswerer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/query", NewQueryHandler(f).Answer)
	return r
}

func TestQueryHandlerAnswer(t *testing.T) {
	f := &fakeAnswerer{answer: &types.Answer{
		Text:    "A ventral hernia is an abdominal wall defect.",
		Class:   types.QueryLocal,
		Success: true,
	}}
	r := queryRouter(f)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query",
		strings.NewReader(`{"question": "What is ventral hernia?"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"query_type":"local"`)
	assert.Contains(t, w.Body.String(), `"llm_generated":true`)
}

func TestQueryHandlerRejectsEmptyBody(t *testing.T) {
	r := queryRouter(&fakeAnswerer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryHandlerMissingArtifacts(t *testing.T) {
	f := &fakeAnswerer{err: types.ErrMissingArtifact}
	r := queryRouter(f)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query",
		strings.NewReader(`{"question": "anything"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
