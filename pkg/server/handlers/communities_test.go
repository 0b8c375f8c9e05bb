package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/soundprediction/medgraph/pkg/types"
)

type fakeCommunitySource struct {
	result    *types.DetectionResult
	summaries []*types.CommunitySummary
	stats     *types.CommunityStats
	err       error
}

func (f *fakeCommunitySource) DetectCommunities(_ context.Context) (*types.DetectionResult, error) {
	return f.result, f.err
}

func (f *fakeCommunitySource) Communities(_ context.Context) ([]*types.CommunitySummary, error) {
	return f.summaries, f.err
}

func (f *fakeCommunitySource) Stats(_ context.Context) (*types.CommunityStats, error) {
	return f.stats, f.err
}

func communityRouter(f *fakeCommunitySource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewCommunityHandler(f, f)
	r.POST("/api/v1/detect", h.Detect)
	r.GET("/api/v1/communities", h.List)
	r.GET("/api/v1/communities/stats", h.Stats)
	return r
}

func TestDetectHandler(t *testing.T) {
	f := &fakeCommunitySource{result: &types.DetectionResult{
		Partition:            &types.Partition{K: 15, Quality: 0.42},
		SkippedRelationships: 2,
	}}
	r := communityRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/detect", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"communities":15`)
	assert.Contains(t, w.Body.String(), `"skipped_relationships":2`)
}

func TestDetectHandlerEmptyGraph(t *testing.T) {
	f := &fakeCommunitySource{err: types.ErrNoEntities}
	r := communityRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/detect", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListHandler(t *testing.T) {
	f := &fakeCommunitySource{summaries: []*types.CommunitySummary{
		{ID: 0, Specialty: "Cardiology", Theme: "Cardiovascular conditions and treatments"},
	}}
	r := communityRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/communities", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cardiology")
}

func TestStatsHandlerMissingArtifacts(t *testing.T) {
	f := &fakeCommunitySource{err: types.ErrMissingArtifact}
	r := communityRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/communities/stats", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}
