package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deokive/BE-sub001/internal/domain/entity"
	handler "github.com/Deokive/BE-sub001/internal/handler/http"
	dto "github.com/Deokive/BE-sub001/internal/handler/http/dto"
	"github.com/Deokive/BE-sub001/internal/handler/http/middleware"
	mocks "github.com/Deokive/BE-sub001/internal/handler/http/mocks"
	"github.com/Deokive/BE-sub001/internal/infrastructure/validator"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.RegisterCustomValidators()
	os.Exit(m.Run())
}

// fakeAuth stands in for the JWT middleware and injects a fixed actor id.
func fakeAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.UserIDKey, userID)
		}
		c.Next()
	}
}

type interactionMocks struct {
	like  *mocks.MockLikeUsecase
	view  *mocks.MockViewUsecase
	stats *mocks.MockStatsUsecase
}

func newInteractionMocks() *interactionMocks {
	return &interactionMocks{
		like:  mocks.NewMockLikeUsecase(),
		view:  mocks.NewMockViewUsecase(),
		stats: mocks.NewMockStatsUsecase(),
	}
}

func setupInteractionRouter(m *interactionMocks, userID string) *gin.Engine {
	h := handler.NewInteractionHandler(m.like, m.view, m.stats)
	r := gin.New()
	g := r.Group("/:domain/:id", fakeAuth(userID))
	g.POST("/like", h.ToggleLikeHandler)
	g.GET("/like", h.GetLikeStateHandler)
	g.GET("/like-count", h.GetLikeCountHandler)
	g.POST("/view", h.RegisterViewHandler)
	g.GET("/stats", h.GetStatsHandler)
	return r
}

func TestToggleLikeHandler(t *testing.T) {
	m := newInteractionMocks()
	r := setupInteractionRouter(m, "user-1")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/post/post-9/like", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.LikeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Liked)
	assert.Equal(t, entity.DomainPost, m.like.LastDomain)
	assert.Equal(t, "post-9", m.like.LastEntityID)
	assert.Equal(t, "user-1", m.like.LastActorID)
}

func TestToggleLikeHandler_Unauthenticated(t *testing.T) {
	r := setupInteractionRouter(newInteractionMocks(), "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/post/post-9/like", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestToggleLikeHandler_UnknownDomain(t *testing.T) {
	m := newInteractionMocks()
	r := setupInteractionRouter(m, "user-1")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/banana/post-9/like", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, m.like.LastEntityID, "the usecase must not run for an unknown domain")
}

func TestToggleLikeHandler_UsecaseFailure(t *testing.T) {
	m := newInteractionMocks()
	m.like.ShouldFailToggleLike = true
	r := setupInteractionRouter(m, "user-1")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/post/post-9/like", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetLikeStateHandler(t *testing.T) {
	m := newInteractionMocks()
	m.like.MockLiked = false
	r := setupInteractionRouter(m, "user-1")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/archive/arch-1/like", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.LikeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Liked)
	assert.Equal(t, entity.DomainArchive, m.like.LastDomain)
}

func TestGetLikeCountHandler(t *testing.T) {
	m := newInteractionMocks()
	m.like.MockCount = 123
	// No auth: the count is public.
	r := setupInteractionRouter(m, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/post/post-9/like-count", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.LikeCountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(123), resp.Count)
}

func TestRegisterViewHandler_AuthenticatedViewer(t *testing.T) {
	m := newInteractionMocks()
	r := setupInteractionRouter(m, "user-7")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/post/post-9/view", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.ViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Counted)
	assert.Equal(t, "user-7", m.view.LastViewer)
}

func TestRegisterViewHandler_AnonymousFallsBackToIP(t *testing.T) {
	m := newInteractionMocks()
	r := setupInteractionRouter(m, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/post/post-9/view", nil)
	req.RemoteAddr = "203.0.113.7:4242"
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "203.0.113.7", m.view.LastViewer)
}

func TestRegisterViewHandler_Deduped(t *testing.T) {
	m := newInteractionMocks()
	m.view.MockCounted = false
	r := setupInteractionRouter(m, "user-1")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/archive/arch-1/view", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.ViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Counted)
}

func TestGetStatsHandler(t *testing.T) {
	m := newInteractionMocks()
	r := setupInteractionRouter(m, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/post/post-9/stats", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp entity.EntityStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(100), resp.ViewCount)
	assert.Equal(t, int64(10), resp.LikeCount)
	assert.Equal(t, 42.5, resp.HotScore)
	assert.Equal(t, "post-9", m.stats.LastEntityID)
}

func TestGetStatsHandler_NotFound(t *testing.T) {
	m := newInteractionMocks()
	m.stats.StatsNotFound = true
	r := setupInteractionRouter(m, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/post/post-9/stats", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
