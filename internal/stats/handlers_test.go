package stats

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afisha/internal/models"
)

func setupRouter(store HitStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := NewHandlers(NewService(store))
	r.POST("/hit", h.RecordHit)
	r.GET("/stats", h.GetStats)

	return r
}

func TestRecordHitEndpoint(t *testing.T) {
	store := &fakeHits{}
	r := setupRouter(store)

	body, _ := json.Marshal(gin.H{
		"app":       "afisha-api",
		"uri":       "/events/1",
		"ip":        "10.0.0.1",
		"timestamp": "2026-01-10 12:00:00",
	})
	req, _ := http.NewRequest("POST", "/hit", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Body.String())
	require.Len(t, store.hits, 1)
	assert.Equal(t, "afisha-api", store.hits[0].App)
}

func TestRecordHitRejectsIncompletePayload(t *testing.T) {
	r := setupRouter(&fakeHits{})

	body, _ := json.Marshal(gin.H{"app": "afisha-api"})
	req, _ := http.NewRequest("POST", "/hit", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStatsEndpoint(t *testing.T) {
	store := &fakeHits{stats: []models.ViewStats{
		{App: "afisha-api", URI: "/events/1", Hits: 5},
		{App: "afisha-api", URI: "/events/2", Hits: 2},
	}}
	r := setupRouter(store)

	req, _ := http.NewRequest("GET",
		"/stats?start=2026-01-01%2000:00:00&end=2026-02-01%2000:00:00&uris=/events/1,/events/2&unique=true", nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var stats []models.ViewStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Len(t, stats, 2)
	assert.Equal(t, int64(5), stats[0].Hits)
	assert.True(t, store.lastUnique)
	assert.Equal(t, []string{"/events/1", "/events/2"}, store.lastURIs)
}

func TestGetStatsRequiresRange(t *testing.T) {
	r := setupRouter(&fakeHits{})

	req, _ := http.NewRequest("GET", "/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStatsInvertedRange(t *testing.T) {
	r := setupRouter(&fakeHits{})

	req, _ := http.NewRequest("GET",
		"/stats?start=2026-02-01%2000:00:00&end=2026-01-01%2000:00:00", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
