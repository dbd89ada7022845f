package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afisha/internal/models"
)

func TestAddHit(t *testing.T) {
	var received models.EndpointHit
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/hit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewStatsClient(StatsConfig{BaseURL: server.URL, App: "afisha-api"})

	err := client.AddHit(context.Background(), "/events/5", "10.0.0.1")

	require.NoError(t, err)
	assert.Equal(t, "afisha-api", received.App)
	assert.Equal(t, "/events/5", received.URI)
	assert.Equal(t, "10.0.0.1", received.IP)
	assert.False(t, received.Timestamp.IsZero())
}

func TestAddHitServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewStatsClient(StatsConfig{BaseURL: server.URL, App: "afisha-api"})

	err := client.AddHit(context.Background(), "/events/5", "10.0.0.1")

	assert.Error(t, err)
}

func TestGetStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2026-01-01 00:00:00", q.Get("start"))
		assert.Equal(t, "2026-02-01 00:00:00", q.Get("end"))
		assert.Equal(t, "/events/1,/events/2", q.Get("uris"))
		assert.Equal(t, "true", q.Get("unique"))

		json.NewEncoder(w).Encode([]models.ViewStats{
			{App: "afisha-api", URI: "/events/1", Hits: 9},
		})
	}))
	defer server.Close()

	client := NewStatsClient(StatsConfig{BaseURL: server.URL, App: "afisha-api"})

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	stats, err := client.GetStats(context.Background(), start, end, []string{"/events/1", "/events/2"}, true)

	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(9), stats[0].Hits)
}
