package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afisha/internal/apperr"
	"afisha/internal/models"
)

type fakeHits struct {
	hits  []models.EndpointHit
	stats []models.ViewStats

	lastUnique bool
	lastURIs   []string
}

func (f *fakeHits) InsertHit(_ context.Context, hit *models.EndpointHit) error {
	f.hits = append(f.hits, *hit)
	return nil
}

func (f *fakeHits) GetStats(_ context.Context, _, _ time.Time, uris []string, unique bool) ([]models.ViewStats, error) {
	f.lastURIs = uris
	f.lastUnique = unique
	return f.stats, nil
}

func TestRecordHit(t *testing.T) {
	store := &fakeHits{}
	svc := NewService(store)

	hit := &models.EndpointHit{
		App:       "afisha-api",
		URI:       "/events/1",
		IP:        "10.0.0.1",
		Timestamp: models.NewDateTime(time.Now()),
	}
	err := svc.RecordHit(context.Background(), hit)

	require.NoError(t, err)
	require.Len(t, store.hits, 1)
	assert.Equal(t, "/events/1", store.hits[0].URI)
}

func TestGetStatsInvalidRange(t *testing.T) {
	svc := NewService(&fakeHits{})

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err := svc.GetStats(context.Background(), start, end, nil, false)

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindBadRequest, appErr.Kind)
	assert.Equal(t, apperr.ReasonInvalidRange, appErr.Reason)
}

func TestGetStatsPassesFilters(t *testing.T) {
	store := &fakeHits{stats: []models.ViewStats{{App: "afisha-api", URI: "/events/1", Hits: 3}}}
	svc := NewService(store)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	stats, err := svc.GetStats(context.Background(), start, end, []string{"/events/1"}, true)

	require.NoError(t, err)
	assert.True(t, store.lastUnique)
	assert.Equal(t, []string{"/events/1"}, store.lastURIs)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(3), stats[0].Hits)
}

func TestGetStatsEmptyResult(t *testing.T) {
	svc := NewService(&fakeHits{})

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stats, err := svc.GetStats(context.Background(), start, start.AddDate(0, 1, 0), nil, false)

	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}
