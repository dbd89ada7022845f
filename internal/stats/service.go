package stats

import (
	"context"
	"fmt"
	"time"

	"afisha/internal/apperr"
	"afisha/internal/models"
)

// HitStore is the persistence surface of the stats service.
type HitStore interface {
	InsertHit(ctx context.Context, hit *models.EndpointHit) error
	GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]models.ViewStats, error)
}

type Service struct {
	hits HitStore
}

func NewService(hits HitStore) *Service {
	return &Service{hits: hits}
}

func (s *Service) RecordHit(ctx context.Context, hit *models.EndpointHit) error {
	if err := s.hits.InsertHit(ctx, hit); err != nil {
		return fmt.Errorf("failed to insert hit: %w", err)
	}
	return nil
}

func (s *Service) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]models.ViewStats, error) {
	if start.After(end) {
		return nil, apperr.BadRequest(apperr.ReasonInvalidRange, "start must not be after end")
	}

	stats, err := s.hits.GetStats(ctx, start, end, uris, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}
	if stats == nil {
		stats = []models.ViewStats{}
	}
	return stats, nil
}
