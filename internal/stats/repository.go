package stats

import (
	"context"
	"time"

	"afisha/internal/database"
	"afisha/internal/models"

	"github.com/lib/pq"
)

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) InsertHit(ctx context.Context, hit *models.EndpointHit) error {
	query := `
		INSERT INTO endpoint_hits (app, uri, ip, created)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Q(ctx).ExecContext(ctx, query, hit.App, hit.URI, hit.IP, hit.Timestamp.Time)
	return err
}

// GetStats aggregates hits per (app, uri) within [start, end], most viewed
// first. With unique set, each ip counts once per uri.
func (r *Repository) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]models.ViewStats, error) {
	counter := "COUNT(ip)"
	if unique {
		counter = "COUNT(DISTINCT ip)"
	}

	query := `
		SELECT app, uri, ` + counter + ` AS hits
		FROM endpoint_hits
		WHERE created BETWEEN $1 AND $2
		  AND (cardinality($3::varchar[]) = 0 OR uri = ANY($3))
		GROUP BY app, uri
		ORDER BY hits DESC`

	rows, err := r.db.Q(ctx).QueryContext(ctx, query, start, end, pq.Array(uris))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.ViewStats
	for rows.Next() {
		var stat models.ViewStats
		if err := rows.Scan(&stat.App, &stat.URI, &stat.Hits); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}

	return stats, rows.Err()
}
