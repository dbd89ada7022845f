package repository

import (
	"context"
	"database/sql"

	"afisha/internal/database"
	"afisha/internal/models"
)

type LocationRepository struct {
	db *database.DB
}

func NewLocationRepository(db *database.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// GetOrCreate deduplicates locations by (lat, lon).
func (r *LocationRepository) GetOrCreate(ctx context.Context, lat, lon float64) (*models.Location, error) {
	location := &models.Location{Lat: lat, Lon: lon}

	err := r.db.Q(ctx).QueryRowContext(ctx,
		`SELECT id FROM locations WHERE lat = $1 AND lon = $2`, lat, lon).Scan(&location.ID)
	if err == nil {
		return location, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	err = r.db.Q(ctx).QueryRowContext(ctx,
		`INSERT INTO locations (lat, lon) VALUES ($1, $2) RETURNING id`, lat, lon).Scan(&location.ID)
	return location, err
}

func (r *LocationRepository) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	location := &models.Location{}
	query := `SELECT id, lat, lon FROM locations WHERE id = $1`

	err := r.db.Q(ctx).QueryRowContext(ctx, query, id).Scan(&location.ID, &location.Lat, &location.Lon)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return location, err
}
