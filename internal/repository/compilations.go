package repository

import (
	"context"
	"database/sql"

	"afisha/internal/database"
	"afisha/internal/models"

	"github.com/lib/pq"
)

type CompilationRepository struct {
	db *database.DB
}

func NewCompilationRepository(db *database.DB) *CompilationRepository {
	return &CompilationRepository{db: db}
}

func (r *CompilationRepository) Create(ctx context.Context, compilation *models.Compilation) error {
	query := `INSERT INTO compilations (title, pinned) VALUES ($1, $2) RETURNING id`
	return r.db.Q(ctx).QueryRowContext(ctx, query, compilation.Title, compilation.Pinned).Scan(&compilation.ID)
}

func (r *CompilationRepository) GetByID(ctx context.Context, id int64) (*models.Compilation, error) {
	compilation := &models.Compilation{}
	query := `SELECT id, title, pinned FROM compilations WHERE id = $1`

	err := r.db.Q(ctx).QueryRowContext(ctx, query, id).Scan(&compilation.ID, &compilation.Title, &compilation.Pinned)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return compilation, err
}

func (r *CompilationRepository) Update(ctx context.Context, compilation *models.Compilation) error {
	_, err := r.db.Q(ctx).ExecContext(ctx,
		`UPDATE compilations SET title = $1, pinned = $2 WHERE id = $3`,
		compilation.Title, compilation.Pinned, compilation.ID)
	return err
}

func (r *CompilationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.Q(ctx).ExecContext(ctx, `DELETE FROM compilations WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *CompilationRepository) List(ctx context.Context, pinned *bool, from, size int) ([]models.Compilation, error) {
	var compilations []models.Compilation
	query := `
		SELECT id, title, pinned
		FROM compilations
		WHERE $1::boolean IS NULL OR pinned = $1
		ORDER BY id
		OFFSET $2 LIMIT $3`

	rows, err := r.db.Q(ctx).QueryContext(ctx, query, pinned, from, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var compilation models.Compilation
		if err := rows.Scan(&compilation.ID, &compilation.Title, &compilation.Pinned); err != nil {
			return nil, err
		}
		compilations = append(compilations, compilation)
	}

	return compilations, rows.Err()
}

// SetEvents replaces the compilation's event set with explicit join rows.
func (r *CompilationRepository) SetEvents(ctx context.Context, compilationID int64, eventIDs []int64) error {
	q := r.db.Q(ctx)

	if _, err := q.ExecContext(ctx,
		`DELETE FROM compilation_events WHERE compilation_id = $1`, compilationID); err != nil {
		return err
	}

	if len(eventIDs) == 0 {
		return nil
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO compilation_events (compilation_id, event_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`, compilationID, pq.Array(eventIDs))
	return err
}

func (r *CompilationRepository) EventIDs(ctx context.Context, compilationID int64) ([]int64, error) {
	var ids []int64
	query := `SELECT event_id FROM compilation_events WHERE compilation_id = $1 ORDER BY event_id`

	rows, err := r.db.Q(ctx).QueryContext(ctx, query, compilationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// CountExisting reports how many of ids reference existing events.
func (r *CompilationRepository) CountExisting(ctx context.Context, eventIDs []int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM events WHERE id = ANY($1)`

	err := r.db.Q(ctx).QueryRowContext(ctx, query, pq.Array(eventIDs)).Scan(&count)
	return count, err
}
