package repository

import (
	"context"
	"database/sql"

	"afisha/internal/database"
	"afisha/internal/models"
)

type CategoryRepository struct {
	db *database.DB
}

func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := `INSERT INTO categories (name) VALUES ($1) RETURNING id`
	return r.db.Q(ctx).QueryRowContext(ctx, query, category.Name).Scan(&category.ID)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	category := &models.Category{}
	query := `SELECT id, name FROM categories WHERE id = $1`

	err := r.db.Q(ctx).QueryRowContext(ctx, query, id).Scan(&category.ID, &category.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return category, err
}

// ExistsByName reports whether another category already uses the name.
// excludeID is ignored when zero.
func (r *CategoryRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM categories WHERE name = $1 AND id <> $2)`

	err := r.db.Q(ctx).QueryRowContext(ctx, query, name, excludeID).Scan(&exists)
	return exists, err
}

func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	_, err := r.db.Q(ctx).ExecContext(ctx,
		`UPDATE categories SET name = $1 WHERE id = $2`, category.Name, category.ID)
	return err
}

func (r *CategoryRepository) InUse(ctx context.Context, id int64) (bool, error) {
	var inUse bool
	query := `SELECT EXISTS(SELECT 1 FROM events WHERE category_id = $1)`

	err := r.db.Q(ctx).QueryRowContext(ctx, query, id).Scan(&inUse)
	return inUse, err
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.Q(ctx).ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *CategoryRepository) List(ctx context.Context, from, size int) ([]models.Category, error) {
	var categories []models.Category
	query := `SELECT id, name FROM categories ORDER BY id OFFSET $1 LIMIT $2`

	rows, err := r.db.Q(ctx).QueryContext(ctx, query, from, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}
