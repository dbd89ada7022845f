package repository

import (
	"context"
	"database/sql"

	"afisha/internal/database"
	"afisha/internal/models"

	"github.com/lib/pq"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name)
		VALUES ($1, $2)
		RETURNING id`

	return r.db.Q(ctx).QueryRowContext(ctx, query, user.Email, user.Name).Scan(&user.ID)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, email, name FROM users WHERE id = $1`

	err := r.db.Q(ctx).QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Email, &user.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	err := r.db.Q(ctx).QueryRowContext(ctx, query, email).Scan(&exists)
	return exists, err
}

// List returns users ordered by id; ids narrows the result when non-empty.
func (r *UserRepository) List(ctx context.Context, ids []int64, from, size int) ([]models.User, error) {
	var users []models.User
	query := `
		SELECT id, email, name
		FROM users
		WHERE cardinality($1::bigint[]) = 0 OR id = ANY($1)
		ORDER BY id
		OFFSET $2 LIMIT $3`

	rows, err := r.db.Q(ctx).QueryContext(ctx, query, pq.Array(ids), from, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.Q(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}
