package repository

import (
	"context"
	"database/sql"

	"afisha/internal/database"
	"afisha/internal/models"
)

type CommentRepository struct {
	db *database.DB
}

func NewCommentRepository(db *database.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = `id, event_id, author_id, text, created, status`

func scanComment(row interface{ Scan(...any) error }) (*models.Comment, error) {
	comment := &models.Comment{}
	err := row.Scan(
		&comment.ID,
		&comment.EventID,
		&comment.AuthorID,
		&comment.Text,
		&comment.Created,
		&comment.Status,
	)
	return comment, err
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (event_id, author_id, text, created, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return r.db.Q(ctx).QueryRowContext(ctx, query,
		comment.EventID,
		comment.AuthorID,
		comment.Text,
		comment.Created,
		comment.Status,
	).Scan(&comment.ID)
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment, err := scanComment(r.db.Q(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return comment, err
}

func (r *CommentRepository) GetByIDEventAndAuthor(ctx context.Context, id, eventID, authorID int64) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments
		WHERE id = $1 AND event_id = $2 AND author_id = $3`

	comment, err := scanComment(r.db.Q(ctx).QueryRowContext(ctx, query, id, eventID, authorID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return comment, err
}

func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	_, err := r.db.Q(ctx).ExecContext(ctx,
		`UPDATE comments SET text = $1, status = $2 WHERE id = $3`,
		comment.Text, comment.Status, comment.ID)
	return err
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.Q(ctx).ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *CommentRepository) DeleteByIDEventAndAuthor(ctx context.Context, id, eventID, authorID int64) (bool, error) {
	result, err := r.db.Q(ctx).ExecContext(ctx,
		`DELETE FROM comments WHERE id = $1 AND event_id = $2 AND author_id = $3`,
		id, eventID, authorID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

// ListPublishedByEvent returns moderated comments visible to the public.
func (r *CommentRepository) ListPublishedByEvent(ctx context.Context, eventID int64, from, size int) ([]models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments
		WHERE event_id = $1 AND status = 'PUBLISHED'
		ORDER BY created DESC
		OFFSET $2 LIMIT $3`

	return r.queryComments(ctx, query, eventID, from, size)
}

func (r *CommentRepository) ListByAuthor(ctx context.Context, authorID int64, from, size int) ([]models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments
		WHERE author_id = $1
		ORDER BY created DESC
		OFFSET $2 LIMIT $3`

	return r.queryComments(ctx, query, authorID, from, size)
}

func (r *CommentRepository) queryComments(ctx context.Context, query string, args ...any) ([]models.Comment, error) {
	rows, err := r.db.Q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}

	return comments, rows.Err()
}
