package repository

import (
	"context"

	"afisha/internal/database"
	"afisha/internal/models"
)

type SubscriptionRepository struct {
	db *database.DB
}

func NewSubscriptionRepository(db *database.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, subscription *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, target_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, target_id) DO UPDATE SET user_id = subscriptions.user_id
		RETURNING id`

	return r.db.Q(ctx).QueryRowContext(ctx, query,
		subscription.UserID, subscription.TargetID).Scan(&subscription.ID)
}

func (r *SubscriptionRepository) Delete(ctx context.Context, userID, targetID int64) (bool, error) {
	result, err := r.db.Q(ctx).ExecContext(ctx,
		`DELETE FROM subscriptions WHERE user_id = $1 AND target_id = $2`, userID, targetID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]models.Subscription, error) {
	var subscriptions []models.Subscription
	query := `SELECT id, user_id, target_id FROM subscriptions WHERE user_id = $1 ORDER BY id`

	rows, err := r.db.Q(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var subscription models.Subscription
		if err := rows.Scan(&subscription.ID, &subscription.UserID, &subscription.TargetID); err != nil {
			return nil, err
		}
		subscriptions = append(subscriptions, subscription)
	}

	return subscriptions, rows.Err()
}

// TargetIDs returns the ids of initiators the user follows.
func (r *SubscriptionRepository) TargetIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	query := `SELECT target_id FROM subscriptions WHERE user_id = $1 ORDER BY target_id`

	rows, err := r.db.Q(ctx).QueryContext(ctx, query, userID)
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
