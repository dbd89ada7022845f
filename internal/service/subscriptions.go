package service

import (
	"context"
	"fmt"

	"afisha/internal/apperr"
	"afisha/internal/models"
)

type SubscriptionService struct {
	subscriptions SubscriptionStore
	users         UserStore
}

func NewSubscriptionService(subscriptions SubscriptionStore, users UserStore) *SubscriptionService {
	return &SubscriptionService{subscriptions: subscriptions, users: users}
}

// Subscribe makes userID a follower of targetID's events. Subscribing twice
// is a no-op.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, targetID int64) (*models.Subscription, error) {
	if userID == targetID {
		return nil, apperr.Conflict(apperr.ReasonSelfSubscribe, "cannot subscribe to yourself")
	}

	for _, id := range []int64{userID, targetID} {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return nil, apperr.NotFound(apperr.ReasonUserNotFound, "user with id=%d was not found", id)
		}
	}

	subscription := &models.Subscription{UserID: userID, TargetID: targetID}
	if err := s.subscriptions.Create(ctx, subscription); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	return subscription, nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, targetID int64) error {
	deleted, err := s.subscriptions.Delete(ctx, userID, targetID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if !deleted {
		return apperr.NotFound(apperr.ReasonNotSubscribed,
			"user with id=%d is not subscribed to user with id=%d", userID, targetID)
	}
	return nil
}

func (s *SubscriptionService) List(ctx context.Context, userID int64) ([]models.Subscription, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound(apperr.ReasonUserNotFound, "user with id=%d was not found", userID)
	}

	subscriptions, err := s.subscriptions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	if subscriptions == nil {
		subscriptions = []models.Subscription{}
	}
	return subscriptions, nil
}
