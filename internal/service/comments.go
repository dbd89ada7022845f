package service

import (
	"context"
	"fmt"
	"time"

	"afisha/internal/apperr"
	"afisha/internal/models"
)

type CommentService struct {
	comments CommentStore
	events   EventStore
	users    UserStore

	now func() time.Time
}

func NewCommentService(comments CommentStore, events EventStore, users UserStore) *CommentService {
	return &CommentService{
		comments: comments,
		events:   events,
		users:    users,
		now:      time.Now,
	}
}

// Create submits a comment on a published event. New comments wait for
// moderation in PENDING.
func (s *CommentService) Create(ctx context.Context, userID, eventID int64, req *models.NewCommentRequest) (*models.Comment, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound(apperr.ReasonUserNotFound, "user with id=%d was not found", userID)
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperr.NotFound(apperr.ReasonEventNotFound, "event with id=%d was not found", eventID)
	}
	if event.State != models.EventStatePublished {
		return nil, apperr.Conflict(apperr.ReasonNotPublished, "cannot comment on an unpublished event")
	}

	comment := &models.Comment{
		EventID:  eventID,
		AuthorID: userID,
		Text:     req.Text,
		Created:  s.now(),
		Status:   models.CommentStatusPending,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// UpdateOwn edits the author's comment. An edit sends the comment back to
// moderation.
func (s *CommentService) UpdateOwn(ctx context.Context, userID, eventID, commentID int64, req *models.NewCommentRequest) (*models.Comment, error) {
	comment, err := s.comments.GetByIDEventAndAuthor(ctx, commentID, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	if comment == nil {
		return nil, apperr.NotFound(apperr.ReasonCommentNotFound, "comment with id=%d was not found", commentID)
	}

	comment.Text = req.Text
	comment.Status = models.CommentStatusPending
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) DeleteOwn(ctx context.Context, userID, eventID, commentID int64) error {
	deleted, err := s.comments.DeleteByIDEventAndAuthor(ctx, commentID, eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if !deleted {
		return apperr.NotFound(apperr.ReasonCommentNotFound, "comment with id=%d was not found", commentID)
	}
	return nil
}

// Moderate sets the moderation status of a comment.
func (s *CommentService) Moderate(ctx context.Context, commentID int64, status models.CommentStatus) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	if comment == nil {
		return nil, apperr.NotFound(apperr.ReasonCommentNotFound, "comment with id=%d was not found", commentID)
	}

	comment.Status = status
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) DeleteByAdmin(ctx context.Context, commentID int64) error {
	deleted, err := s.comments.Delete(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if !deleted {
		return apperr.NotFound(apperr.ReasonCommentNotFound, "comment with id=%d was not found", commentID)
	}
	return nil
}

// ListPublished returns the publicly visible comments of an event.
func (s *CommentService) ListPublished(ctx context.Context, eventID int64, from, size int) ([]models.Comment, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperr.NotFound(apperr.ReasonEventNotFound, "event with id=%d was not found", eventID)
	}

	comments, err := s.comments.ListPublishedByEvent(ctx, eventID, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

func (s *CommentService) ListByAuthor(ctx context.Context, userID int64, from, size int) ([]models.Comment, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound(apperr.ReasonUserNotFound, "user with id=%d was not found", userID)
	}

	comments, err := s.comments.ListByAuthor(ctx, userID, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}
