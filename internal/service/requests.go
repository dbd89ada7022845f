package service

import (
	"context"
	"fmt"
	"time"

	"afisha/internal/apperr"
	"afisha/internal/logger"
	"afisha/internal/models"
)

type RequestService struct {
	tx       Transactor
	requests RequestStore
	events   EventStore
	users    UserStore
	nats     Publisher

	now func() time.Time
}

func NewRequestService(tx Transactor, requests RequestStore, events EventStore, users UserStore) *RequestService {
	return &RequestService{
		tx:       tx,
		requests: requests,
		events:   events,
		users:    users,
		now:      time.Now,
	}
}

func (s *RequestService) WithPublisher(nats Publisher) *RequestService {
	s.nats = nats
	return s
}

// Create submits a participation request. The event row is locked for the
// duration of the checks so concurrent requests for the same event serialize
// and the participant limit cannot be oversubscribed.
func (s *RequestService) Create(ctx context.Context, userID, eventID int64) (*models.ParticipationRequest, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound(apperr.ReasonUserNotFound, "user with id=%d was not found", userID)
	}

	request := &models.Request{
		EventID:     eventID,
		RequesterID: userID,
		Created:     s.now(),
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		event, err := s.events.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return fmt.Errorf("failed to get event: %w", err)
		}
		if event == nil {
			return apperr.NotFound(apperr.ReasonEventNotFound, "event with id=%d was not found", eventID)
		}

		exists, err := s.requests.ExistsByRequesterAndEvent(ctx, userID, eventID)
		if err != nil {
			return fmt.Errorf("failed to check existing request: %w", err)
		}
		if exists {
			return apperr.Conflict(apperr.ReasonDuplicateRequest,
				"request from user=%d for event=%d already exists", userID, eventID)
		}

		if event.InitiatorID == userID {
			return apperr.Conflict(apperr.ReasonSelfAttend,
				"initiator cannot request participation in own event")
		}

		if event.State != models.EventStatePublished {
			return apperr.Conflict(apperr.ReasonNotPublished,
				"cannot participate in an unpublished event")
		}

		if event.ParticipantLimit > 0 {
			confirmed, err := s.requests.CountConfirmed(ctx, eventID)
			if err != nil {
				return fmt.Errorf("failed to count confirmed requests: %w", err)
			}
			if confirmed >= int64(event.ParticipantLimit) {
				return apperr.Conflict(apperr.ReasonLimitReached,
					"participant limit of event=%d is reached", eventID)
			}
		}

		if !event.RequestModeration || event.ParticipantLimit == 0 {
			request.Status = models.RequestStatusConfirmed
		} else {
			request.Status = models.RequestStatusPending
		}

		return s.requests.Create(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.publishStatus(ctx, models.SubjectRequestCreated, request)
	if request.Status == models.RequestStatusConfirmed {
		s.publishStatus(ctx, models.SubjectRequestConfirmed, request)
	}

	return toParticipationRequest(request), nil
}

// Cancel sets the requester's own request to CANCELED. Canceling twice is a
// no-op.
func (s *RequestService) Cancel(ctx context.Context, userID, requestID int64) (*models.ParticipationRequest, error) {
	request, err := s.requests.GetByIDAndRequester(ctx, requestID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request == nil {
		return nil, apperr.NotFound(apperr.ReasonRequestNotFound, "request with id=%d was not found", requestID)
	}

	if request.Status != models.RequestStatusCanceled {
		request.Status = models.RequestStatusCanceled
		if err := s.requests.UpdateStatus(ctx, requestID, models.RequestStatusCanceled); err != nil {
			return nil, fmt.Errorf("failed to cancel request: %w", err)
		}
	}

	return toParticipationRequest(request), nil
}

// ListOwn returns all requests the user has submitted.
func (s *RequestService) ListOwn(ctx context.Context, userID int64) ([]models.ParticipationRequest, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound(apperr.ReasonUserNotFound, "user with id=%d was not found", userID)
	}

	requests, err := s.requests.FindByRequester(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return toParticipationRequests(requests), nil
}

// ListForEvent returns the requests for an event owned by userID.
func (s *RequestService) ListForEvent(ctx context.Context, userID, eventID int64) ([]models.ParticipationRequest, error) {
	event, err := s.events.GetByIDAndInitiator(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperr.NotFound(apperr.ReasonEventNotFound, "event with id=%d was not found", eventID)
	}

	requests, err := s.requests.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return toParticipationRequests(requests), nil
}

// UpdateStatuses processes the initiator's bulk moderation decision. For a
// CONFIRMED decision requests are confirmed in id order until the participant
// limit is hit; the rest of the batch and every other PENDING request of the
// event are rejected in the same transaction.
func (s *RequestService) UpdateStatuses(ctx context.Context, userID, eventID int64, upd *models.RequestStatusUpdate) (*models.RequestStatusUpdateResult, error) {
	result := &models.RequestStatusUpdateResult{
		ConfirmedRequests: []models.ParticipationRequest{},
		RejectedRequests:  []models.ParticipationRequest{},
	}

	var confirmed, rejected []models.Request

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		event, err := s.events.GetByIDAndInitiatorForUpdate(ctx, eventID, userID)
		if err != nil {
			return fmt.Errorf("failed to get event: %w", err)
		}
		if event == nil {
			return apperr.NotFound(apperr.ReasonEventNotFound, "event with id=%d was not found", eventID)
		}
		if event.State != models.EventStatePublished {
			return apperr.Conflict(apperr.ReasonNotPublished,
				"requests of an unpublished event cannot be moderated")
		}

		// Ids that belong to other events are silently dropped; an in-event
		// request that already left PENDING is a conflict.
		pending, err := s.requests.FindByIDs(ctx, upd.RequestIDs, eventID)
		if err != nil {
			return fmt.Errorf("failed to load requests: %w", err)
		}
		for i := range pending {
			if pending[i].Status != models.RequestStatusPending {
				return apperr.Conflict(apperr.ReasonRequestNotPending,
					"request with id=%d must have status PENDING", pending[i].ID)
			}
		}

		if upd.Status == models.RequestStatusRejected {
			if err := s.requests.UpdateStatusByIDs(ctx, upd.RequestIDs, eventID, models.RequestStatusRejected); err != nil {
				return fmt.Errorf("failed to reject requests: %w", err)
			}
			for i := range pending {
				pending[i].Status = models.RequestStatusRejected
				rejected = append(rejected, pending[i])
			}
			return nil
		}

		limit := int64(event.ParticipantLimit)
		count, err := s.requests.CountConfirmed(ctx, eventID)
		if err != nil {
			return fmt.Errorf("failed to count confirmed requests: %w", err)
		}
		if limit > 0 && count >= limit {
			return apperr.Conflict(apperr.ReasonLimitReached,
				"participant limit of event=%d is reached", eventID)
		}

		for i := range pending {
			if limit == 0 || count < limit {
				if err := s.requests.UpdateStatus(ctx, pending[i].ID, models.RequestStatusConfirmed); err != nil {
					return fmt.Errorf("failed to confirm request: %w", err)
				}
				pending[i].Status = models.RequestStatusConfirmed
				confirmed = append(confirmed, pending[i])
				count++
			} else {
				if err := s.requests.UpdateStatus(ctx, pending[i].ID, models.RequestStatusRejected); err != nil {
					return fmt.Errorf("failed to reject request: %w", err)
				}
				pending[i].Status = models.RequestStatusRejected
				rejected = append(rejected, pending[i])
			}
		}

		// Capacity exhausted: no other pending request can ever be
		// confirmed, reject them all now.
		if limit > 0 && count >= limit {
			if err := s.requests.RejectAllPending(ctx, eventID); err != nil {
				return fmt.Errorf("failed to reject remaining requests: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range confirmed {
		s.publishStatus(ctx, models.SubjectRequestConfirmed, &confirmed[i])
		result.ConfirmedRequests = append(result.ConfirmedRequests, *toParticipationRequest(&confirmed[i]))
	}
	for i := range rejected {
		s.publishStatus(ctx, models.SubjectRequestRejected, &rejected[i])
		result.RejectedRequests = append(result.RejectedRequests, *toParticipationRequest(&rejected[i]))
	}

	return result, nil
}

func (s *RequestService) publishStatus(ctx context.Context, subject string, request *models.Request) {
	if s.nats == nil {
		return
	}
	msg := models.RequestStatusMessage{
		RequestID:   request.ID,
		EventID:     request.EventID,
		RequesterID: request.RequesterID,
		Status:      request.Status,
		Timestamp:   s.now(),
	}
	if err := s.nats.Publish(subject, msg); err != nil {
		logger.WithContext(ctx).Error("Failed to publish request status",
			"error", err, "subject", subject, "request_id", request.ID)
	}
}

func toParticipationRequest(request *models.Request) *models.ParticipationRequest {
	return &models.ParticipationRequest{
		ID:        request.ID,
		Event:     request.EventID,
		Requester: request.RequesterID,
		Created:   models.NewDateTime(request.Created),
		Status:    request.Status,
	}
}

func toParticipationRequests(requests []models.Request) []models.ParticipationRequest {
	result := make([]models.ParticipationRequest, len(requests))
	for i := range requests {
		result[i] = *toParticipationRequest(&requests[i])
	}
	return result
}
