package service

import (
	"context"
	"fmt"
	"time"

	"afisha/internal/apperr"
	"afisha/internal/logger"
	"afisha/internal/models"
)

const (
	// Minimum gap between "now" and the event date, per actor.
	minLeadTimeOwner = 2 * time.Hour
	minLeadTimeAdmin = 1 * time.Hour
)

type EventService struct {
	tx            Transactor
	events        EventStore
	users         UserStore
	categories    CategoryStore
	locations     LocationStore
	requests      RequestStore
	subscriptions SubscriptionStore

	stats   StatsGateway
	nats    Publisher
	search  EventIndexer
	listing ListingCache

	// clock is swapped in tests
	now func() time.Time
}

func NewEventService(tx Transactor, events EventStore, users UserStore, categories CategoryStore,
	locations LocationStore, requests RequestStore, subscriptions SubscriptionStore) *EventService {
	return &EventService{
		tx:            tx,
		events:        events,
		users:         users,
		categories:    categories,
		locations:     locations,
		requests:      requests,
		subscriptions: subscriptions,
		now:           time.Now,
	}
}

// WithCollaborators attaches the optional integrations. Any of them may be nil.
func (s *EventService) WithCollaborators(stats StatsGateway, nats Publisher, search EventIndexer, listing ListingCache) *EventService {
	s.stats = stats
	s.nats = nats
	s.search = search
	s.listing = listing
	return s
}

// Create registers a new event owned by userID. The event starts in PENDING
// and waits for admin moderation.
func (s *EventService) Create(ctx context.Context, userID int64, req *models.NewEventRequest) (*models.EventFull, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound(apperr.ReasonUserNotFound, "user with id=%d was not found", userID)
	}

	category, err := s.categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, apperr.NotFound(apperr.ReasonCategoryNotFound, "category with id=%d was not found", req.CategoryID)
	}

	if err := s.checkLeadTime(req.EventDate.Time, minLeadTimeOwner); err != nil {
		return nil, err
	}

	event := &models.Event{
		Annotation:        req.Annotation,
		Description:       req.Description,
		Title:             req.Title,
		CategoryID:        req.CategoryID,
		InitiatorID:       userID,
		EventDate:         req.EventDate.Time,
		CreatedOn:         s.now(),
		Paid:              false,
		ParticipantLimit:  0,
		RequestModeration: true,
		State:             models.EventStatePending,
	}
	if req.Paid != nil {
		event.Paid = *req.Paid
	}
	if req.ParticipantLimit != nil {
		event.ParticipantLimit = *req.ParticipantLimit
	}
	if req.RequestModeration != nil {
		event.RequestModeration = *req.RequestModeration
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		location, err := s.locations.GetOrCreate(ctx, req.Location.Lat, req.Location.Lon)
		if err != nil {
			return fmt.Errorf("failed to resolve location: %w", err)
		}
		event.LocationID = location.ID

		if err := s.events.Create(ctx, event); err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.toView(ctx, event)
}

// GetOwn lists the user's events with derived fields attached.
func (s *EventService) GetOwn(ctx context.Context, userID int64, from, size int) ([]models.EventFull, error) {
	events, err := s.events.ListByInitiator(ctx, userID, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return s.toViews(ctx, events)
}

func (s *EventService) GetOwnByID(ctx context.Context, userID, eventID int64) (*models.EventFull, error) {
	event, err := s.events.GetByIDAndInitiator(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperr.NotFound(apperr.ReasonEventNotFound, "event with id=%d was not found", eventID)
	}
	return s.toView(ctx, event)
}

// UpdateByOwner applies the initiator's patch. Only PENDING and CANCELED
// events are editable by their owner.
func (s *EventService) UpdateByOwner(ctx context.Context, userID, eventID int64, req *models.UpdateEventRequest) (*models.EventFull, error) {
	var event *models.Event

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.events.GetByIDAndInitiatorForUpdate(ctx, eventID, userID)
		if err != nil {
			return fmt.Errorf("failed to get event: %w", err)
		}
		if event == nil {
			return apperr.NotFound(apperr.ReasonEventNotFound, "event with id=%d was not found", eventID)
		}
		if event.State == models.EventStatePublished {
			return apperr.Conflict(apperr.ReasonNotEditable,
				"only pending or canceled events can be changed")
		}

		if err := s.applyPatch(ctx, event, req, minLeadTimeOwner); err != nil {
			return err
		}

		// SEND_TO_REVIEW resubmits; every other action cancels.
		switch req.StateAction {
		case "":
		case models.ActionSendToReview:
			event.State = models.EventStatePending
		default:
			event.State = models.EventStateCanceled
		}

		return s.events.Update(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	return s.toView(ctx, event)
}

// UpdateByAdmin applies the moderator's patch, including publish and reject
// transitions.
func (s *EventService) UpdateByAdmin(ctx context.Context, eventID int64, req *models.UpdateEventRequest) (*models.EventFull, error) {
	var event *models.Event
	var published, canceled bool

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.events.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return fmt.Errorf("failed to get event: %w", err)
		}
		if event == nil {
			return apperr.NotFound(apperr.ReasonEventNotFound, "event with id=%d was not found", eventID)
		}

		if err := s.applyPatch(ctx, event, req, minLeadTimeAdmin); err != nil {
			return err
		}

		switch req.StateAction {
		case "":
		case models.ActionPublishEvent:
			if event.State == models.EventStatePublished {
				return apperr.Conflict(apperr.ReasonAlreadyPublished,
					"event is already published")
			}
			if event.State == models.EventStateCanceled {
				return apperr.Conflict(apperr.ReasonCannotPublish,
					"canceled event cannot be published")
			}
			if err := s.checkLeadTime(event.EventDate, minLeadTimeAdmin); err != nil {
				return err
			}
			now := s.now()
			event.State = models.EventStatePublished
			event.PublishedOn = &now
			published = true
		case models.ActionRejectEvent:
			if event.State == models.EventStatePublished {
				return apperr.Conflict(apperr.ReasonAlreadyPublished,
					"published event cannot be rejected")
			}
			event.State = models.EventStateCanceled
			canceled = true
		default:
			return apperr.BadRequest(apperr.ReasonInvalidFilter,
				"unknown state action: %s", req.StateAction)
		}

		return s.events.Update(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	if published {
		s.onPublished(ctx, event)
	}
	if canceled {
		s.onCanceled(ctx, event)
	}

	return s.toView(ctx, event)
}

// FindAdmin serves the admin listing.
func (s *EventService) FindAdmin(ctx context.Context, filter models.AdminEventFilter) ([]models.EventFull, error) {
	if err := checkRange(filter.RangeStart, filter.RangeEnd); err != nil {
		return nil, err
	}

	events, err := s.events.FindAdmin(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}
	return s.toViews(ctx, events)
}

// FindPublic serves the public listing and records the page view. When the
// search index is available, the text filter goes through it first and the
// database only sees the candidate ids.
func (s *EventService) FindPublic(ctx context.Context, filter models.PublicEventFilter, uri, ip string) ([]models.EventFull, error) {
	if err := checkRange(filter.RangeStart, filter.RangeEnd); err != nil {
		return nil, err
	}

	if filter.Text != "" && s.search != nil {
		ids, err := s.search.SearchIDs(ctx, filter.Text, 1000)
		switch {
		case err != nil:
			// Fall back to the database text filter.
			logger.WithContext(ctx).Error("Search index unavailable, falling back to SQL",
				"error", err)
		case len(ids) == 0:
			s.recordHit(ctx, uri, ip)
			return []models.EventFull{}, nil
		default:
			filter.IDs = ids
			filter.Text = ""
		}
	}

	events, err := s.events.FindPublic(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}

	s.recordHit(ctx, uri, ip)
	return s.toViews(ctx, events)
}

// GetPublicByID returns a published event and records the page view.
func (s *EventService) GetPublicByID(ctx context.Context, eventID int64, uri, ip string) (*models.EventFull, error) {
	event, err := s.events.GetByIDAndState(ctx, eventID, models.EventStatePublished)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperr.NotFound(apperr.ReasonEventNotFound, "event with id=%d was not found", eventID)
	}

	s.recordHit(ctx, uri, ip)
	return s.toView(ctx, event)
}

// Feed lists upcoming published events of the initiators the user follows.
func (s *EventService) Feed(ctx context.Context, userID int64, from, size int) ([]models.EventFull, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound(apperr.ReasonUserNotFound, "user with id=%d was not found", userID)
	}

	targetIDs, err := s.subscriptions.TargetIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}
	if len(targetIDs) == 0 {
		return []models.EventFull{}, nil
	}

	events, err := s.events.ListByInitiators(ctx, targetIDs, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return s.toViews(ctx, events)
}

// ToViews exposes view assembly for services composing event lists.
func (s *EventService) ToViews(ctx context.Context, events []models.Event) ([]models.EventFull, error) {
	return s.toViews(ctx, events)
}

func (s *EventService) applyPatch(ctx context.Context, event *models.Event, req *models.UpdateEventRequest, lead time.Duration) error {
	if req.Annotation != nil {
		event.Annotation = *req.Annotation
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Paid != nil {
		event.Paid = *req.Paid
	}
	if req.ParticipantLimit != nil {
		event.ParticipantLimit = *req.ParticipantLimit
	}
	if req.RequestModeration != nil {
		event.RequestModeration = *req.RequestModeration
	}
	if req.EventDate != nil {
		if err := s.checkLeadTime(req.EventDate.Time, lead); err != nil {
			return err
		}
		event.EventDate = req.EventDate.Time
	}
	if req.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *req.CategoryID)
		if err != nil {
			return fmt.Errorf("failed to get category: %w", err)
		}
		if category == nil {
			return apperr.NotFound(apperr.ReasonCategoryNotFound, "category with id=%d was not found", *req.CategoryID)
		}
		event.CategoryID = *req.CategoryID
	}
	if req.Location != nil {
		location, err := s.locations.GetOrCreate(ctx, req.Location.Lat, req.Location.Lon)
		if err != nil {
			return fmt.Errorf("failed to resolve location: %w", err)
		}
		event.LocationID = location.ID
	}
	return nil
}

func (s *EventService) checkLeadTime(eventDate time.Time, lead time.Duration) error {
	if eventDate.Before(s.now().Add(lead)) {
		return apperr.Conflict(apperr.ReasonEventDate,
			"event date must be at least %s from now", lead)
	}
	return nil
}

func checkRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return apperr.BadRequest(apperr.ReasonInvalidRange, "rangeStart must not be after rangeEnd")
	}
	return nil
}

func (s *EventService) recordHit(ctx context.Context, uri, ip string) {
	if s.stats == nil || uri == "" {
		return
	}
	if err := s.stats.AddHit(ctx, uri, ip); err != nil {
		logger.WithContext(ctx).Error("Failed to record hit", "error", err, "uri", uri)
	}
}

func (s *EventService) onPublished(ctx context.Context, event *models.Event) {
	if s.nats != nil {
		msg := models.EventPublishedMessage{
			EventID:     event.ID,
			InitiatorID: event.InitiatorID,
			Title:       event.Title,
			EventDate:   event.EventDate,
			Timestamp:   s.now(),
		}
		if err := s.nats.Publish(models.SubjectEventPublished, msg); err != nil {
			logger.WithContext(ctx).Error("Failed to publish event.published",
				"error", err, "event_id", event.ID)
		}
	}
	if s.search != nil {
		if err := s.search.IndexEvent(ctx, event); err != nil {
			logger.WithContext(ctx).Error("Failed to index event",
				"error", err, "event_id", event.ID)
		}
	}
	s.invalidateListings(ctx)
}

func (s *EventService) onCanceled(ctx context.Context, event *models.Event) {
	if s.nats != nil {
		msg := models.EventCanceledMessage{EventID: event.ID, Timestamp: s.now()}
		if err := s.nats.Publish(models.SubjectEventCanceled, msg); err != nil {
			logger.WithContext(ctx).Error("Failed to publish event.canceled",
				"error", err, "event_id", event.ID)
		}
	}
	if s.search != nil {
		if err := s.search.DeleteEvent(ctx, event.ID); err != nil {
			logger.WithContext(ctx).Error("Failed to remove event from index",
				"error", err, "event_id", event.ID)
		}
	}
	s.invalidateListings(ctx)
}

func (s *EventService) invalidateListings(ctx context.Context) {
	if s.listing == nil {
		return
	}
	if err := s.listing.InvalidateEventsLists(ctx); err != nil {
		logger.WithContext(ctx).Error("Failed to invalidate cached listings", "error", err)
	}
}

func (s *EventService) toView(ctx context.Context, event *models.Event) (*models.EventFull, error) {
	views, err := s.toViews(ctx, []models.Event{*event})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// toViews assembles the API view: category, initiator and location are joined
// in, confirmed counts come from the requests table and view counts from the
// stats service. A stats failure degrades to zero views instead of failing
// the read.
func (s *EventService) toViews(ctx context.Context, events []models.Event) ([]models.EventFull, error) {
	if len(events) == 0 {
		return []models.EventFull{}, nil
	}

	ids := make([]int64, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}

	confirmed, err := s.requests.CountConfirmedByEventIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count confirmed requests: %w", err)
	}

	views := s.fetchViews(ctx, events)

	categories := make(map[int64]models.Category)
	users := make(map[int64]models.User)
	locations := make(map[int64]models.Location)

	result := make([]models.EventFull, len(events))
	for i, event := range events {
		category, ok := categories[event.CategoryID]
		if !ok {
			c, err := s.categories.GetByID(ctx, event.CategoryID)
			if err != nil {
				return nil, fmt.Errorf("failed to get category: %w", err)
			}
			if c != nil {
				category = *c
			}
			categories[event.CategoryID] = category
		}

		initiator, ok := users[event.InitiatorID]
		if !ok {
			u, err := s.users.GetByID(ctx, event.InitiatorID)
			if err != nil {
				return nil, fmt.Errorf("failed to get user: %w", err)
			}
			if u != nil {
				initiator = *u
			}
			users[event.InitiatorID] = initiator
		}

		location, ok := locations[event.LocationID]
		if !ok {
			l, err := s.locations.GetByID(ctx, event.LocationID)
			if err != nil {
				return nil, fmt.Errorf("failed to get location: %w", err)
			}
			if l != nil {
				location = *l
			}
			locations[event.LocationID] = location
		}

		full := models.EventFull{
			ID:                event.ID,
			Annotation:        event.Annotation,
			Category:          category,
			ConfirmedRequests: confirmed[event.ID],
			CreatedOn:         models.NewDateTime(event.CreatedOn),
			Description:       event.Description,
			EventDate:         models.NewDateTime(event.EventDate),
			Initiator:         initiator,
			Location:          location,
			Paid:              event.Paid,
			ParticipantLimit:  event.ParticipantLimit,
			RequestModeration: event.RequestModeration,
			State:             event.State,
			Title:             event.Title,
			Views:             views[event.ID],
		}
		if event.PublishedOn != nil {
			p := models.NewDateTime(*event.PublishedOn)
			full.PublishedOn = &p
		}
		result[i] = full
	}

	return result, nil
}

// fetchViews maps event id to its unique view count. Only published events
// have views; others stay at zero.
func (s *EventService) fetchViews(ctx context.Context, events []models.Event) map[int64]int64 {
	views := make(map[int64]int64)
	if s.stats == nil {
		return views
	}

	var uris []string
	var earliest time.Time
	for _, e := range events {
		if e.PublishedOn == nil {
			continue
		}
		uris = append(uris, fmt.Sprintf("/events/%d", e.ID))
		if earliest.IsZero() || e.PublishedOn.Before(earliest) {
			earliest = *e.PublishedOn
		}
	}
	if len(uris) == 0 {
		return views
	}

	stats, err := s.stats.GetStats(ctx, earliest, s.now(), uris, true)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to fetch view stats", "error", err)
		return views
	}

	for _, stat := range stats {
		var id int64
		if _, err := fmt.Sscanf(stat.URI, "/events/%d", &id); err == nil {
			views[id] = stat.Hits
		}
	}
	return views
}
