package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"afisha/internal/database"
	"afisha/internal/models"

	"github.com/lib/pq"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, annotation, description, title, category_id, initiator_id, location_id,
	       event_date, created_on, published_on, paid, participant_limit, request_moderation, state`

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	event := &models.Event{}
	err := row.Scan(
		&event.ID,
		&event.Annotation,
		&event.Description,
		&event.Title,
		&event.CategoryID,
		&event.InitiatorID,
		&event.LocationID,
		&event.EventDate,
		&event.CreatedOn,
		&event.PublishedOn,
		&event.Paid,
		&event.ParticipantLimit,
		&event.RequestModeration,
		&event.State,
	)
	return event, err
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (annotation, description, title, category_id, initiator_id, location_id,
		                    event_date, created_on, paid, participant_limit, request_moderation, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	return r.db.Q(ctx).QueryRowContext(ctx, query,
		event.Annotation,
		event.Description,
		event.Title,
		event.CategoryID,
		event.InitiatorID,
		event.LocationID,
		event.EventDate,
		event.CreatedOn,
		event.Paid,
		event.ParticipantLimit,
		event.RequestModeration,
		event.State,
	).Scan(&event.ID)
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.Q(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return event, err
}

// GetByIDForUpdate locks the event row for the duration of the surrounding
// transaction. Admission control serializes per event on this lock.
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`

	event, err := scanEvent(r.db.Q(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return event, err
}

func (r *EventRepository) GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND initiator_id = $2`

	event, err := scanEvent(r.db.Q(ctx).QueryRowContext(ctx, query, id, initiatorID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return event, err
}

// GetByIDAndInitiatorForUpdate is GetByIDAndInitiator with a row lock.
func (r *EventRepository) GetByIDAndInitiatorForUpdate(ctx context.Context, id, initiatorID int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND initiator_id = $2 FOR UPDATE`

	event, err := scanEvent(r.db.Q(ctx).QueryRowContext(ctx, query, id, initiatorID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return event, err
}

func (r *EventRepository) GetByIDAndState(ctx context.Context, id int64, state models.EventState) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND state = $2`

	event, err := scanEvent(r.db.Q(ctx).QueryRowContext(ctx, query, id, state))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return event, err
}

func (r *EventRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ANY($1) ORDER BY id`

	return r.queryEvents(ctx, query, pq.Array(ids))
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET annotation = $1, description = $2, title = $3, category_id = $4, location_id = $5,
		    event_date = $6, published_on = $7, paid = $8, participant_limit = $9,
		    request_moderation = $10, state = $11
		WHERE id = $12`

	_, err := r.db.Q(ctx).ExecContext(ctx, query,
		event.Annotation,
		event.Description,
		event.Title,
		event.CategoryID,
		event.LocationID,
		event.EventDate,
		event.PublishedOn,
		event.Paid,
		event.ParticipantLimit,
		event.RequestModeration,
		event.State,
		event.ID,
	)
	return err
}

func (r *EventRepository) ListByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
		WHERE initiator_id = $1
		ORDER BY id
		OFFSET $2 LIMIT $3`

	return r.queryEvents(ctx, query, initiatorID, from, size)
}

// ListByInitiators serves the subscription feed.
func (r *EventRepository) ListByInitiators(ctx context.Context, initiatorIDs []int64, from, size int) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
		WHERE initiator_id = ANY($1) AND state = 'PUBLISHED'
		ORDER BY event_date
		OFFSET $2 LIMIT $3`

	return r.queryEvents(ctx, query, pq.Array(initiatorIDs), from, size)
}

// FindAdmin applies the admin listing filter.
func (r *EventRepository) FindAdmin(ctx context.Context, filter models.AdminEventFilter) ([]models.Event, error) {
	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.UserIDs) > 0 {
		conditions = append(conditions, "initiator_id = ANY("+arg(pq.Array(filter.UserIDs))+")")
	}
	if len(filter.States) > 0 {
		states := make([]string, len(filter.States))
		for i, s := range filter.States {
			states[i] = string(s)
		}
		conditions = append(conditions, "state = ANY("+arg(pq.Array(states))+")")
	}
	appendBaseConditions(&conditions, arg, filter.EventFilter)

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id OFFSET " + arg(filter.From) + " LIMIT " + arg(filter.Size)

	return r.queryEvents(ctx, query, args...)
}

// FindPublic applies the public listing filter; only published events match.
func (r *EventRepository) FindPublic(ctx context.Context, filter models.PublicEventFilter) ([]models.Event, error) {
	conditions := []string{"state = 'PUBLISHED'"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.IDs) > 0 {
		conditions = append(conditions, "id = ANY("+arg(pq.Array(filter.IDs))+")")
	}
	if filter.Text != "" {
		p := arg("%" + filter.Text + "%")
		conditions = append(conditions, "(annotation ILIKE "+p+" OR description ILIKE "+p+")")
	}
	if filter.Paid != nil {
		conditions = append(conditions, "paid = "+arg(*filter.Paid))
	}
	if filter.OnlyAvailable {
		conditions = append(conditions, `(participant_limit = 0 OR participant_limit > (
			SELECT COUNT(*) FROM requests WHERE event_id = events.id AND status = 'CONFIRMED'))`)
	}
	if filter.RangeStart == nil && filter.RangeEnd == nil {
		// Default window: upcoming events only.
		conditions = append(conditions, "event_date > NOW()")
	}
	appendBaseConditions(&conditions, arg, filter.EventFilter)

	query := `SELECT ` + eventColumns + ` FROM events WHERE ` + strings.Join(conditions, " AND ")
	query += " ORDER BY event_date OFFSET " + arg(filter.From) + " LIMIT " + arg(filter.Size)

	return r.queryEvents(ctx, query, args...)
}

func appendBaseConditions(conditions *[]string, arg func(any) string, base models.EventFilter) {
	if len(base.CategoryIDs) > 0 {
		*conditions = append(*conditions, "category_id = ANY("+arg(pq.Array(base.CategoryIDs))+")")
	}
	if base.RangeStart != nil {
		*conditions = append(*conditions, "event_date >= "+arg(*base.RangeStart))
	}
	if base.RangeEnd != nil {
		*conditions = append(*conditions, "event_date <= "+arg(*base.RangeEnd))
	}
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := r.db.Q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}

	return events, rows.Err()
}
